package engine

import (
	"math/big"

	"github.com/roach88/pyrolog/internal/term"
)

func (e *Engine) registerControlLib() {
	e.registerControl("true", 0, func(e *Engine, _ []term.Term, k Continuation, _ int) (Step, error) {
		return e.Continue(k), nil
	})
	fail := func(*Engine, []term.Term, Continuation, int) (Step, error) {
		return Step{}, term.ErrUnificationFailed
	}
	e.registerControl("fail", 0, fail)
	e.registerControl("false", 0, fail)

	e.registerControl("!", 0, func(e *Engine, _ []term.Term, k Continuation, barrier int) (Step, error) {
		e.cutTo(barrier)
		return e.Continue(k), nil
	})

	e.registerControl(",", 2, func(e *Engine, args []term.Term, k Continuation, barrier int) (Step, error) {
		next := &andContinuation{goal: args[1], barrier: barrier, next: k}
		return Step{state: stateCall, goal: args[0], cont: next, barrier: barrier}, nil
	})

	e.registerControl(";", 2, func(e *Engine, args []term.Term, k Continuation, barrier int) (Step, error) {
		left := e.heap.Deref(args[0])
		if c, ok := left.(*term.Compound); ok && c.Arity() == 2 && c.Name() == "->" {
			height := len(e.choices)
			e.pushChoice(&goalChoice{goal: args[1], barrier: barrier, cont: k})
			then := &ifThenContinuation{height: height, then: c.Arg(1), barrier: barrier, next: k}
			return e.Call(c.Arg(0), then), nil
		}
		e.pushChoice(&goalChoice{goal: args[1], barrier: barrier, cont: k})
		return Step{state: stateCall, goal: left, cont: k, barrier: barrier}, nil
	})

	e.registerControl("->", 2, func(e *Engine, args []term.Term, k Continuation, barrier int) (Step, error) {
		then := &ifThenContinuation{height: len(e.choices), then: args[1], barrier: barrier, next: k}
		return e.Call(args[0], then), nil
	})

	for arity := 1; arity <= 8; arity++ {
		specs := make([]ArgSpec, arity)
		specs[0] = Callable
		e.RegisterCont("call", specs, func(e *Engine, args []term.Term, k Continuation) (Step, error) {
			return e.Call(addArgs(args[0], args[1:]), k), nil
		})
	}

	negate := func(e *Engine, args []term.Term, k Continuation) (Step, error) {
		height := len(e.choices)
		e.pushChoice(&negationChoice{cont: k})
		return e.Call(args[0], &negationContinuation{height: height}), nil
	}
	e.RegisterCont("\\+", []ArgSpec{Callable}, negate)
	e.RegisterCont("not", []ArgSpec{Callable}, negate)

	e.RegisterCont("once", []ArgSpec{Callable}, func(e *Engine, args []term.Term, k Continuation) (Step, error) {
		return e.Call(term.NewCompound(term.Arrow, args[0], term.True), k), nil
	})
	e.RegisterCont("ignore", []ArgSpec{Callable}, func(e *Engine, args []term.Term, k Continuation) (Step, error) {
		goal := term.NewCompound(term.Semicolon, term.NewCompound(term.Arrow, args[0], term.True), term.True)
		return e.Call(goal, k), nil
	})
	e.RegisterCont("forall", []ArgSpec{Callable, Callable}, func(e *Engine, args []term.Term, k Continuation) (Step, error) {
		inner := term.NewCompound(term.Comma, args[0], term.NewCompound(term.NotProvable, args[1]))
		return e.Call(term.NewCompound(term.NotProvable, inner), k), nil
	})

	e.RegisterCont("findall", []ArgSpec{Any, Callable, Any}, func(e *Engine, args []term.Term, k Continuation) (Step, error) {
		if _, tail := term.ListSlice(args[2]); tail != term.Nil {
			if _, ok := tail.(*term.Var); !ok {
				return Step{}, e.TypeError("list", args[2])
			}
		}
		state := &findallState{template: args[0]}
		e.pushChoice(&findallChoice{state: state, result: args[2], cont: k})
		return e.Call(args[1], &collectContinuation{state: state}), nil
	})

	e.RegisterCont("catch", []ArgSpec{Any, Any, Any}, func(e *Engine, args []term.Term, k Continuation) (Step, error) {
		marker := &catchChoice{catcher: args[1], recovery: args[2], cont: k, active: true}
		e.pushChoice(marker)
		return e.Call(args[0], &catchExitContinuation{marker: marker, next: k}), nil
	})

	e.Register("throw", []ArgSpec{Nonvar}, func(e *Engine, args []term.Term) error {
		return &UserError{CatchableError{Term: term.GetValue(args[0])}}
	})

	e.RegisterCont("between", []ArgSpec{Integer, Nonvar, Any}, builtinBetween)

	e.RegisterCont("repeat", nil, func(e *Engine, _ []term.Term, k Continuation) (Step, error) {
		var again func() (Step, error)
		again = func() (Step, error) {
			e.PushRedo(again)
			return e.Continue(k), nil
		}
		return again()
	})
}

// addArgs appends extra arguments to a callable goal, as call/N does.
func addArgs(goal term.Term, extra []term.Term) term.Term {
	if len(extra) == 0 {
		return goal
	}
	switch g := goal.(type) {
	case *term.Atom:
		return term.NewCompound(g, extra...)
	case *term.Compound:
		args := make([]term.Term, 0, g.Arity()+len(extra))
		args = append(args, g.Args()...)
		args = append(args, extra...)
		return term.NewCompound(g.Functor(), args...)
	}
	return goal
}

// builtinBetween is between/3. The upper bound may be inf or infinite,
// which counts up to the largest Int.
func builtinBetween(e *Engine, args []term.Term, k Continuation) (Step, error) {
	lo, hi := args[0], args[1]
	switch h := hi.(type) {
	case term.Int, *term.BigInt:
	case *term.Atom:
		if h.Name() != "inf" && h.Name() != "infinite" {
			return Step{}, e.TypeError("integer", h)
		}
		hi = nil
	default:
		return Step{}, e.TypeError("integer", h)
	}

	switch x := args[2].(type) {
	case term.Int, *term.BigInt:
		if term.CompareIntegers(x, lo) < 0 || !atMost(x, hi) {
			return Step{}, term.ErrUnificationFailed
		}
		return e.Continue(k), nil
	case *term.Var:
		if !atMost(lo, hi) {
			return Step{}, term.ErrUnificationFailed
		}
		from, smallLo := lo.(term.Int)
		to, smallHi := hi.(term.Int)
		if !smallLo || !smallHi {
			return betweenBig(e, x, lo, hi, k)
		}
		var next func(i term.Int) (Step, error)
		next = func(i term.Int) (Step, error) {
			if i < to {
				e.PushRedo(func() (Step, error) { return next(i + 1) })
			}
			if err := term.Unify(x, i, e.heap, false); err != nil {
				return Step{}, err
			}
			return e.Continue(k), nil
		}
		return next(from)
	default:
		return Step{}, e.TypeError("integer", x)
	}
}

// atMost reports whether i <= hi. A nil hi is unbounded.
func atMost(i, hi term.Term) bool {
	return hi == nil || term.CompareIntegers(i, hi) <= 0
}

func betweenBig(e *Engine, x *term.Var, lo, hi term.Term, k Continuation) (Step, error) {
	var next func(i term.Term) (Step, error)
	next = func(i term.Term) (Step, error) {
		if hi == nil || term.CompareIntegers(i, hi) < 0 {
			v, _ := term.BigOf(i)
			succ := term.NewInteger(v.Add(v, big.NewInt(1)))
			e.PushRedo(func() (Step, error) { return next(succ) })
		}
		if err := term.Unify(x, i, e.heap, false); err != nil {
			return Step{}, err
		}
		return e.Continue(k), nil
	}
	return next(lo)
}
