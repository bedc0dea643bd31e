package engine

import (
	"github.com/roach88/pyrolog/internal/term"
)

// ArgSpec declares how the dispatcher checks and prepares one builtin
// argument before the handler runs. Every argument is dereferenced.
type ArgSpec uint8

const (
	// Any passes the argument through unchecked.
	Any ArgSpec = iota
	// Nonvar requires an instantiated argument.
	Nonvar
	// Callable requires an atom or compound.
	Callable
	// Atom requires an atom.
	Atom
	// Integer requires an integer.
	Integer
	// Evaluable evaluates an arithmetic expression; the handler receives
	// the resulting integer or term.Float.
	Evaluable
	// Indicator requires Name/Arity with an atom name and a non-negative
	// integer arity.
	Indicator
	// List requires a proper list.
	List
)

// DetFunc is a deterministic builtin. Returning nil succeeds once and
// continues with the caller's continuation; term.ErrUnificationFailed
// fails; a *CatchableError throws.
type DetFunc func(e *Engine, args []term.Term) error

// ContFunc is a builtin that manages its own continuation. It returns the
// next step, typically e.Continue(k) or e.Call(goal, k), and may use
// PushRedo to offer further solutions.
type ContFunc func(e *Engine, args []term.Term, k Continuation) (Step, error)

// controlFunc is a control construct that is transparent to cut and so
// needs the caller's cut barrier.
type controlFunc func(e *Engine, args []term.Term, k Continuation, barrier int) (Step, error)

type builtin struct {
	sig   term.Signature
	specs []ArgSpec
	fn    controlFunc
}

func (b *builtin) invoke(e *Engine, args []term.Term, k Continuation, barrier int) (Step, error) {
	if len(b.specs) > 0 {
		checked, err := e.checkArgs(b.specs, args)
		if err != nil {
			return Step{}, err
		}
		args = checked
	}
	return b.fn(e, args, k, barrier)
}

// Register adds a deterministic builtin name/len(specs). Registering an
// existing builtin replaces it.
func (e *Engine) Register(name string, specs []ArgSpec, fn DetFunc) {
	e.register(name, specs, func(e *Engine, args []term.Term, k Continuation, _ int) (Step, error) {
		if err := fn(e, args); err != nil {
			return Step{}, err
		}
		return Step{state: stateContinuation, cont: k}, nil
	})
}

// RegisterCont adds a builtin that controls its own continuation.
func (e *Engine) RegisterCont(name string, specs []ArgSpec, fn ContFunc) {
	e.register(name, specs, func(e *Engine, args []term.Term, k Continuation, _ int) (Step, error) {
		return fn(e, args, k)
	})
}

func (e *Engine) registerControl(name string, arity int, fn controlFunc) {
	e.register(name, make([]ArgSpec, arity), fn)
}

func (e *Engine) register(name string, specs []ArgSpec, fn controlFunc) {
	sig := term.Signature{Name: name, Arity: len(specs)}
	e.builtins[sig] = &builtin{sig: sig, specs: specs, fn: fn}
}

// IsBuiltin reports whether sig names a builtin or control construct.
func (e *Engine) IsBuiltin(sig term.Signature) bool {
	_, ok := e.builtins[sig]
	return ok
}

// checkArgs is the generic argument dispatcher behind every ArgSpec list.
func (e *Engine) checkArgs(specs []ArgSpec, args []term.Term) ([]term.Term, error) {
	out := make([]term.Term, len(args))
	for i, spec := range specs {
		a := e.heap.Deref(args[i])
		_, isVar := a.(*term.Var)
		switch spec {
		case Nonvar:
			if isVar {
				return nil, e.InstantiationError()
			}
		case Callable:
			if isVar {
				return nil, e.InstantiationError()
			}
			if !term.IsCallable(a) {
				return nil, e.TypeError("callable", a)
			}
		case Atom:
			if isVar {
				return nil, e.InstantiationError()
			}
			if _, ok := a.(*term.Atom); !ok {
				return nil, e.TypeError("atom", a)
			}
		case Integer:
			if isVar {
				return nil, e.InstantiationError()
			}
			if !term.IsInteger(a) {
				return nil, e.TypeError("integer", a)
			}
		case Evaluable:
			v, err := e.eval(a)
			if err != nil {
				return nil, err
			}
			a = v
		case Indicator:
			if _, err := e.indicator(a); err != nil {
				return nil, err
			}
		case List:
			_, tail := term.ListSlice(a)
			if _, ok := tail.(*term.Var); ok {
				return nil, e.InstantiationError()
			}
			if !term.IsList(a) {
				return nil, e.TypeError("list", a)
			}
		}
		out[i] = a
	}
	return out, nil
}

// indicator decodes Name/Arity.
func (e *Engine) indicator(t term.Term) (term.Signature, error) {
	t = term.Deref(t)
	if _, ok := t.(*term.Var); ok {
		return term.Signature{}, e.InstantiationError()
	}
	c, ok := t.(*term.Compound)
	if !ok || c.Name() != "/" || c.Arity() != 2 {
		return term.Signature{}, e.TypeError("predicate_indicator", t)
	}
	name, arity := term.Deref(c.Arg(0)), term.Deref(c.Arg(1))
	_, nameVar := name.(*term.Var)
	_, arityVar := arity.(*term.Var)
	if nameVar || arityVar {
		return term.Signature{}, e.InstantiationError()
	}
	a, ok := name.(*term.Atom)
	if !ok {
		return term.Signature{}, e.TypeError("atom", name)
	}
	n, err := e.arity(arity)
	if err != nil {
		return term.Signature{}, err
	}
	return term.Signature{Name: a.Name(), Arity: n}, nil
}

// MaxArity is the largest arity functor/3 and =../2 will build, and the
// largest a predicate indicator may name.
const MaxArity = 1<<16 - 1

// arity checks a bound arity argument.
func (e *Engine) arity(t term.Term) (int, error) {
	if !term.IsInteger(t) {
		return 0, e.TypeError("integer", t)
	}
	n, small := t.(term.Int)
	switch {
	case (small && n < 0) || (!small && t.(*term.BigInt).Big().Sign() < 0):
		return 0, e.DomainError("not_less_than_zero", t)
	case !small || n > MaxArity:
		return 0, e.RepresentationError("max_arity")
	}
	return int(n), nil
}
