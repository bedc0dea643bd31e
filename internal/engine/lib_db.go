package engine

import (
	"github.com/roach88/pyrolog/internal/term"
)

func (e *Engine) registerDatabaseLib() {
	assertz := func(e *Engine, args []term.Term) error {
		return e.AddRule(args[0], true)
	}
	e.Register("assert", []ArgSpec{Nonvar}, assertz)
	e.Register("assertz", []ArgSpec{Nonvar}, assertz)
	e.Register("asserta", []ArgSpec{Nonvar}, func(e *Engine, args []term.Term) error {
		return e.AddRule(args[0], false)
	})
	e.Register("retract", []ArgSpec{Nonvar}, func(e *Engine, args []term.Term) error {
		return e.Retract(args[0])
	})
	e.Register("abolish", []ArgSpec{Indicator}, func(e *Engine, args []term.Term) error {
		sig, err := e.indicator(args[0])
		if err != nil {
			return err
		}
		return e.Abolish(sig)
	})
	e.Register("dynamic", []ArgSpec{Nonvar}, func(e *Engine, args []term.Term) error {
		return e.declareDynamic(args[0])
	})
	e.RegisterCont("clause", []ArgSpec{Nonvar, Any}, builtinClause)
}

// declareDynamic defines predicates without clauses, so calling them
// fails instead of raising an existence error. It accepts an indicator, a
// conjunction of indicators or a list of them.
func (e *Engine) declareDynamic(spec term.Term) error {
	spec = e.heap.Deref(spec)
	if c, ok := spec.(*term.Compound); ok && c.Arity() == 2 && (c.Name() == "," || c.Name() == ".") {
		if err := e.declareDynamic(c.Arg(0)); err != nil {
			return err
		}
		if rest := e.heap.Deref(c.Arg(1)); rest != term.Nil {
			return e.declareDynamic(rest)
		}
		return nil
	}
	sig, err := e.indicator(spec)
	if err != nil {
		return err
	}
	if e.IsBuiltin(sig) {
		return e.staticProcedure(sig)
	}
	e.db.ensure(sig)
	return nil
}

// builtinClause is clause/2. It enumerates the clauses of a snapshot of
// the predicate taken when the call starts.
func builtinClause(e *Engine, args []term.Term, k Continuation) (Step, error) {
	head, body := args[0], args[1]
	sig, ok := term.SignatureOf(head)
	if !ok {
		return Step{}, e.TypeError("callable", head)
	}
	if b := e.heap.Deref(body); !term.IsCallable(b) {
		if _, isVar := b.(*term.Var); !isVar {
			return Step{}, e.TypeError("callable", b)
		}
	}
	if e.IsBuiltin(sig) {
		return Step{}, e.PermissionError("access", "private_procedure", e.in.Indicator(sig))
	}
	pred := e.db.lookup(sig)
	if pred == nil {
		return Step{}, term.ErrUnificationFailed
	}
	hashes := term.DeeperUnifyHash(head)
	var try func(n *ruleNode) (Step, error)
	try = func(n *ruleNode) (Step, error) {
		if n == nil {
			return Step{}, term.ErrUnificationFailed
		}
		if next := findApplicable(n.next, hashes); next != nil {
			e.PushRedo(func() (Step, error) { return try(next) })
		}
		env := make([]term.Term, n.rule.NumVars)
		if !term.UnifyHead(n.rule.Head, head, env, e.heap, e.occursCheck) {
			return Step{}, term.ErrUnificationFailed
		}
		var stored term.Term = term.True
		if n.rule.Body != nil {
			stored = term.Instantiate(n.rule.Body, env, e.heap)
		}
		if err := term.Unify(body, stored, e.heap, e.occursCheck); err != nil {
			return Step{}, err
		}
		return e.Continue(k), nil
	}
	return try(findApplicable(pred.snapshot(), hashes))
}
