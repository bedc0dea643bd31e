package engine

import (
	"github.com/roach88/pyrolog/internal/term"
)

func (e *Engine) registerTermLib() {
	e.Register("=", []ArgSpec{Any, Any}, func(e *Engine, args []term.Term) error {
		return term.Unify(args[0], args[1], e.heap, e.occursCheck)
	})
	e.Register("unify_with_occurs_check", []ArgSpec{Any, Any}, func(e *Engine, args []term.Term) error {
		return term.Unify(args[0], args[1], e.heap, true)
	})
	e.Register("\\=", []ArgSpec{Any, Any}, func(e *Engine, args []term.Term) error {
		mark := e.heap.Branch()
		err := term.Unify(args[0], args[1], e.heap, e.occursCheck)
		e.heap.Revert(mark)
		if err == nil {
			return term.ErrUnificationFailed
		}
		return nil
	})

	compareWith := func(name string, ok func(int) bool) {
		e.Register(name, []ArgSpec{Any, Any}, func(_ *Engine, args []term.Term) error {
			return truth(ok(term.Compare(args[0], args[1])))
		})
	}
	compareWith("==", func(c int) bool { return c == 0 })
	compareWith("\\==", func(c int) bool { return c != 0 })
	compareWith("@<", func(c int) bool { return c < 0 })
	compareWith("@>", func(c int) bool { return c > 0 })
	compareWith("@=<", func(c int) bool { return c <= 0 })
	compareWith("@>=", func(c int) bool { return c >= 0 })

	e.Register("compare", []ArgSpec{Any, Any, Any}, func(e *Engine, args []term.Term) error {
		order := args[0]
		if a, ok := order.(*term.Atom); ok {
			switch a.Name() {
			case "<", "=", ">":
			default:
				return e.DomainError("order", a)
			}
		} else if _, ok := order.(*term.Var); !ok {
			return e.TypeError("atom", order)
		}
		var name string
		switch c := term.Compare(args[1], args[2]); {
		case c < 0:
			name = "<"
		case c > 0:
			name = ">"
		default:
			name = "="
		}
		return term.Unify(order, e.in.Atom(name), e.heap, false)
	})

	typeCheck := func(name string, ok func(term.Term) bool) {
		e.Register(name, []ArgSpec{Any}, func(_ *Engine, args []term.Term) error {
			return truth(ok(args[0]))
		})
	}
	typeCheck("var", func(t term.Term) bool { _, ok := t.(*term.Var); return ok })
	typeCheck("nonvar", func(t term.Term) bool { _, ok := t.(*term.Var); return !ok })
	typeCheck("atom", func(t term.Term) bool { _, ok := t.(*term.Atom); return ok })
	typeCheck("number", term.IsNumber)
	typeCheck("integer", term.IsInteger)
	typeCheck("float", func(t term.Term) bool { _, ok := t.(term.Float); return ok })
	typeCheck("atomic", term.IsAtomic)
	typeCheck("compound", func(t term.Term) bool { _, ok := t.(*term.Compound); return ok })
	typeCheck("callable", term.IsCallable)
	typeCheck("is_list", term.IsList)
	typeCheck("ground", term.IsGround)

	e.Register("functor", []ArgSpec{Any, Any, Any}, builtinFunctor)
	e.RegisterCont("arg", []ArgSpec{Any, Any, Any}, builtinArg)
	e.Register("=..", []ArgSpec{Any, Any}, builtinUniv)
	e.Register("copy_term", []ArgSpec{Any, Any}, func(e *Engine, args []term.Term) error {
		c := term.Copy(args[0], e.heap, map[*term.Var]*term.Var{})
		return term.Unify(args[1], c, e.heap, e.occursCheck)
	})
}

// truth turns a test result into a builtin result.
func truth(ok bool) error {
	if ok {
		return nil
	}
	return term.ErrUnificationFailed
}

func builtinFunctor(e *Engine, args []term.Term) error {
	t, name, arity := args[0], args[1], args[2]
	switch x := t.(type) {
	case *term.Compound:
		if err := term.Unify(name, x.Functor(), e.heap, false); err != nil {
			return err
		}
		return term.Unify(arity, term.Int(x.Arity()), e.heap, false)
	case *term.Var:
	default:
		if err := term.Unify(name, x, e.heap, false); err != nil {
			return err
		}
		return term.Unify(arity, term.Int(0), e.heap, false)
	}

	_, nameVar := name.(*term.Var)
	_, arityVar := arity.(*term.Var)
	if nameVar || arityVar {
		return e.InstantiationError()
	}
	n, err := e.arity(arity)
	if err != nil {
		return err
	}
	if n == 0 {
		if !term.IsAtomic(name) {
			return e.TypeError("atomic", name)
		}
		return term.Unify(t, name, e.heap, false)
	}
	functor, ok := name.(*term.Atom)
	if !ok {
		if term.IsAtomic(name) {
			return e.TypeError("atom", name)
		}
		return e.TypeError("atomic", name)
	}
	fresh := make([]term.Term, n)
	for i := range fresh {
		fresh[i] = e.heap.NewVar()
	}
	return term.Unify(t, term.NewCompound(functor, fresh...), e.heap, false)
}

// builtinArg is arg/3. With an unbound index it enumerates the arguments.
func builtinArg(e *Engine, args []term.Term, k Continuation) (Step, error) {
	n, t, a := args[0], args[1], args[2]
	c, ok := t.(*term.Compound)
	if !ok {
		if _, isVar := t.(*term.Var); isVar {
			return Step{}, e.InstantiationError()
		}
		return Step{}, e.TypeError("compound", t)
	}
	switch idx := n.(type) {
	case *term.BigInt:
		return Step{}, term.ErrUnificationFailed
	case term.Int:
		if idx < 1 || idx > term.Int(c.Arity()) {
			return Step{}, term.ErrUnificationFailed
		}
		if err := term.Unify(a, c.Arg(int(idx)-1), e.heap, e.occursCheck); err != nil {
			return Step{}, err
		}
		return e.Continue(k), nil
	case *term.Var:
		var try func(i int) (Step, error)
		try = func(i int) (Step, error) {
			if i+1 < c.Arity() {
				e.PushRedo(func() (Step, error) { return try(i + 1) })
			}
			if err := term.Unify(idx, term.Int(i+1), e.heap, false); err != nil {
				return Step{}, err
			}
			if err := term.Unify(a, c.Arg(i), e.heap, e.occursCheck); err != nil {
				return Step{}, err
			}
			return e.Continue(k), nil
		}
		return try(0)
	default:
		return Step{}, e.TypeError("integer", n)
	}
}

func builtinUniv(e *Engine, args []term.Term) error {
	t, list := args[0], args[1]
	switch x := t.(type) {
	case *term.Compound:
		elems := make([]term.Term, 0, x.Arity()+1)
		elems = append(elems, x.Functor())
		elems = append(elems, x.Args()...)
		return term.Unify(list, term.MakeList(elems, nil), e.heap, e.occursCheck)
	case *term.Var:
	default:
		return term.Unify(list, term.MakeList([]term.Term{x}, nil), e.heap, false)
	}

	elems, tail := term.ListSlice(list)
	if _, ok := tail.(*term.Var); ok {
		return e.InstantiationError()
	}
	if tail != term.Nil {
		return e.TypeError("list", list)
	}
	if len(elems) == 0 {
		return e.DomainError("non_empty_list", term.Nil)
	}
	head := term.Deref(elems[0])
	if _, ok := head.(*term.Var); ok {
		return e.InstantiationError()
	}
	if len(elems) == 1 {
		if !term.IsAtomic(head) {
			return e.TypeError("atomic", head)
		}
		return term.Unify(t, head, e.heap, false)
	}
	functor, ok := head.(*term.Atom)
	if !ok {
		if _, isCompound := head.(*term.Compound); isCompound {
			return e.TypeError("atomic", head)
		}
		return e.TypeError("atom", head)
	}
	if len(elems)-1 > MaxArity {
		return e.RepresentationError("max_arity")
	}
	return term.Unify(t, term.NewCompound(functor, elems[1:]...), e.heap, e.occursCheck)
}
