package term

import (
	"errors"
	"fmt"
)

// ErrUnificationFailed signals that there is no solution on the current
// path. It is the failure value returned by unification and by builtins.
var ErrUnificationFailed = errors.New("unification failed")

// Unify makes a and b equal by binding variables on h.
//
// On failure the bindings made so far are left in place; the caller owns a
// checkpoint and reverts it. With occursCheck set, binding a variable to a
// term that contains it fails instead of creating a cyclic term.
func Unify(a, b Term, h *Heap, occursCheck bool) error {
	if !unify(a, b, h, occursCheck) {
		return ErrUnificationFailed
	}
	return nil
}

func unify(a, b Term, h *Heap, occursCheck bool) bool {
	for {
		a = h.Deref(a)
		b = h.Deref(b)
		if va, ok := a.(*Var); ok {
			if vb, ok := b.(*Var); ok {
				if va == vb {
					return true
				}
				// Bind the younger variable to the older one.
				if va.id < vb.id {
					h.Bind(vb, va)
				} else {
					h.Bind(va, vb)
				}
				return true
			}
			return bindVar(va, b, h, occursCheck)
		}
		if vb, ok := b.(*Var); ok {
			return bindVar(vb, a, h, occursCheck)
		}

		switch x := a.(type) {
		case *Atom:
			y, ok := b.(*Atom)
			return ok && (x == y || x.name == y.name)
		case Int:
			y, ok := b.(Int)
			return ok && x == y
		case *BigInt:
			y, ok := b.(*BigInt)
			return ok && bigEqual(x, y)
		case Float:
			y, ok := b.(Float)
			return ok && floatEqual(x, y)
		case *Compound:
			y, ok := b.(*Compound)
			if !ok || len(x.args) != len(y.args) || x.hash != y.hash {
				return false
			}
			if x == y {
				return true
			}
			if x.functor != y.functor && x.functor.name != y.functor.name {
				return false
			}
			last := len(x.args) - 1
			for i := 0; i < last; i++ {
				if !unify(x.args[i], y.args[i], h, occursCheck) {
					return false
				}
			}
			// Loop on the last argument so long lists do not recurse.
			a, b = x.args[last], y.args[last]
			continue
		case Slot:
			panic(fmt.Sprintf("term: slot %d outside a rule template", int(x)))
		}
		return false
	}
}

func bindVar(v *Var, t Term, h *Heap, occursCheck bool) bool {
	if occursCheck && occurs(v, t) {
		return false
	}
	h.Bind(v, t)
	return true
}

// occurs reports whether v appears in t.
func occurs(v *Var, t Term) bool {
	for {
		switch x := Deref(t).(type) {
		case *Var:
			return x == v
		case *Compound:
			last := len(x.args) - 1
			for _, a := range x.args[:last] {
				if occurs(v, a) {
					return true
				}
			}
			t = x.args[last]
			continue
		}
		return false
	}
}

// Occurs reports whether v occurs in t after dereferencing.
func Occurs(v *Var, t Term) bool {
	return occurs(v, t)
}
