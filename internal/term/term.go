package term

import (
	"fmt"
	"math"
)

// Term is a sealed interface over the Prolog term variants.
// Only *Var, *Atom, Int, *BigInt, Float, *Compound and Slot implement it.
type Term interface {
	term() // Sealed
}

// Var is a logic variable. Its binding slot is nil while unbound and is
// changed only by a Heap so the change can be undone.
type Var struct {
	id  int64
	ref Term
}

func (*Var) term() {}

// ID returns the heap-local identity of the variable.
func (v *Var) ID() int64 { return v.id }

// Bound reports whether the variable currently has a binding.
func (v *Var) Bound() bool { return v.ref != nil }

// Atom is an interned symbol. Two atoms obtained from the same Interner with
// equal names are the same pointer.
type Atom struct {
	name string
	hash uint64
}

func (*Atom) term() {}

// Name returns the atom's text.
func (a *Atom) Name() string { return a.name }

// String implements fmt.Stringer using quoted syntax.
func (a *Atom) String() string { return Format(a) }

// Int is an integer number.
type Int int64

func (Int) term() {}

// Float is a floating point number.
type Float float64

func (Float) term() {}

// Slot is a rule-local numbered variable. Slots only appear inside rule
// templates and are replaced by live variables when the rule is used.
type Slot int

func (Slot) term() {}

// Compound is an immutable structure with a functor and a fixed,
// non-empty argument list.
type Compound struct {
	functor *Atom
	args    []Term
	hash    uint64 // name+arity summary, never zero
	slots   bool   // some argument (transitively) is a Slot
}

func (*Compound) term() {}

// NewCompound builds a compound term. The args slice is owned by the
// compound afterwards and must not be modified by the caller.
func NewCompound(functor *Atom, args ...Term) *Compound {
	if len(args) == 0 {
		panic(fmt.Sprintf("term: compound %q needs at least one argument", functor.name))
	}
	c := &Compound{
		functor: functor,
		args:    args,
		hash:    structHash(functor.name, len(args)),
	}
	for _, a := range args {
		switch x := a.(type) {
		case Slot:
			c.slots = true
		case *Compound:
			if x.slots {
				c.slots = true
			}
		}
		if c.slots {
			break
		}
	}
	return c
}

// Functor returns the compound's name atom.
func (c *Compound) Functor() *Atom { return c.functor }

// Name returns the functor name.
func (c *Compound) Name() string { return c.functor.name }

// Arity returns the number of arguments.
func (c *Compound) Arity() int { return len(c.args) }

// Arg returns the i-th argument, counting from 0.
func (c *Compound) Arg(i int) Term { return c.args[i] }

// Args returns the argument slice. Callers must not modify it.
func (c *Compound) Args() []Term { return c.args }

// Signature returns name/arity.
func (c *Compound) Signature() Signature {
	return Signature{Name: c.functor.name, Arity: len(c.args)}
}

// HasSlots reports whether the compound is a rule template needing
// instantiation.
func (c *Compound) HasSlots() bool { return c.slots }

// String implements fmt.Stringer using quoted syntax.
func (c *Compound) String() string { return Format(c) }

// Signature identifies a predicate or functor by name and arity.
type Signature struct {
	Name  string
	Arity int
}

// String returns the conventional Name/Arity form.
func (s Signature) String() string {
	return fmt.Sprintf("%s/%d", s.Name, s.Arity)
}

// SignatureOf returns the signature of a callable term (atom or compound)
// after dereferencing. ok is false for variables and numbers.
func SignatureOf(t Term) (sig Signature, ok bool) {
	switch x := Deref(t).(type) {
	case *Atom:
		return Signature{Name: x.name}, true
	case *Compound:
		return x.Signature(), true
	}
	return Signature{}, false
}

// Deref follows variable bindings until it reaches a non-variable or an
// unbound variable. It never modifies anything.
func Deref(t Term) Term {
	for {
		v, ok := t.(*Var)
		if !ok || v.ref == nil {
			return t
		}
		t = v.ref
	}
}

// IsCallable reports whether t dereferences to an atom or compound.
func IsCallable(t Term) bool {
	switch Deref(t).(type) {
	case *Atom, *Compound:
		return true
	}
	return false
}

// IsAtomic reports whether t dereferences to an atom or a number.
func IsAtomic(t Term) bool {
	switch Deref(t).(type) {
	case *Atom, Int, *BigInt, Float:
		return true
	}
	return false
}

// IsGround reports whether t contains no unbound variables.
func IsGround(t Term) bool {
	for {
		switch x := Deref(t).(type) {
		case *Var:
			return false
		case *Compound:
			last := len(x.args) - 1
			for _, a := range x.args[:last] {
				if !IsGround(a) {
					return false
				}
			}
			t = x.args[last]
			continue
		}
		return true
	}
}

// floatEqual is identity on floats: -0.0 equals 0.0 and a NaN equals a NaN
// with the same bit pattern.
func floatEqual(a, b Float) bool {
	return a == b || math.Float64bits(float64(a)) == math.Float64bits(float64(b))
}
