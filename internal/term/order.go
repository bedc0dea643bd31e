package term

import (
	"cmp"
	"strings"
)

// Ranks in the standard order of terms.
const (
	rankVar = iota
	rankNumber
	rankAtom
	rankCompound
)

func rank(t Term) int {
	switch t.(type) {
	case *Var, Slot:
		return rankVar
	case Int, *BigInt, Float:
		return rankNumber
	case *Atom:
		return rankAtom
	}
	return rankCompound
}

// Compare orders two terms by the standard order:
//
//	Var < Number < Atom < Compound
//
// Variables are ordered by age. Numbers compare by value; when an Int and
// a Float are equal the Float comes first. Atoms compare by name. Compounds
// compare by arity, then name, then arguments from left to right.
//
// The result is -1, 0 or +1.
func Compare(a, b Term) int {
	for {
		a, b = Deref(a), Deref(b)
		ra, rb := rank(a), rank(b)
		if ra != rb {
			return cmp.Compare(ra, rb)
		}
		switch x := a.(type) {
		case *Var:
			y, ok := b.(*Var)
			if !ok {
				return -1 // slots sort after live variables
			}
			return cmp.Compare(x.id, y.id)
		case Slot:
			y, ok := b.(Slot)
			if !ok {
				return 1
			}
			return cmp.Compare(x, y)
		case Int, *BigInt:
			return compareNumbers(x, b)
		case Float:
			return compareNumbers(x, b)
		case *Atom:
			return strings.Compare(x.name, b.(*Atom).name)
		case *Compound:
			y := b.(*Compound)
			if c := cmp.Compare(len(x.args), len(y.args)); c != 0 {
				return c
			}
			if c := strings.Compare(x.functor.name, y.functor.name); c != 0 {
				return c
			}
			last := len(x.args) - 1
			for i := 0; i < last; i++ {
				if c := Compare(x.args[i], y.args[i]); c != 0 {
					return c
				}
			}
			a, b = x.args[last], y.args[last]
			continue
		}
		return 0
	}
}

func compareNumbers(a, b Term) int {
	x, aFloat := a.(Float)
	y, bFloat := b.(Float)
	switch {
	case aFloat && bFloat:
		return cmp.Compare(float64(x), float64(y))
	case aFloat:
		if c := -compareIntFloat(b, x); c != 0 {
			return c
		}
		return -1
	case bFloat:
		if c := compareIntFloat(a, y); c != 0 {
			return c
		}
		return 1
	}
	return CompareIntegers(a, b)
}

// CompareIntegers orders two integer terms (Int or *BigInt) by value.
func CompareIntegers(a, b Term) int {
	if x, ok := a.(Int); ok {
		if y, ok := b.(Int); ok {
			return cmp.Compare(x, y)
		}
	}
	x, _ := BigOf(a)
	y, _ := BigOf(b)
	return x.Cmp(y)
}

func compareIntFloat(i Term, f Float) int {
	if x, ok := i.(Int); ok {
		if c := cmp.Compare(float64(x), float64(f)); c != 0 {
			return c
		}
		// float64(x) may have rounded; settle the tie exactly.
	}
	v, _ := BigOf(i)
	return compareBigFloat(v, f)
}
