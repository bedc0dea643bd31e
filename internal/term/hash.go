package term

import (
	"hash/fnv"
	"math"
)

// Tags keep hashes of different term kinds apart. They only need to be
// distinct; a collision costs a real unification, never a wrong answer.
const (
	tagAtom   = 0x9e3779b97f4a7c15
	tagInt    = 0xbf58476d1ce4e5b9
	tagFloat  = 0x94d049bb133111eb
	tagStruct = 0x2545f4914f6cdd1d
)

func fnvString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// mix is the splitmix64 finalizer. The low bit is forced on so that a
// computed hash is never zero, which is reserved for "unknown".
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x | 1
}

func atomHash(name string) uint64 {
	return mix(fnvString(name) ^ tagAtom)
}

func structHash(name string, arity int) uint64 {
	return mix(fnvString(name) ^ tagStruct ^ uint64(arity)<<32)
}

// UnifyHash returns a summary of the outermost layer of t: the atom name,
// the number value, or the functor name and arity of a compound. Unbound
// variables and slots hash to 0, meaning "could be anything".
//
// If two terms unify then their hashes are equal or at least one is 0.
// Unequal non-zero hashes therefore prove that the terms cannot unify.
func UnifyHash(t Term) uint64 {
	switch x := Deref(t).(type) {
	case *Atom:
		return x.hash
	case Int:
		return mix(uint64(x) ^ tagInt)
	case *BigInt:
		return bigHash(x)
	case Float:
		f := float64(x)
		if f == 0 {
			f = 0 // folds -0.0 onto 0.0
		}
		return mix(math.Float64bits(f) ^ tagFloat)
	case *Compound:
		return x.hash
	}
	return 0
}

// DeeperUnifyHash returns the UnifyHash of each argument of a compound,
// or nil for any other term.
func DeeperUnifyHash(t Term) []uint64 {
	c, ok := Deref(t).(*Compound)
	if !ok {
		return nil
	}
	hashes := make([]uint64, len(c.args))
	for i, a := range c.args {
		hashes[i] = UnifyHash(a)
	}
	return hashes
}

// HashesCompatible reports whether two argument hash vectors of equal
// length could belong to unifiable terms.
func HashesCompatible(a, b []uint64) bool {
	for i := range a {
		if a[i] != 0 && b[i] != 0 && a[i] != b[i] {
			return false
		}
	}
	return true
}
