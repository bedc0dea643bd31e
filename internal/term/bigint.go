package term

import (
	"math"
	"math/big"
)

// BigInt is an integer outside the int64 range. It is only ever created
// through NewInteger, so an integer that fits in 64 bits is always an Int
// and the two kinds never denote the same value.
type BigInt struct {
	v *big.Int
}

func (*BigInt) term() {}

// NewInteger returns v as an Int when it fits and as a *BigInt otherwise.
// The result owns v; the caller must not modify it afterwards.
func NewInteger(v *big.Int) Term {
	if v.IsInt64() {
		return Int(v.Int64())
	}
	return &BigInt{v: v}
}

// Big returns the value. Callers must not modify it.
func (b *BigInt) Big() *big.Int { return b.v }

// String implements fmt.Stringer.
func (b *BigInt) String() string { return b.v.String() }

// IsInteger reports whether t dereferences to an Int or a *BigInt.
func IsInteger(t Term) bool {
	switch Deref(t).(type) {
	case Int, *BigInt:
		return true
	}
	return false
}

// IsNumber reports whether t dereferences to an integer or a Float.
func IsNumber(t Term) bool {
	switch Deref(t).(type) {
	case Int, *BigInt, Float:
		return true
	}
	return false
}

// BigOf returns the value of an integer term as a fresh *big.Int that the
// caller may modify. ok is false for anything else.
func BigOf(t Term) (v *big.Int, ok bool) {
	switch x := Deref(t).(type) {
	case Int:
		return big.NewInt(int64(x)), true
	case *BigInt:
		return new(big.Int).Set(x.v), true
	}
	return nil, false
}

// bigEqual compares two big integers by value.
func bigEqual(a, b *BigInt) bool {
	return a == b || a.v.Cmp(b.v) == 0
}

// compareBigFloat orders an integer against a float by exact value.
func compareBigFloat(i *big.Int, f Float) int {
	if math.IsNaN(float64(f)) {
		return 1
	}
	return new(big.Float).SetInt(i).Cmp(big.NewFloat(float64(f)))
}

func bigHash(b *BigInt) uint64 {
	h := fnvString(string(b.v.Bytes()))
	if b.v.Sign() < 0 {
		h = ^h
	}
	return mix(h ^ tagInt)
}
