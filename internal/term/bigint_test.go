package term

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bigFrom(t *testing.T, s string) Term {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, s)
	return NewInteger(v)
}

func TestNewInteger_NormalisesToInt(t *testing.T) {
	assert.Equal(t, Int(42), NewInteger(big.NewInt(42)))
	assert.Equal(t, Int(math.MinInt64), NewInteger(big.NewInt(math.MinInt64)))

	over := new(big.Int).Add(big.NewInt(math.MaxInt64), big.NewInt(1))
	b, ok := NewInteger(over).(*BigInt)
	require.True(t, ok)
	assert.Equal(t, "9223372036854775808", b.String())
}

func TestBigInt_UnifyByValue(t *testing.T) {
	h := NewHeap()
	a := bigFrom(t, "123456789012345678901234567890")
	b := bigFrom(t, "123456789012345678901234567890")
	c := bigFrom(t, "123456789012345678901234567891")

	assert.NoError(t, Unify(a, b, h, false))
	assert.ErrorIs(t, Unify(a, c, h, false), ErrUnificationFailed)
	assert.ErrorIs(t, Unify(a, Int(1), h, false), ErrUnificationFailed)
	assert.ErrorIs(t, Unify(a, Float(1.2345678901234568e29), h, false), ErrUnificationFailed)

	x := h.NewVar()
	require.NoError(t, Unify(x, a, h, false))
	assert.NoError(t, Unify(x, b, h, false))
	assert.Equal(t, UnifyHash(a), UnifyHash(b))
	assert.NotEqual(t, UnifyHash(a), UnifyHash(c))
}

func TestBigInt_HashDistinguishesSign(t *testing.T) {
	pos := bigFrom(t, "99999999999999999999")
	neg := bigFrom(t, "-99999999999999999999")
	assert.NotEqual(t, UnifyHash(pos), UnifyHash(neg))
}

func TestCompare_BigIntegers(t *testing.T) {
	sorted := []Term{
		bigFrom(t, "-99999999999999999999"),
		Float(-1e19),
		Int(math.MinInt64),
		Int(0),
		Int(math.MaxInt64),
		Float(1e19),
		bigFrom(t, "10000000000000000000"),
		bigFrom(t, "99999999999999999999"),
		NewInterner().Atom("a"),
	}
	for i := range sorted {
		for j := range sorted {
			want := 0
			switch {
			case i < j:
				want = -1
			case i > j:
				want = 1
			}
			assert.Equal(t, want, Compare(sorted[i], sorted[j]), "%s vs %s", Format(sorted[i]), Format(sorted[j]))
		}
	}
}

func TestCompare_FloatBeforeEqualBigInt(t *testing.T) {
	// 2^64 is exactly representable as a float.
	b := bigFrom(t, "18446744073709551616")
	f := Float(18446744073709551616.0)
	assert.Equal(t, -1, Compare(f, b))
	assert.Equal(t, 1, Compare(b, f))
}

func TestCompare_IntFloatTieIsExact(t *testing.T) {
	// float64(2^63-1) rounds up to 2^63, so the int is smaller.
	assert.Equal(t, -1, Compare(Int(math.MaxInt64), Float(9223372036854775808.0)))
}

func TestFormat_BigInt(t *testing.T) {
	in := NewInterner()
	neg := bigFrom(t, "-18446744073709551616")
	assert.Equal(t, "-18446744073709551616", Format(neg))
	assert.Equal(t, "- 18446744073709551616", Format(in.Compound("-", bigFrom(t, "18446744073709551616"))))
	assert.Equal(t, "1- -18446744073709551616", Format(in.Compound("-", Int(1), neg)))
}

func TestBigOf_ReturnsFreshCopy(t *testing.T) {
	b := bigFrom(t, "99999999999999999999")
	v, ok := BigOf(b)
	require.True(t, ok)
	v.SetInt64(0)
	assert.Equal(t, "99999999999999999999", Format(b))

	_, ok = BigOf(Float(1))
	assert.False(t, ok)
	assert.True(t, IsNumber(b))
	assert.True(t, IsAtomic(b))
}
