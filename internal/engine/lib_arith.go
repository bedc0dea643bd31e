package engine

import (
	"math"
	"math/big"

	"github.com/roach88/pyrolog/internal/term"
)

// maxIntegerBits bounds the integers arithmetic may build. Operations
// whose result would be larger raise resource_error(memory) before
// allocating it.
const maxIntegerBits = 1 << 22

func (e *Engine) registerArithLib() {
	e.Register("is", []ArgSpec{Any, Evaluable}, func(e *Engine, args []term.Term) error {
		return term.Unify(args[0], args[1], e.heap, false)
	})
	compare := func(name string, ok func(int) bool) {
		e.Register(name, []ArgSpec{Evaluable, Evaluable}, func(_ *Engine, args []term.Term) error {
			return truth(ok(compareNum(args[0], args[1])))
		})
	}
	compare("=:=", func(c int) bool { return c == 0 })
	compare("=\\=", func(c int) bool { return c != 0 })
	compare("<", func(c int) bool { return c < 0 })
	compare(">", func(c int) bool { return c > 0 })
	compare("=<", func(c int) bool { return c <= 0 })
	compare(">=", func(c int) bool { return c >= 0 })
}

// compareNum compares two evaluated numbers by value. Two integers are
// compared exactly; mixed comparisons are done in floating point.
func compareNum(a, b term.Term) int {
	if term.IsInteger(a) && term.IsInteger(b) {
		return term.CompareIntegers(a, b)
	}
	x, y := toFloat(a), toFloat(b)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func toFloat(t term.Term) float64 {
	switch n := t.(type) {
	case term.Int:
		return float64(n)
	case *term.BigInt:
		f, _ := new(big.Float).SetInt(n.Big()).Float64()
		return f
	case term.Float:
		return float64(n)
	}
	return math.NaN()
}

// eval evaluates an arithmetic expression to an integer or a term.Float.
func (e *Engine) eval(t term.Term) (term.Term, error) {
	switch x := e.heap.Deref(t).(type) {
	case *term.Var:
		return nil, e.InstantiationError()
	case term.Int, *term.BigInt, term.Float:
		return x, nil
	case *term.Atom:
		switch x.Name() {
		case "pi":
			return term.Float(math.Pi), nil
		case "e":
			return term.Float(math.E), nil
		case "max_tagged_integer":
			return term.Int(math.MaxInt64), nil
		case "min_tagged_integer":
			return term.Int(math.MinInt64), nil
		case "epsilon":
			return term.Float(math.Nextafter(1, 2) - 1), nil
		}
		return nil, e.TypeError("evaluable", e.in.Indicator(term.Signature{Name: x.Name()}))
	case *term.Compound:
		switch x.Arity() {
		case 1:
			v, err := e.eval(x.Arg(0))
			if err != nil {
				return nil, err
			}
			return e.evalUnary(x, v)
		case 2:
			l, err := e.eval(x.Arg(0))
			if err != nil {
				return nil, err
			}
			r, err := e.eval(x.Arg(1))
			if err != nil {
				return nil, err
			}
			return e.evalBinary(x, l, r)
		}
		return nil, e.TypeError("evaluable", e.in.Indicator(x.Signature()))
	default:
		return nil, e.TypeError("evaluable", x)
	}
}

func (e *Engine) evalUnary(c *term.Compound, v term.Term) (term.Term, error) {
	if term.IsInteger(v) {
		switch c.Name() {
		case "+", "integer", "truncate", "round", "ceiling", "floor":
			return v, nil
		case "-":
			return negInt(v), nil
		case "abs":
			if signOf(v) < 0 {
				return negInt(v), nil
			}
			return v, nil
		case "sign":
			return term.Int(signOf(v)), nil
		case "\\":
			if i, ok := v.(term.Int); ok {
				return ^i, nil
			}
			z, _ := term.BigOf(v)
			return term.NewInteger(z.Not(z)), nil
		}
	}

	f := toFloat(v)
	switch c.Name() {
	case "-":
		return term.Float(-f), nil
	case "+":
		return v, nil
	case "abs":
		return term.Float(math.Abs(f)), nil
	case "sign":
		switch {
		case f > 0:
			return term.Float(1), nil
		case f < 0:
			return term.Float(-1), nil
		}
		return term.Float(0), nil
	case "\\":
		return nil, e.TypeError("integer", v)
	case "float":
		return e.checkFloat(f)
	case "integer", "round":
		return e.floatToInt(math.Round(f))
	case "float_integer_part":
		return term.Float(math.Trunc(f)), nil
	case "float_fractional_part":
		return term.Float(f - math.Trunc(f)), nil
	case "truncate":
		return e.floatToInt(math.Trunc(f))
	case "ceiling":
		return e.floatToInt(math.Ceil(f))
	case "floor":
		return e.floatToInt(math.Floor(f))
	case "sqrt":
		if f < 0 {
			return nil, e.EvaluationError("undefined")
		}
		return e.checkFloat(math.Sqrt(f))
	case "sin":
		return e.checkFloat(math.Sin(f))
	case "cos":
		return e.checkFloat(math.Cos(f))
	case "tan":
		return e.checkFloat(math.Tan(f))
	case "asin":
		return e.checkFloat(math.Asin(f))
	case "acos":
		return e.checkFloat(math.Acos(f))
	case "atan":
		return e.checkFloat(math.Atan(f))
	case "exp":
		return e.checkFloat(math.Exp(f))
	case "log":
		if f <= 0 {
			return nil, e.EvaluationError("undefined")
		}
		return e.checkFloat(math.Log(f))
	}
	return nil, e.TypeError("evaluable", e.in.Indicator(c.Signature()))
}

func (e *Engine) evalBinary(c *term.Compound, l, r term.Term) (term.Term, error) {
	op := c.Name()
	if term.IsInteger(l) && term.IsInteger(r) {
		if v, ok := smallArith(op, l, r); ok {
			return v, nil
		}
		v, handled, err := e.bigArith(op, l, r)
		if handled || err != nil {
			return v, err
		}
	}

	x, y := toFloat(l), toFloat(r)
	switch op {
	case "+":
		return e.checkFloat(x + y)
	case "-":
		return e.checkFloat(x - y)
	case "*":
		return e.checkFloat(x * y)
	case "/":
		if y == 0 {
			return nil, e.EvaluationError("zero_divisor")
		}
		return e.checkFloat(x / y)
	case "//", "mod", "rem", "div", "gcd", ">>", "<<", "/\\", "\\/", "xor":
		if !term.IsInteger(l) {
			return nil, e.TypeError("integer", l)
		}
		return nil, e.TypeError("integer", r)
	case "min":
		if compareNum(l, r) <= 0 {
			return l, nil
		}
		return r, nil
	case "max":
		if compareNum(l, r) >= 0 {
			return l, nil
		}
		return r, nil
	case "**", "^":
		return e.checkFloat(math.Pow(x, y))
	case "atan", "atan2":
		return e.checkFloat(math.Atan2(x, y))
	case "copysign":
		return term.Float(math.Copysign(x, y)), nil
	}
	return nil, e.TypeError("evaluable", e.in.Indicator(c.Signature()))
}

// smallArith computes an integer operation on two Ints when the result
// is an Int. ok is false on overflow, on a zero divisor, and for
// operators it does not cover; the caller then takes the big path.
func smallArith(op string, l, r term.Term) (v term.Term, ok bool) {
	a, aOk := l.(term.Int)
	b, bOk := r.(term.Int)
	if !aOk || !bOk {
		return nil, false
	}
	switch op {
	case "+":
		if s := a + b; (s > a) == (b > 0) {
			return s, true
		}
	case "-":
		if d := a - b; (d < a) == (b > 0) {
			return d, true
		}
	case "*":
		if a == 0 || b == 0 {
			return term.Int(0), true
		}
		if a == -1 || b == -1 {
			break // negating MinInt64 overflows; the big path handles it
		}
		if p := a * b; p/b == a {
			return p, true
		}
	case "//":
		if b != 0 && b != -1 {
			return a / b, true
		}
	case "rem":
		if b != 0 && b != -1 {
			return a % b, true
		}
	case "mod":
		if b != 0 && b != -1 {
			m := a % b
			if m != 0 && (m < 0) != (b < 0) {
				m += b
			}
			return m, true
		}
	case "div":
		if b != 0 && b != -1 {
			q := a / b
			if a%b != 0 && (a < 0) != (b < 0) {
				q--
			}
			return q, true
		}
	case ">>":
		if b >= 0 {
			if b > 63 {
				b = 63
			}
			return a >> uint(b), true
		}
	case "<<":
		if b >= 0 && b < 64 {
			if s := a << uint(b); s>>uint(b) == a {
				return s, true
			}
		}
	case "/\\":
		return a & b, true
	case "\\/":
		return a | b, true
	case "xor":
		return a ^ b, true
	case "min":
		return min(a, b), true
	case "max":
		return max(a, b), true
	}
	return nil, false
}

// bigArith computes an integer operation in arbitrary precision. handled
// is false for operators that are evaluated in floating point even on
// integer arguments.
func (e *Engine) bigArith(op string, l, r term.Term) (v term.Term, handled bool, err error) {
	x, _ := term.BigOf(l)
	y, _ := term.BigOf(r)
	divisor := func() error {
		if y.Sign() == 0 {
			return e.EvaluationError("zero_divisor")
		}
		return nil
	}

	switch op {
	case "+":
		return term.NewInteger(x.Add(x, y)), true, nil
	case "-":
		return term.NewInteger(x.Sub(x, y)), true, nil
	case "*":
		if err := e.checkBits(int64(x.BitLen()) + int64(y.BitLen())); err != nil {
			return nil, true, err
		}
		return term.NewInteger(x.Mul(x, y)), true, nil
	case "/":
		if err := divisor(); err != nil {
			return nil, true, err
		}
		q, m := new(big.Int).QuoRem(x, y, new(big.Int))
		if m.Sign() == 0 {
			return term.NewInteger(q), true, nil
		}
		f, _ := new(big.Rat).SetFrac(x, y).Float64()
		v, err := e.checkFloat(f)
		return v, true, err
	case "//":
		if err := divisor(); err != nil {
			return nil, true, err
		}
		return term.NewInteger(x.Quo(x, y)), true, nil
	case "rem":
		if err := divisor(); err != nil {
			return nil, true, err
		}
		return term.NewInteger(x.Rem(x, y)), true, nil
	case "mod", "div":
		if err := divisor(); err != nil {
			return nil, true, err
		}
		q, m := floorDivMod(x, y)
		if op == "mod" {
			return term.NewInteger(m), true, nil
		}
		return term.NewInteger(q), true, nil
	case "gcd":
		return term.NewInteger(new(big.Int).GCD(nil, nil, x, y)), true, nil
	case ">>", "<<":
		v, err := e.shift(x, y, op == "<<")
		return v, true, err
	case "/\\":
		return term.NewInteger(x.And(x, y)), true, nil
	case "\\/":
		return term.NewInteger(x.Or(x, y)), true, nil
	case "xor":
		return term.NewInteger(x.Xor(x, y)), true, nil
	case "min":
		if x.Cmp(y) <= 0 {
			return l, true, nil
		}
		return r, true, nil
	case "max":
		if x.Cmp(y) >= 0 {
			return l, true, nil
		}
		return r, true, nil
	case "**":
		if y.Sign() < 0 {
			return nil, false, nil
		}
		v, err := e.power(x, y)
		return v, true, err
	case "^":
		if y.Sign() < 0 {
			switch {
			case x.Sign() == 0:
				return nil, true, e.EvaluationError("zero_divisor")
			case x.IsInt64() && x.Int64() == 1:
				return term.Int(1), true, nil
			case x.IsInt64() && x.Int64() == -1:
				if y.Bit(0) == 0 {
					return term.Int(1), true, nil
				}
				return term.Int(-1), true, nil
			}
			return nil, true, e.TypeError("float", l)
		}
		v, err := e.power(x, y)
		return v, true, err
	}
	return nil, false, nil
}

// floorDivMod divides rounding toward negative infinity. The remainder
// takes the sign of the divisor.
func floorDivMod(x, y *big.Int) (*big.Int, *big.Int) {
	q, m := new(big.Int).QuoRem(x, y, new(big.Int))
	if m.Sign() != 0 && m.Sign() != y.Sign() {
		q.Sub(q, big.NewInt(1))
		m.Add(m, y)
	}
	return q, m
}

// shift shifts x by n bits. A negative count shifts the other way.
func (e *Engine) shift(x, n *big.Int, left bool) (term.Term, error) {
	if n.Sign() < 0 {
		left = !left
		n = new(big.Int).Neg(n)
	}
	if !left {
		if !n.IsInt64() || n.Int64() > int64(x.BitLen()) {
			if x.Sign() < 0 {
				return term.Int(-1), nil
			}
			return term.Int(0), nil
		}
		return term.NewInteger(x.Rsh(x, uint(n.Int64()))), nil
	}
	if x.Sign() == 0 {
		return term.Int(0), nil
	}
	if !n.IsInt64() {
		return nil, e.ResourceError("memory")
	}
	if err := e.checkBits(int64(x.BitLen()) + n.Int64()); err != nil {
		return nil, err
	}
	return term.NewInteger(x.Lsh(x, uint(n.Int64()))), nil
}

// power raises x to a non-negative integer power.
func (e *Engine) power(x, y *big.Int) (term.Term, error) {
	switch {
	case y.Sign() == 0:
		return term.Int(1), nil
	case x.Sign() == 0:
		return term.Int(0), nil
	case x.CmpAbs(big.NewInt(1)) == 0:
		if x.Sign() < 0 && y.Bit(0) == 1 {
			return term.Int(-1), nil
		}
		return term.Int(1), nil
	}
	if !y.IsInt64() || y.Int64() > maxIntegerBits {
		return nil, e.ResourceError("memory")
	}
	if err := e.checkBits(int64(x.BitLen()-1)*y.Int64() + 1); err != nil {
		return nil, err
	}
	return term.NewInteger(x.Exp(x, y, nil)), nil
}

func (e *Engine) checkBits(n int64) error {
	if n > maxIntegerBits {
		return e.ResourceError("memory")
	}
	return nil
}

func negInt(v term.Term) term.Term {
	if i, ok := v.(term.Int); ok && i != math.MinInt64 {
		return -i
	}
	z, _ := term.BigOf(v)
	return term.NewInteger(z.Neg(z))
}

func signOf(v term.Term) int {
	if i, ok := v.(term.Int); ok {
		switch {
		case i > 0:
			return 1
		case i < 0:
			return -1
		}
		return 0
	}
	return v.(*term.BigInt).Big().Sign()
}

// checkFloat rejects results that are not finite numbers.
func (e *Engine) checkFloat(f float64) (term.Term, error) {
	switch {
	case math.IsNaN(f):
		return nil, e.EvaluationError("undefined")
	case math.IsInf(f, 0):
		return nil, e.EvaluationError("float_overflow")
	}
	return term.Float(f), nil
}

// floatToInt converts an integral float to an integer of whatever size
// it needs.
func (e *Engine) floatToInt(f float64) (term.Term, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, e.EvaluationError("undefined")
	}
	if f >= -(1<<63) && f < 1<<63 {
		return term.Int(f), nil
	}
	z, _ := big.NewFloat(f).Int(nil)
	return term.NewInteger(z), nil
}
