package term

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const symbolChars = "+-*/\\^<>=~:.?@#&$"

var standardOps = DefaultOps()

// Formatter renders terms as Prolog text.
//
// Unbound variables are named _G0, _G1, ... in order of first appearance
// across all calls on the same Formatter, so output does not depend on
// variable identities.
type Formatter struct {
	// Quoted quotes atoms that would not read back as themselves.
	Quoted bool
	// Ops is the operator table used for infix and prefix notation.
	Ops *Ops

	names map[*Var]string
	fresh int
}

// NewFormatter returns a quoting formatter over the standard operators.
func NewFormatter() *Formatter {
	return &Formatter{Quoted: true, Ops: standardOps, names: map[*Var]string{}}
}

// Format renders t with a fresh quoting formatter.
func Format(t Term) string {
	return NewFormatter().Format(t)
}

// SetName makes f print v as name, e.g. to render a query with the
// variable names it was read with.
func (f *Formatter) SetName(v *Var, name string) {
	f.names[v] = name
}

// Format renders t.
func (f *Formatter) Format(t Term) string {
	var b strings.Builder
	f.write(&b, t, 1200)
	return b.String()
}

func (f *Formatter) write(b *strings.Builder, t Term, max int) {
	switch x := Deref(t).(type) {
	case *Var:
		name, ok := f.names[x]
		if !ok {
			name = "_G" + strconv.Itoa(f.fresh)
			f.fresh++
			f.names[x] = name
		}
		b.WriteString(name)
	case Slot:
		fmt.Fprintf(b, "_S%d", int(x))
	case Int:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case *BigInt:
		b.WriteString(x.v.String())
	case Float:
		b.WriteString(FormatFloat(float64(x)))
	case *Atom:
		s := f.atom(x.name)
		if max < 999 && f.Ops.IsOp(x.name) {
			s = "(" + s + ")"
		}
		b.WriteString(s)
	case *Compound:
		f.compound(b, x, max)
	}
}

func (f *Formatter) compound(b *strings.Builder, c *Compound, max int) {
	name := c.functor.name
	switch {
	case name == "." && len(c.args) == 2:
		f.list(b, c)
		return
	case name == "{}" && len(c.args) == 1:
		b.WriteByte('{')
		f.write(b, c.args[0], 1200)
		b.WriteByte('}')
		return
	}

	if len(c.args) == 2 {
		if op, ok := f.Ops.Infix(name); ok {
			lmax, rmax := op.ArgMax()
			open := op.Priority > max
			if open {
				b.WriteByte('(')
			}
			left := f.sub(c.args[0], lmax)
			right := f.sub(c.args[1], rmax)
			b.WriteString(left)
			switch {
			case name == ",":
				b.WriteByte(',')
			case isAlnumAtom(name):
				b.WriteString(" " + name + " ")
			default:
				if endsWithSymbol(left) {
					b.WriteByte(' ')
				}
				b.WriteString(f.atom(name))
				if startsWithSymbol(right) {
					b.WriteByte(' ')
				}
			}
			b.WriteString(right)
			if open {
				b.WriteByte(')')
			}
			return
		}
	}
	if len(c.args) == 1 {
		if (name == "-" || name == "+") && isNumber(c.args[0]) {
			// - 1 is the compound; -1 would read back as a number.
			b.WriteString(name + " ")
			f.write(b, c.args[0], 200)
			return
		}
		if op, ok := f.Ops.Prefix(name); ok {
			_, rmax := op.ArgMax()
			open := op.Priority > max
			if open {
				b.WriteByte('(')
			}
			arg := f.sub(c.args[0], rmax)
			b.WriteString(f.atom(name))
			if isAlnumAtom(name) || startsWithSymbol(arg) || strings.HasPrefix(arg, "(") {
				b.WriteByte(' ')
			}
			b.WriteString(arg)
			if open {
				b.WriteByte(')')
			}
			return
		}
	}

	b.WriteString(f.atom(name))
	b.WriteByte('(')
	for i, a := range c.args {
		if i > 0 {
			b.WriteByte(',')
		}
		f.write(b, a, 999)
	}
	b.WriteByte(')')
}

func (f *Formatter) list(b *strings.Builder, c *Compound) {
	b.WriteByte('[')
	f.write(b, c.args[0], 999)
	t := Deref(c.args[1])
	for {
		next, ok := t.(*Compound)
		if !ok || next.functor.name != "." || len(next.args) != 2 {
			break
		}
		b.WriteByte(',')
		f.write(b, next.args[0], 999)
		t = Deref(next.args[1])
	}
	if a, ok := t.(*Atom); !ok || a.name != "[]" {
		b.WriteByte('|')
		f.write(b, t, 999)
	}
	b.WriteByte(']')
}

func (f *Formatter) sub(t Term, max int) string {
	var b strings.Builder
	f.write(&b, t, max)
	return b.String()
}

func (f *Formatter) atom(name string) string {
	if !f.Quoted {
		return name
	}
	return QuoteAtom(name)
}

// QuoteAtom returns name as it must be written to read back as the same
// atom.
func QuoteAtom(name string) string {
	if atomNeedsNoQuotes(name) {
		return name
	}
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range name {
		switch r {
		case '\'':
			b.WriteString("\\'")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func atomNeedsNoQuotes(name string) bool {
	switch name {
	case "[]", "!", ";", "{}":
		return true
	case "", ".":
		return false
	}
	if isAlnumAtom(name) {
		return true
	}
	for _, r := range name {
		if !strings.ContainsRune(symbolChars, r) {
			return false
		}
	}
	return true
}

func isAlnumAtom(name string) bool {
	for i, r := range name {
		if i == 0 {
			if !unicode.IsLower(r) {
				return false
			}
			continue
		}
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return name != ""
}

func isNumber(t Term) bool {
	return IsNumber(t)
}

func startsWithSymbol(s string) bool {
	return s != "" && strings.ContainsRune(symbolChars, rune(s[0]))
}

func endsWithSymbol(s string) bool {
	return s != "" && strings.ContainsRune(symbolChars, rune(s[len(s)-1]))
}

// FormatFloat renders f so that it always reads back as a float.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	mant, exp, hasExp := strings.Cut(s, "e")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	if !hasExp {
		return mant
	}
	return mant + "e" + strings.TrimPrefix(exp, "+")
}
