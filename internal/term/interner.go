package term

import "golang.org/x/text/unicode/norm"

// Well-known atoms. Every Interner is seeded with these instances, so they
// are identical to the atoms an Interner returns for the same names.
var (
	Nil         = newAtom("[]")
	Dot         = newAtom(".")
	Curly       = newAtom("{}")
	True        = newAtom("true")
	Fail        = newAtom("fail")
	Cut         = newAtom("!")
	Comma       = newAtom(",")
	Semicolon   = newAtom(";")
	Arrow       = newAtom("->")
	Neck        = newAtom(":-")
	Minus       = newAtom("-")
	Slash       = newAtom("/")
	Equals      = newAtom("=")
	ErrorAtom   = newAtom("error")
	CallAtom    = newAtom("call")
	EmptyAtom   = newAtom("")
	QueryAtom   = newAtom("?-")
	NotProvable = newAtom("\\+")
)

var wellKnown = []*Atom{
	Nil, Dot, Curly, True, Fail, Cut, Comma, Semicolon, Arrow, Neck,
	Minus, Slash, Equals, ErrorAtom, CallAtom, EmptyAtom, QueryAtom, NotProvable,
}

func newAtom(name string) *Atom {
	return &Atom{name: name, hash: atomHash(name)}
}

// Interner hands out one *Atom per distinct name.
//
// Names are normalized to Unicode NFC before lookup, so the same text in
// composed and decomposed form yields the same atom.
type Interner struct {
	atoms map[string]*Atom
}

// NewInterner creates an interner seeded with the well-known atoms.
func NewInterner() *Interner {
	in := &Interner{atoms: make(map[string]*Atom, 256)}
	for _, a := range wellKnown {
		in.atoms[a.name] = a
	}
	return in
}

// Atom returns the unique atom for name, creating it on first use.
func (in *Interner) Atom(name string) *Atom {
	if a, ok := in.atoms[name]; ok {
		return a
	}
	if !norm.NFC.IsNormalString(name) {
		name = norm.NFC.String(name)
		if a, ok := in.atoms[name]; ok {
			return a
		}
	}
	a := newAtom(name)
	in.atoms[name] = a
	return a
}

// Len returns the number of interned atoms.
func (in *Interner) Len() int {
	return len(in.atoms)
}

// Compound is shorthand for NewCompound(in.Atom(name), args...).
func (in *Interner) Compound(name string, args ...Term) *Compound {
	return NewCompound(in.Atom(name), args...)
}

// Indicator builds the predicate indicator term Name/Arity.
func (in *Interner) Indicator(sig Signature) *Compound {
	return NewCompound(Slash, in.Atom(sig.Name), Int(sig.Arity))
}
