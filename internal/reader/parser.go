package reader

import (
	"math/big"

	"github.com/roach88/pyrolog/internal/term"
)

type parser struct {
	r     *Reader
	lex   *lexer
	tok   token
	vars  map[string]*term.Var
	names []string
}

func (r *Reader) newParser(src string) (*parser, error) {
	p := &parser{r: r, lex: newLexer(src)}
	p.resetScope()
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) resetScope() {
	p.vars = map[string]*term.Var{}
	p.names = nil
}

func (p *parser) advance() error {
	tok, err := p.lex.token()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) unexpected() error {
	if p.tok.kind == tokEOF {
		return &SyntaxError{Pos: p.tok.pos, Message: "unexpected end of file"}
	}
	return &SyntaxError{Pos: p.tok.pos, Message: "unexpected " + p.tok.kind.String() + " " + quoteTok(p.tok)}
}

func quoteTok(t token) string {
	if t.text == "" {
		return ""
	}
	return "'" + t.text + "'"
}

func (p *parser) expect(kind tokenKind, text string) error {
	if p.tok.text != text || (p.tok.kind != kind && !(kind == tokPunct && p.tok.kind == tokOpenCT)) {
		return &SyntaxError{Pos: p.tok.pos, Message: "expected " + text + " before " + p.tok.kind.String() + " " + quoteTok(p.tok)}
	}
	return p.advance()
}

func (p *parser) clause() (Clause, error) {
	p.resetScope()
	start := p.tok.pos
	t, err := p.parse(1200)
	if err != nil {
		return Clause{}, err
	}
	if p.tok.kind != tokEnd {
		return Clause{}, &SyntaxError{Pos: p.tok.pos, Message: "operator expected, got " + p.tok.kind.String() + " " + quoteTok(p.tok)}
	}
	if err := p.advance(); err != nil {
		return Clause{}, err
	}
	return Clause{Term: t, Vars: p.vars, Names: p.names, Pos: start}, nil
}

// parse reads a term whose priority is at most max.
func (p *parser) parse(max int) (term.Term, error) {
	left, prec, err := p.primary(max)
	if err != nil {
		return nil, err
	}
	return p.infix(left, prec, max)
}

func (p *parser) infix(left term.Term, leftPrec, max int) (term.Term, error) {
	for {
		name, ok := p.infixName()
		if !ok {
			return left, nil
		}
		op, ok := p.r.ops.Infix(name)
		if !ok {
			if post, isPost := p.r.ops.Postfix(name); isPost {
				lmax, _ := post.ArgMax()
				if post.Priority > max || leftPrec > lmax {
					return left, nil
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
				left = p.r.in.Compound(name, left)
				leftPrec = post.Priority
				continue
			}
			return left, nil
		}
		lmax, rmax := op.ArgMax()
		if op.Priority > max || leftPrec > lmax {
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parse(rmax)
		if err != nil {
			return nil, err
		}
		if name == "|" {
			name = ";"
		}
		left = p.r.in.Compound(name, left, right)
		leftPrec = op.Priority
	}
}

// infixName returns the current token as a candidate infix operator name.
func (p *parser) infixName() (string, bool) {
	switch p.tok.kind {
	case tokAtom:
		return p.tok.text, true
	case tokPunct:
		if p.tok.text == "," || p.tok.text == "|" {
			return p.tok.text, true
		}
	}
	return "", false
}

// startsTerm reports whether the current token can begin a term.
func (p *parser) startsTerm() bool {
	switch p.tok.kind {
	case tokEOF, tokEnd:
		return false
	case tokPunct:
		switch p.tok.text {
		case "(", "[", "{":
			return true
		}
		return false
	case tokAtom:
		if _, ok := p.r.ops.Infix(p.tok.text); ok {
			// Only infix operators that are also prefix operators, like -,
			// can begin an operand.
			_, pre := p.r.ops.Prefix(p.tok.text)
			return pre
		}
	}
	return true
}

func (p *parser) primary(max int) (term.Term, int, error) {
	tok := p.tok
	switch tok.kind {
	case tokInt:
		return intLiteral(tok, false), 0, p.advance()
	case tokFloat:
		return term.Float(tok.fval), 0, p.advance()
	case tokString:
		return term.CodeList(tok.text), 0, p.advance()
	case tokVar:
		return p.variable(tok.text), 0, p.advance()
	case tokPunct, tokOpenCT:
		switch tok.text {
		case "(":
			if err := p.advance(); err != nil {
				return nil, 0, err
			}
			t, err := p.parse(1200)
			if err != nil {
				return nil, 0, err
			}
			return t, 0, p.expect(tokPunct, ")")
		case "[":
			return p.list()
		case "{":
			return p.curly()
		}
	case tokQuoted:
		if err := p.advance(); err != nil {
			return nil, 0, err
		}
		return p.atomOrCompound(tok.text)
	case tokAtom:
		return p.name(tok, max)
	}
	return nil, 0, p.unexpected()
}

func (p *parser) name(tok token, max int) (term.Term, int, error) {
	if err := p.advance(); err != nil {
		return nil, 0, err
	}
	if p.tok.kind == tokOpenCT {
		return p.atomOrCompound(tok.text)
	}

	// A minus sign directly followed by a number literal is a negative number.
	if tok.text == "-" && !p.tok.layout {
		switch p.tok.kind {
		case tokInt:
			v := intLiteral(p.tok, true)
			return v, 0, p.advance()
		case tokFloat:
			v := p.tok.fval
			return term.Float(-v), 0, p.advance()
		}
	}

	if op, ok := p.r.ops.Prefix(tok.text); ok && p.startsTerm() {
		prio := op.Priority
		_, rmax := op.ArgMax()
		if prio > max {
			prio, rmax = 999, 999
		}
		arg, err := p.parse(rmax)
		if err != nil {
			return nil, 0, err
		}
		return p.r.in.Compound(tok.text, arg), prio, nil
	}

	// An operator standing alone is an ordinary atom, as in f(+) or X = (-).
	return p.r.in.Atom(tok.text), 0, nil
}

func (p *parser) atomOrCompound(name string) (term.Term, int, error) {
	if p.tok.kind != tokOpenCT {
		return p.r.in.Atom(name), 0, nil
	}
	if err := p.advance(); err != nil {
		return nil, 0, err
	}
	args, err := p.arglist(")")
	if err != nil {
		return nil, 0, err
	}
	return p.r.in.Compound(name, args...), 0, nil
}

func (p *parser) arglist(closing string) ([]term.Term, error) {
	var args []term.Term
	for {
		a, err := p.parse(999)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.tok.kind == tokPunct && p.tok.text == "," {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		return args, p.expect(tokPunct, closing)
	}
}

func (p *parser) list() (term.Term, int, error) {
	if err := p.advance(); err != nil {
		return nil, 0, err
	}
	if p.tok.kind == tokPunct && p.tok.text == "]" {
		if err := p.advance(); err != nil {
			return nil, 0, err
		}
		return p.atomOrCompound("[]")
	}
	var elems []term.Term
	for {
		e, err := p.parse(999)
		if err != nil {
			return nil, 0, err
		}
		elems = append(elems, e)
		if p.tok.kind == tokPunct && p.tok.text == "," {
			if err := p.advance(); err != nil {
				return nil, 0, err
			}
			continue
		}
		break
	}
	var tail term.Term
	if p.tok.kind == tokPunct && p.tok.text == "|" {
		if err := p.advance(); err != nil {
			return nil, 0, err
		}
		t, err := p.parse(999)
		if err != nil {
			return nil, 0, err
		}
		tail = t
	}
	if err := p.expect(tokPunct, "]"); err != nil {
		return nil, 0, err
	}
	return term.MakeList(elems, tail), 0, nil
}

func (p *parser) curly() (term.Term, int, error) {
	if err := p.advance(); err != nil {
		return nil, 0, err
	}
	if p.tok.kind == tokPunct && p.tok.text == "}" {
		if err := p.advance(); err != nil {
			return nil, 0, err
		}
		return p.atomOrCompound("{}")
	}
	t, err := p.parse(1200)
	if err != nil {
		return nil, 0, err
	}
	if err := p.expect(tokPunct, "}"); err != nil {
		return nil, 0, err
	}
	return term.NewCompound(term.Curly, t), 0, nil
}

func (p *parser) variable(name string) term.Term {
	if name == "_" {
		return p.r.heap.NewVar()
	}
	if v, ok := p.vars[name]; ok {
		return v
	}
	v := p.r.heap.NewVar()
	p.vars[name] = v
	p.names = append(p.names, name)
	return v
}

// intLiteral turns an integer token into a term, negated if neg is set.
// -9223372036854775808 is read as an Int even though its magnitude is not.
func intLiteral(tok token, neg bool) term.Term {
	if tok.bval == nil {
		if neg {
			return term.Int(-tok.ival)
		}
		return term.Int(tok.ival)
	}
	v := new(big.Int).Set(tok.bval)
	if neg {
		v.Neg(v)
	}
	return term.NewInteger(v)
}
