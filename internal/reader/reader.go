// Package reader turns Prolog source text into terms.
//
// It handles the standard operator syntax, lists, curly terms, quoted
// atoms, strings (read as code lists) and comments. Each clause is read
// with its own variable scope: a variable name maps to one *term.Var within
// a clause, and every occurrence of _ is a distinct variable.
package reader

import (
	"errors"
	"fmt"

	"github.com/roach88/pyrolog/internal/term"
)

// SyntaxError reports malformed source text.
type SyntaxError struct {
	Pos     Pos
	Message string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %s: %s", e.Pos, e.Message)
}

// IsSyntaxError returns true if err is or wraps a *SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// Clause is one term read from the source together with its variables.
type Clause struct {
	Term term.Term
	// Vars maps each named variable to its Var. Names are unique within
	// the clause; _ is never included.
	Vars map[string]*term.Var
	// Names lists the keys of Vars in order of first appearance.
	Names []string
	Pos   Pos
}

// Reader parses source text into terms built on an engine's interner and
// heap.
type Reader struct {
	in   *term.Interner
	heap *term.Heap
	ops  *term.Ops
}

// New creates a reader using the standard operator table.
func New(in *term.Interner, heap *term.Heap) *Reader {
	return &Reader{in: in, heap: heap, ops: term.DefaultOps()}
}

// Ops returns the reader's operator table. Changes affect later reads.
func (r *Reader) Ops() *term.Ops {
	return r.ops
}

// ParseProgram reads every clause in src. Each clause must end with a
// full stop.
func (r *Reader) ParseProgram(src string) ([]Clause, error) {
	p, err := r.newParser(src)
	if err != nil {
		return nil, err
	}
	clauses := []Clause{}
	for p.tok.kind != tokEOF {
		c, err := p.clause()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

// ParseQuery reads a single term. The final full stop is optional.
func (r *Reader) ParseQuery(src string) (Clause, error) {
	p, err := r.newParser(src)
	if err != nil {
		return Clause{}, err
	}
	if p.tok.kind == tokEOF {
		return Clause{}, &SyntaxError{Pos: p.tok.pos, Message: "empty query"}
	}
	start := p.tok.pos
	t, err := p.parse(1200)
	if err != nil {
		return Clause{}, err
	}
	if p.tok.kind == tokEnd {
		if err := p.advance(); err != nil {
			return Clause{}, err
		}
	}
	if p.tok.kind != tokEOF {
		return Clause{}, p.unexpected()
	}
	return Clause{Term: t, Vars: p.vars, Names: p.names, Pos: start}, nil
}

// ParseTerm reads a single term and discards the variable names.
func (r *Reader) ParseTerm(src string) (term.Term, error) {
	c, err := r.ParseQuery(src)
	if err != nil {
		return nil, err
	}
	return c.Term, nil
}
