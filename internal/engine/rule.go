package engine

import (
	"github.com/roach88/pyrolog/internal/term"
)

// Rule is a stored clause. Head and Body are templates whose variables
// have been replaced by term.Slot values numbered from 0, so a rule shares
// nothing with the term it was built from. Body is nil for facts.
type Rule struct {
	Head        term.Term
	Body        term.Term
	NumVars     int
	Signature   term.Signature
	ContainsCut bool

	headHashes []uint64
}

// newRule standardizes a clause apart and checks that it can be stored.
func (e *Engine) newRule(head, body term.Term) (*Rule, error) {
	head = term.Deref(head)
	sig, ok := term.SignatureOf(head)
	if !ok {
		if _, isVar := head.(*term.Var); isVar {
			return nil, e.InstantiationError()
		}
		return nil, e.TypeError("callable", head)
	}
	if body != nil {
		converted, err := e.convertBody(body)
		if err != nil {
			return nil, err
		}
		body = converted
		if a, ok := body.(*term.Atom); ok && a.Name() == "true" {
			body = nil
		}
	}

	slots := map[*term.Var]term.Slot{}
	r := &Rule{
		Head:      term.Enumerate(head, slots),
		Signature: sig,
	}
	if body != nil {
		r.Body = term.Enumerate(body, slots)
		r.ContainsCut = containsCut(r.Body)
	}
	r.NumVars = len(slots)
	r.headHashes = term.DeeperUnifyHash(r.Head)
	return r, nil
}

// convertBody wraps variables in goal position with call/1 and rejects
// bodies that are not callable.
func (e *Engine) convertBody(body term.Term) (term.Term, error) {
	switch b := term.Deref(body).(type) {
	case *term.Var:
		return term.NewCompound(term.CallAtom, b), nil
	case term.Int, *term.BigInt, term.Float:
		return nil, e.TypeError("callable", body)
	case *term.Compound:
		if isControl(b) {
			left, err := e.convertBody(b.Arg(0))
			if err != nil {
				return nil, e.TypeError("callable", body)
			}
			right, err := e.convertBody(b.Arg(1))
			if err != nil {
				return nil, e.TypeError("callable", body)
			}
			if left == b.Arg(0) && right == b.Arg(1) {
				return b, nil
			}
			return term.NewCompound(b.Functor(), left, right), nil
		}
		return b, nil
	default:
		return b, nil
	}
}

func isControl(c *term.Compound) bool {
	if c.Arity() != 2 {
		return false
	}
	switch c.Name() {
	case ",", ";", "->":
		return true
	}
	return false
}

// containsCut reports whether ! appears in a goal position of body that is
// transparent to cut.
func containsCut(body term.Term) bool {
	switch b := body.(type) {
	case *term.Atom:
		return b.Name() == "!"
	case *term.Compound:
		if isControl(b) {
			return containsCut(b.Arg(0)) || containsCut(b.Arg(1))
		}
	}
	return false
}

// Clause rebuilds the rule as a live term Head :- Body (or just Head for a
// fact) with fresh variables from h.
func (r *Rule) Clause(h *term.Heap) term.Term {
	env := make([]term.Term, r.NumVars)
	head := term.Instantiate(r.Head, env, h)
	if r.Body == nil {
		return head
	}
	return term.NewCompound(term.Neck, head, term.Instantiate(r.Body, env, h))
}

// applicable reports whether the rule's head could unify with a call whose
// argument hashes are given.
func (r *Rule) applicable(hashes []uint64) bool {
	return term.HashesCompatible(r.headHashes, hashes)
}
