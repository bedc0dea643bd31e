package engine

import (
	"slices"
	"strings"

	"github.com/roach88/pyrolog/internal/term"
)

// ruleNode is one link of a clause chain. Nodes reachable from a snapshot
// are never modified; mutations copy the affected prefix instead.
type ruleNode struct {
	rule *Rule
	next *ruleNode
}

// predicate holds the clause chain of one signature.
//
// shared is set whenever a resolution takes a snapshot of the chain. While
// it is set, appending copies the chain first so that the snapshot keeps
// its length. Prepending and removing never touch existing nodes.
type predicate struct {
	sig    term.Signature
	first  *ruleNode
	last   *ruleNode
	shared bool
}

// snapshot returns the chain as seen by a resolution starting now.
func (p *predicate) snapshot() *ruleNode {
	p.shared = true
	return p.first
}

func (p *predicate) add(r *Rule, atEnd bool) {
	n := &ruleNode{rule: r}
	switch {
	case p.first == nil:
		p.first, p.last = n, n
		p.shared = false
	case !atEnd:
		n.next = p.first
		p.first = n
	default:
		if p.shared {
			p.copyChain()
		}
		p.last.next = n
		p.last = n
	}
}

func (p *predicate) copyChain() {
	var first, last *ruleNode
	for n := p.first; n != nil; n = n.next {
		c := &ruleNode{rule: n.rule}
		if last == nil {
			first = c
		} else {
			last.next = c
		}
		last = c
	}
	p.first, p.last = first, last
	p.shared = false
}

// remove unlinks target, copying the nodes in front of it.
func (p *predicate) remove(target *ruleNode) {
	var before []*ruleNode
	n := p.first
	for ; n != nil && n != target; n = n.next {
		before = append(before, n)
	}
	if n == nil {
		return
	}
	head := target.next
	var newLast *ruleNode
	for i := len(before) - 1; i >= 0; i-- {
		head = &ruleNode{rule: before[i].rule, next: head}
		if newLast == nil {
			newLast = head
		}
	}
	p.first = head
	if target == p.last {
		p.last = newLast
	}
}

func (p *predicate) len() int {
	n := 0
	for r := p.first; r != nil; r = r.next {
		n++
	}
	return n
}

// findApplicable returns the first node from n on whose head may unify with
// a call having the given argument hashes.
func findApplicable(n *ruleNode, hashes []uint64) *ruleNode {
	for ; n != nil; n = n.next {
		if n.rule.applicable(hashes) {
			return n
		}
	}
	return nil
}

// Database maps signatures to clause chains.
type Database struct {
	preds map[term.Signature]*predicate
}

// NewDatabase creates an empty database.
func NewDatabase() *Database {
	return &Database{preds: make(map[term.Signature]*predicate)}
}

func (d *Database) lookup(sig term.Signature) *predicate {
	return d.preds[sig]
}

func (d *Database) ensure(sig term.Signature) *predicate {
	p, ok := d.preds[sig]
	if !ok {
		p = &predicate{sig: sig}
		d.preds[sig] = p
	}
	return p
}

func (d *Database) abolish(sig term.Signature) {
	delete(d.preds, sig)
}

// Has reports whether sig is defined, even with no clauses.
func (d *Database) Has(sig term.Signature) bool {
	_, ok := d.preds[sig]
	return ok
}

// Rules returns the current clauses of sig in order.
func (d *Database) Rules(sig term.Signature) []*Rule {
	p := d.preds[sig]
	if p == nil {
		return []*Rule{}
	}
	rules := make([]*Rule, 0, p.len())
	for n := p.first; n != nil; n = n.next {
		rules = append(rules, n.rule)
	}
	return rules
}

// Signatures returns every defined signature sorted by name, then arity.
func (d *Database) Signatures() []term.Signature {
	sigs := make([]term.Signature, 0, len(d.preds))
	for s := range d.preds {
		sigs = append(sigs, s)
	}
	slices.SortFunc(sigs, func(a, b term.Signature) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return a.Arity - b.Arity
	})
	return sigs
}

// Len returns the number of defined predicates.
func (d *Database) Len() int {
	return len(d.preds)
}
