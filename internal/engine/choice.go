package engine

import (
	"github.com/roach88/pyrolog/internal/term"
)

// choice is a resumption record on the choice stack: a trail checkpoint
// and the alternative to run once the heap is back at that checkpoint.
type choice struct {
	mark term.Checkpoint
	alt  alternative
}

type alternative interface {
	// retry resumes the alternative. Returning term.ErrUnificationFailed
	// means it had nothing left and backtracking continues.
	retry(e *Engine) (Step, error)
}

func (e *Engine) pushChoice(alt alternative) {
	e.choices = append(e.choices, choice{mark: e.heap.Branch(), alt: alt})
}

// cutTo drops every choice point above height.
func (e *Engine) cutTo(height int) {
	if height < len(e.choices) {
		clear(e.choices[height:])
		e.choices = e.choices[:height]
	}
}

// clauseChoice holds the remaining candidate clauses of a call.
type clauseChoice struct {
	goal   term.Term
	rules  *ruleNode
	hashes []uint64
	cont   Continuation
}

func (c *clauseChoice) retry(e *Engine) (Step, error) {
	return Step{
		state:   stateTryRule,
		goal:    c.goal,
		cont:    c.cont,
		barrier: len(e.choices),
		rules:   c.rules,
		hashes:  c.hashes,
	}, nil
}

// goalChoice is the untried branch of a disjunction or if-then-else.
type goalChoice struct {
	goal    term.Term
	barrier int
	cont    Continuation
}

func (c *goalChoice) retry(*Engine) (Step, error) {
	return Step{state: stateCall, goal: c.goal, cont: c.cont, barrier: c.barrier}, nil
}

// redoChoice lets a builtin produce further solutions.
type redoChoice struct {
	fn func() (Step, error)
}

func (c *redoChoice) retry(*Engine) (Step, error) {
	return c.fn()
}

// catchChoice marks the scope of a catch/3 goal. It is active while the
// goal runs; a catchable error unwinds the stack to the newest active
// marker whose catcher unifies with the ball.
type catchChoice struct {
	catcher  term.Term
	recovery term.Term
	cont     Continuation
	active   bool
}

func (c *catchChoice) retry(*Engine) (Step, error) {
	return Step{}, term.ErrUnificationFailed
}

// reactivateChoice re-enters a catch/3 scope when backtracking goes back
// into its goal.
type reactivateChoice struct {
	marker *catchChoice
}

func (c *reactivateChoice) retry(*Engine) (Step, error) {
	c.marker.active = true
	return Step{}, term.ErrUnificationFailed
}

// negationChoice is reached when the goal of \+ fails, so \+ succeeds.
type negationChoice struct {
	cont Continuation
}

func (c *negationChoice) retry(*Engine) (Step, error) {
	return Step{state: stateContinuation, cont: c.cont}, nil
}

type findallState struct {
	template term.Term
	results  []term.Term
}

// findallChoice is reached once the findall/3 goal has no more solutions.
type findallChoice struct {
	state  *findallState
	result term.Term
	cont   Continuation
}

func (c *findallChoice) retry(e *Engine) (Step, error) {
	list := term.MakeList(c.state.results, nil)
	if err := term.Unify(c.result, list, e.heap, e.occursCheck); err != nil {
		return Step{}, err
	}
	return Step{state: stateContinuation, cont: c.cont}, nil
}
