package engine

import (
	"github.com/roach88/pyrolog/internal/term"
)

// Continuation is "the rest of the computation" after a goal succeeds.
//
// The set of continuations is closed: done, conjunction, if-then, negation,
// catch exit, findall collection and host callbacks. Activating one returns
// the next Step for the trampoline, or an error such as
// term.ErrUnificationFailed to start backtracking.
type Continuation interface {
	activate(e *Engine) (Step, error)
}

// Done returns the continuation that ends the query with a solution.
func Done() Continuation {
	return doneContinuation{}
}

// Callback returns a continuation that calls fn for every solution.
// Returning nil from fn accepts the solution and stops; returning
// term.ErrUnificationFailed asks for the next solution; any other error
// aborts or, if catchable, is thrown.
func Callback(fn func(e *Engine) error) Continuation {
	return &callbackContinuation{fn: fn}
}

type doneContinuation struct{}

func (doneContinuation) activate(*Engine) (Step, error) {
	return Step{state: stateDone}, nil
}

type callbackContinuation struct {
	fn func(e *Engine) error
}

func (c *callbackContinuation) activate(e *Engine) (Step, error) {
	if err := c.fn(e); err != nil {
		return Step{}, err
	}
	return Step{state: stateDone}, nil
}

// andContinuation runs goal with the enclosing clause's cut barrier and
// then continues with next.
type andContinuation struct {
	goal    term.Term
	barrier int
	next    Continuation
}

func (c *andContinuation) activate(*Engine) (Step, error) {
	return Step{state: stateCall, goal: c.goal, cont: c.next, barrier: c.barrier}, nil
}

// ifThenContinuation commits to the first solution of an if-then-else
// condition by cutting back to height, then runs the then branch.
type ifThenContinuation struct {
	height  int
	then    term.Term
	barrier int
	next    Continuation
}

func (c *ifThenContinuation) activate(e *Engine) (Step, error) {
	e.cutTo(c.height)
	return Step{state: stateCall, goal: c.then, cont: c.next, barrier: c.barrier}, nil
}

// negationContinuation is reached when the goal of \+ succeeds: it drops
// the goal's alternatives together with the negation's own choice point
// and fails.
type negationContinuation struct {
	height int
}

func (c *negationContinuation) activate(e *Engine) (Step, error) {
	e.cutTo(c.height)
	return Step{}, term.ErrUnificationFailed
}

// catchExitContinuation leaves the scope of a catch/3 goal.
type catchExitContinuation struct {
	marker *catchChoice
	next   Continuation
}

func (c *catchExitContinuation) activate(e *Engine) (Step, error) {
	c.marker.active = false
	if top := len(e.choices) - 1; top >= 0 && e.choices[top].alt == c.marker {
		// The goal left no alternatives; the marker is no longer needed.
		e.choices = e.choices[:top]
	} else {
		e.pushChoice(&reactivateChoice{marker: c.marker})
	}
	return Step{state: stateContinuation, cont: c.next}, nil
}

// collectContinuation records one findall/3 result and asks for more.
type collectContinuation struct {
	state *findallState
}

func (c *collectContinuation) activate(e *Engine) (Step, error) {
	c.state.results = append(c.state.results, term.Copy(c.state.template, e.heap, map[*term.Var]*term.Var{}))
	return Step{}, term.ErrUnificationFailed
}
