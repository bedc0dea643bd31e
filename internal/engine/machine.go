package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/pyrolog/internal/term"
)

type state uint8

const (
	stateCall state = iota
	stateTryRule
	stateUserCall
	stateContinuation
	stateDone
)

func (s state) String() string {
	switch s {
	case stateCall:
		return "CALL"
	case stateTryRule:
		return "TRY_RULE"
	case stateUserCall:
		return "USER_CALL"
	case stateContinuation:
		return "CONTINUATION"
	case stateDone:
		return "DONE"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Step is one unit of work for the trampoline. Builtins return a Step to
// say what runs next; build one with Engine.Call or Engine.Continue.
type Step struct {
	state   state
	goal    term.Term
	cont    Continuation
	barrier int // choice stack height that ! in goal cuts back to

	// TRY_RULE only.
	rules  *ruleNode
	hashes []uint64
}

// Call returns the step that runs goal and then k. A cut inside goal is
// local to it.
func (e *Engine) Call(goal term.Term, k Continuation) Step {
	return Step{state: stateCall, goal: goal, cont: k, barrier: len(e.choices)}
}

// Continue returns the step that resumes k, i.e. succeeds.
func (e *Engine) Continue(k Continuation) Step {
	return Step{state: stateContinuation, cont: k}
}

// PushRedo records a choice point for a builtin with more solutions. On
// backtracking the heap is reverted to its state at the time of the call
// and retry runs. retry may call PushRedo again.
func (e *Engine) PushRedo(retry func() (Step, error)) {
	e.pushChoice(&redoChoice{fn: retry})
}

// loop runs steps until DONE. It returns nil when a solution has been
// reached, term.ErrUnificationFailed when the choice stack is exhausted,
// or the error that aborted the query.
func (e *Engine) loop(s Step) error {
	var err error
	for {
		switch s.state {
		case stateDone:
			return nil
		case stateCall:
			s, err = e.call(s)
		case stateUserCall:
			s, err = e.userCall(s)
		case stateTryRule:
			s, err = e.tryRule(s)
		case stateContinuation:
			s, err = s.cont.activate(e)
		}
		if err != nil {
			if s, err = e.resume(err); err != nil {
				return err
			}
		}
	}
}

// redo backtracks into the newest choice point and continues the search.
func (e *Engine) redo() error {
	s, err := e.resume(term.ErrUnificationFailed)
	if err != nil {
		return err
	}
	return e.loop(s)
}

// resume turns a failure or a Prolog exception into the next step to run.
func (e *Engine) resume(err error) (Step, error) {
	for {
		var s Step
		switch {
		case errors.Is(err, term.ErrUnificationFailed):
			if len(e.choices) == 0 {
				return Step{}, term.ErrUnificationFailed
			}
			top := e.choices[len(e.choices)-1]
			e.choices[len(e.choices)-1] = choice{}
			e.choices = e.choices[:len(e.choices)-1]
			e.heap.Revert(top.mark)
			s, err = top.alt.retry(e)
		case IsCatchable(err):
			var handled bool
			s, handled = e.unwind(asCatchable(err))
			if !handled {
				return Step{}, err
			}
			err = nil
		default:
			return Step{}, err
		}
		if err == nil {
			return s, nil
		}
	}
}

// unwind pops choice points up to the newest active catch/3 marker whose
// catcher unifies with the ball and returns the step running its recovery
// goal.
func (e *Engine) unwind(ce *CatchableError) (Step, bool) {
	for len(e.choices) > 0 {
		top := e.choices[len(e.choices)-1]
		e.choices = e.choices[:len(e.choices)-1]
		marker, ok := top.alt.(*catchChoice)
		if !ok || !marker.active {
			continue
		}
		e.heap.Revert(top.mark)
		ball := term.Copy(ce.Term, e.heap, map[*term.Var]*term.Var{})
		mark := e.heap.Branch()
		if term.Unify(marker.catcher, ball, e.heap, e.occursCheck) == nil {
			e.logger.Debug("exception caught", "ball", term.Format(ball))
			return e.Call(marker.recovery, marker.cont), true
		}
		e.heap.Revert(mark)
	}
	return Step{}, false
}

// call is the CALL state: run a builtin or control construct, or hand the
// goal to USER_CALL.
func (e *Engine) call(s Step) (Step, error) {
	if err := e.tick(); err != nil {
		return Step{}, err
	}
	goal := e.heap.Deref(s.goal)
	var sig term.Signature
	var args []term.Term
	switch g := goal.(type) {
	case *term.Atom:
		sig = term.Signature{Name: g.Name()}
	case *term.Compound:
		sig = g.Signature()
		args = g.Args()
	case *term.Var:
		return Step{}, e.InstantiationError()
	default:
		return Step{}, e.TypeError("callable", goal)
	}
	if b, ok := e.builtins[sig]; ok {
		return b.invoke(e, args, s.cont, s.barrier)
	}
	return Step{state: stateUserCall, goal: goal, cont: s.cont}, nil
}

// userCall is the USER_CALL state.
func (e *Engine) userCall(s Step) (Step, error) {
	sig, _ := term.SignatureOf(s.goal)
	pred := e.db.lookup(sig)
	if pred == nil {
		if e.unknown == UnknownFail {
			return Step{}, term.ErrUnificationFailed
		}
		return Step{}, e.ExistenceError(sig)
	}
	hashes := term.DeeperUnifyHash(s.goal)
	first := findApplicable(pred.snapshot(), hashes)
	if first == nil {
		return Step{}, term.ErrUnificationFailed
	}
	return Step{
		state:   stateTryRule,
		goal:    s.goal,
		cont:    s.cont,
		barrier: len(e.choices),
		rules:   first,
		hashes:  hashes,
	}, nil
}

// tryRule is the TRY_RULE state. It tries candidates in order until a head
// unifies, leaving a choice point for the remaining candidates.
func (e *Engine) tryRule(s Step) (Step, error) {
	for node := s.rules; node != nil; {
		next := findApplicable(node.next, s.hashes)
		rule := node.rule
		mark := e.heap.Branch()
		env := make([]term.Term, rule.NumVars)
		if term.UnifyHead(rule.Head, s.goal, env, e.heap, e.occursCheck) {
			if next != nil {
				e.choices = append(e.choices, choice{mark: mark, alt: &clauseChoice{
					goal:   s.goal,
					rules:  next,
					hashes: s.hashes,
					cont:   s.cont,
				}})
			}
			if rule.Body == nil {
				return Step{state: stateContinuation, cont: s.cont}, nil
			}
			body := term.Instantiate(rule.Body, env, e.heap)
			return Step{state: stateCall, goal: body, cont: s.cont, barrier: s.barrier}, nil
		}
		e.heap.Revert(mark)
		node = next
	}
	return Step{}, term.ErrUnificationFailed
}

// tick counts one inference against the quota and polls for cancellation.
func (e *Engine) tick() error {
	if err := e.quota.Check(); err != nil {
		return err
	}
	if e.quota.Current()&1023 == 0 && e.ctx != nil {
		if err := e.ctx.Err(); err != nil {
			return fmt.Errorf("query cancelled: %w", err)
		}
	}
	return nil
}
