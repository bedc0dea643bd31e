package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/pyrolog/internal/ir"
	"github.com/roach88/pyrolog/internal/reader"
	"github.com/roach88/pyrolog/internal/term"
)

// Recorder receives every finished query run. internal/store implements it.
type Recorder interface {
	RecordRun(ctx context.Context, run ir.Run) error
}

// Solutions iterates over the answers of one query.
//
//	sols, err := e.Query(ctx, "append(X, Y, [1,2]).")
//	for sols.Next() {
//		fmt.Println(sols.Bindings())
//	}
//	if err := sols.Err(); err != nil { ... }
//
// Only the newest Solutions of an engine is live: starting another query
// closes it.
type Solutions struct {
	e      *Engine
	ctx    context.Context
	clause reader.Clause
	query  string

	started bool
	done    bool
	err     error
	run     ir.Run
}

// Query parses src and starts solving it.
func (e *Engine) Query(ctx context.Context, src string) (*Solutions, error) {
	if e.running {
		return nil, errReentrant("Query")
	}
	c, err := e.reader.ParseQuery(src)
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	return e.Solve(ctx, c), nil
}

// Solve prepares the query c. Nothing runs until the first call to Next.
func (e *Engine) Solve(ctx context.Context, c reader.Clause) *Solutions {
	f := term.NewFormatter()
	for _, name := range c.Names {
		f.SetName(c.Vars[name], name)
	}
	s := &Solutions{e: e, ctx: ctx, clause: c, query: f.Format(c.Term)}
	if e.running {
		s.done = true
		s.err = errReentrant("Solve")
		return s
	}
	e.closeActive()
	e.active = s
	return s
}

// Next finds the next solution. It returns false once the query is
// exhausted, has failed with an error, or was closed.
func (s *Solutions) Next() bool {
	if s.done {
		return false
	}
	e := s.e
	if e.running {
		return false
	}
	var err error
	if !s.started {
		s.started = true
		e.begin(s.ctx)
		err = e.loop(e.Call(s.clause.Term, Done()))
	} else {
		e.running = true
		err = e.redo()
	}
	e.end()
	switch {
	case err == nil:
		s.run.Solutions = append(s.run.Solutions, s.Solution())
		return true
	case IsFailure(err):
		s.finish(nil)
	default:
		s.finish(err)
	}
	return false
}

// Bindings returns the current solution: each named query variable
// mapped to a snapshot of its value. Variables whose name starts with an
// underscore are left out.
func (s *Solutions) Bindings() map[string]term.Term {
	out := make(map[string]term.Term, len(s.clause.Names))
	for _, name := range s.clause.Names {
		if strings.HasPrefix(name, "_") {
			continue
		}
		out[name] = term.GetValue(s.clause.Vars[name])
	}
	return out
}

// Solution returns the current solution in trace form. Unbound query
// variables print under the name they were read with.
func (s *Solutions) Solution() ir.Solution {
	f := term.NewFormatter()
	for _, name := range s.clause.Names {
		f.SetName(s.clause.Vars[name], name)
	}
	bindings := ir.IRObject{}
	for _, name := range s.clause.Names {
		if strings.HasPrefix(name, "_") {
			continue
		}
		bindings[name] = ir.IRString(f.Format(s.clause.Vars[name]))
	}
	return ir.Solution{
		Index:    len(s.run.Solutions),
		Bindings: bindings,
		Hash:     ir.MustSolutionHash(bindings),
	}
}

// Err returns the error that ended the query, if any. Running out of
// solutions is not an error.
func (s *Solutions) Err() error {
	return s.err
}

// Close stops the query. Solutions found so far are still recorded, and
// the run is marked truncated if the query was not yet exhausted.
func (s *Solutions) Close() {
	if !s.done {
		s.run.Truncated = true
		s.finish(nil)
	}
}

// Run returns the record of the query. It is complete once Next has
// returned false or Close was called.
func (s *Solutions) Run() ir.Run {
	return s.run
}

func (s *Solutions) finish(err error) {
	s.done = true
	s.err = err
	e := s.e
	if e.active == s {
		e.active = nil
		e.cutTo(0)
	}

	run := s.run
	run.ID = e.idGen.Generate()
	run.Seq = e.clock.Next()
	run.Query = s.query
	run.ProgramHash = e.ProgramHash()
	run.Steps = e.quota.Current()
	switch {
	case err != nil:
		run.Outcome = ir.OutcomeError
		run.Error = err.Error()
	case len(run.Solutions) > 0:
		run.Outcome = ir.OutcomeSuccess
	default:
		run.Outcome = ir.OutcomeFailure
	}
	if run.Solutions == nil {
		run.Solutions = []ir.Solution{}
	}
	s.run = run

	e.logger.Debug("query finished",
		"run", run.ID,
		"query", run.Query,
		"outcome", string(run.Outcome),
		"solutions", len(run.Solutions),
		"steps", run.Steps,
	)
	if e.recorder != nil {
		ctx := s.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		if rerr := e.recorder.RecordRun(ctx, run); rerr != nil {
			e.logger.Error("failed to record run", "run", run.ID, "error", rerr)
			if s.err == nil {
				s.err = fmt.Errorf("record run %s: %w", run.ID, rerr)
			}
		}
	}
}
