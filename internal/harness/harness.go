package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/pyrolog/internal/engine"
	"github.com/roach88/pyrolog/internal/ir"
	"github.com/roach88/pyrolog/internal/store"
	"github.com/roach88/pyrolog/internal/testutil"
)

// Harness executes one scenario against a fresh engine.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, which
// also serves as the run recorder. Run IDs come from a sequential
// generator seeded with the scenario name, and seq numbers from a
// deterministic clock, so results are reproducible.
//
// Execution flow:
//  1. Create fresh in-memory database and engine
//  2. Consult program files, then the inline program
//  3. Run every query and check its expectation
//  4. If requested, replay the recorded trace on a second engine
//
// An error is returned only when the scenario cannot be executed at all,
// for example when its program does not load. Failed expectations are
// reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := append(scenarioOptions(scenario, logger),
		engine.WithRecorder(st),
		engine.WithIDGenerator(testutil.NewSequentialIDGenerator(scenario.Name)),
		engine.WithClock(testutil.NewDeterministicClock()),
	)
	h := &Harness{
		store:  st,
		engine: engine.New(opts...),
		logger: logger,
	}

	if err := h.load(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}

	result := NewResult(scenario.Name)
	for i, q := range scenario.Queries {
		run, runErr := h.runQuery(ctx, q)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("scenario %s cancelled: %w", scenario.Name, ctxErr)
		}
		result.Runs = append(result.Runs, run)
		for _, e := range checkExpect(i, q, run, runErr) {
			result.AddError(e.Error())
		}
	}

	if scenario.Replay {
		if err := h.replay(ctx, scenario, result); err != nil {
			return nil, fmt.Errorf("failed to replay: %w", err)
		}
	}
	return result, nil
}

func scenarioOptions(s *Scenario, logger *slog.Logger) []engine.EngineOption {
	opts := []engine.EngineOption{engine.WithLogger(logger)}
	if o := s.Options; o != nil {
		if o.MaxSteps > 0 {
			opts = append(opts, engine.WithMaxSteps(o.MaxSteps))
		}
		if o.OccursCheck {
			opts = append(opts, engine.WithOccursCheck(true))
		}
		if o.Unknown != "" {
			opts = append(opts, engine.WithUnknown(engine.UnknownPolicy(o.Unknown)))
		}
	}
	return opts
}

func (h *Harness) load(ctx context.Context, s *Scenario) error {
	for _, path := range s.Files {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := h.engine.Consult(string(src)); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if s.Program != "" {
		if err := h.engine.Consult(s.Program); err != nil {
			return err
		}
	}
	if _, err := h.store.WriteProgram(ctx, h.engine.Sources()); err != nil {
		return err
	}
	return nil
}

// runQuery solves one query and returns its run. A query that does not
// parse is reported as an error run that was never recorded.
func (h *Harness) runQuery(ctx context.Context, q QueryCase) (ir.Run, error) {
	sols, err := h.engine.Query(ctx, q.Query)
	if err != nil {
		return ir.Run{
			Query:       q.Query,
			ProgramHash: h.engine.ProgramHash(),
			Outcome:     ir.OutcomeError,
			Error:       err.Error(),
			Solutions:   []ir.Solution{},
		}, err
	}
	n := 0
	for sols.Next() {
		n++
		if q.Expect.Limit > 0 && n >= q.Expect.Limit {
			sols.Close()
			break
		}
	}
	return sols.Run(), sols.Err()
}

// replay reads the recorded trace back from the store and re-executes it
// on a new engine with the same settings.
func (h *Harness) replay(ctx context.Context, s *Scenario, result *Result) error {
	trace, err := h.store.ReadTrace(ctx, h.engine.ProgramHash())
	if err != nil {
		return err
	}
	fresh := engine.New(scenarioOptions(s, h.logger)...)
	for _, src := range trace.Sources {
		if err := fresh.Consult(src); err != nil {
			return fmt.Errorf("reload program: %w", err)
		}
	}
	replayed, err := fresh.Replay(ctx, trace.Runs)
	if err != nil {
		return err
	}
	for _, m := range replayed.Mismatches {
		result.AddError(fmt.Sprintf("replay of %s (%s) differs: recorded %s, replayed %s",
			m.Recorded.ID, m.Recorded.Query, describe(m.Recorded), describe(m.Replayed)))
	}
	return nil
}

// RunAll executes scenarios concurrently, at most parallel at a time
// (unlimited if parallel <= 0). Results are returned in input order. The
// first scenario that cannot be executed cancels the rest.
func RunAll(ctx context.Context, scenarios []*Scenario, parallel int) ([]*Result, error) {
	results := make([]*Result, len(scenarios))
	g, gctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, s := range scenarios {
		i, s := i, s
		g.Go(func() error {
			r, err := Run(gctx, s)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", s.Name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
