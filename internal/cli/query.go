package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/pyrolog/internal/engine"
	"github.com/roach88/pyrolog/internal/ir"
	"github.com/roach88/pyrolog/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Consult  []string
	Database string
	Limit    int

	// IDGenerator and Clock override run identity (for testing).
	IDGenerator engine.IDGenerator
	Clock       engine.Sequencer
}

// QueryResult is the JSON payload of the query command.
type QueryResult struct {
	Query     string              `json:"query"`
	RunID     string              `json:"run_id"`
	Outcome   ir.Outcome          `json:"outcome"`
	Solutions []map[string]string `json:"solutions"`
	Error     string              `json:"error,omitempty"`
	Steps     int64               `json:"steps"`
	Truncated bool                `json:"truncated,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <goal>",
		Short: "Solve a goal against consulted programs",
		Long: `Consult the given program files in order and print every solution
of the goal. The trailing full stop of the goal is optional.

With --db (or trace_db in the config) the run is recorded to a SQLite
trace database together with the program text, so that it can be
replayed later.

Exit codes:
  0 - At least one solution
  1 - No solution, or the goal raised an uncaught error
  2 - Command error (unreadable file, syntax error, database error)

Examples:
  pyrolog query -c family.pl "ancestor(tom, X)"
  pyrolog query -c a.pl -c b.pl --limit 1 "solve(X)."
  pyrolog query --db ./trace.db -c lists.pl "append(X, Y, [1,2])"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Consult, "consult", "c", nil, "program file to consult (repeatable)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run to this SQLite trace database")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "stop after this many solutions (0 = all)")

	return cmd
}

func runQuery(opts *QueryOptions, goal string, cmd *cobra.Command) error {
	cfg, err := opts.Settings()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	engOpts := append(cfg.EngineOptions(), engine.WithLogger(slog.Default()))
	if opts.IDGenerator != nil {
		engOpts = append(engOpts, engine.WithIDGenerator(opts.IDGenerator))
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.TraceDB
	}
	var st *store.Store
	if dbPath != "" {
		st, err = store.Open(dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		engOpts = append(engOpts, engine.WithRecorder(st))
		if opts.Clock == nil {
			last, err := st.LastSeq(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read trace database", err)
			}
			engOpts = append(engOpts, engine.WithClock(engine.NewClockAt(last)))
		}
	}
	if opts.Clock != nil {
		engOpts = append(engOpts, engine.WithClock(opts.Clock))
	}

	eng := engine.New(engOpts...)
	if err := consultFiles(eng, opts.Consult); err != nil {
		return err
	}
	if st != nil {
		hash, err := st.WriteProgram(ctx, eng.Sources())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record program", err)
		}
		slog.Debug("program recorded", "hash", hash)
	}

	sols, err := eng.Query(ctx, goal)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid query", err)
	}
	n := 0
	for sols.Next() {
		n++
		if opts.Limit > 0 && n >= opts.Limit {
			sols.Close()
			break
		}
	}
	run := sols.Run()
	result := QueryResult{
		Query:     run.Query,
		RunID:     run.ID,
		Outcome:   run.Outcome,
		Solutions: solutionMaps(run.Solutions),
		Error:     run.Error,
		Steps:     run.Steps,
		Truncated: run.Truncated,
	}
	if err := sols.Err(); err != nil && run.Outcome != ir.OutcomeError {
		// The run itself finished; recording it did not.
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}

	f := opts.formatter(cmd)
	if f.JSON() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		printSolutions(cmd, run)
	}

	switch run.Outcome {
	case ir.OutcomeError:
		return NewExitError(ExitFailure, run.Error)
	case ir.OutcomeFailure:
		return NewExitError(ExitFailure, "goal has no solution")
	}
	return nil
}

// consultFiles loads program files into eng in order.
func consultFiles(eng *engine.Engine, paths []string) error {
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read program", err)
		}
		if err := eng.Consult(string(src)); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to consult %s", path), err)
		}
		slog.Debug("consulted", "file", path)
	}
	return nil
}

func solutionMaps(sols []ir.Solution) []map[string]string {
	out := make([]map[string]string, len(sols))
	for i, s := range sols {
		m := make(map[string]string, len(s.Bindings))
		for k, v := range s.Bindings {
			if str, ok := v.(ir.IRString); ok {
				m[k] = string(str)
			}
		}
		out[i] = m
	}
	return out
}

// printSolutions writes one line per solution in toplevel style:
// "X = a, Y = b." or "true." for a solution without bindings, then
// "false." if the goal has none.
func printSolutions(cmd *cobra.Command, run ir.Run) {
	w := cmd.OutOrStdout()
	for _, s := range run.Solutions {
		keys := s.Bindings.SortedKeys()
		if len(keys) == 0 {
			fmt.Fprintln(w, "true.")
			continue
		}
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s = %s", k, s.Bindings[k].(ir.IRString))
		}
		fmt.Fprintln(w, strings.Join(parts, ", ")+".")
	}
	switch run.Outcome {
	case ir.OutcomeFailure:
		fmt.Fprintln(w, "false.")
	case ir.OutcomeError:
		fmt.Fprintf(w, "ERROR: %s\n", run.Error)
	}
}
