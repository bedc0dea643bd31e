package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pyrolog/internal/ir"
	"github.com/roach88/pyrolog/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database    string
	RunID       string
	ProgramHash string
	Outcome     string
	Limit       int
}

// TraceRun is one row of the trace listing.
type TraceRun struct {
	ID          string     `json:"id"`
	Seq         int64      `json:"seq"`
	Query       string     `json:"query"`
	ProgramHash string     `json:"program_hash"`
	Outcome     ir.Outcome `json:"outcome"`
	Error       string     `json:"error,omitempty"`
	Steps       int64      `json:"steps"`
	Truncated   bool       `json:"truncated,omitempty"`
	Solutions   int        `json:"solutions"`
}

// TraceResult holds the trace output.
type TraceResult struct {
	Runs  []TraceRun `json:"runs"`
	Total int        `json:"total"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "List recorded query runs",
		Long: `List the query runs recorded in a trace database, oldest first.

With --run, show a single run with every solution it produced.

Examples:
  pyrolog trace --db ./trace.db
  pyrolog trace --db ./trace.db --outcome error --limit 10
  pyrolog trace --db ./trace.db --run 0192f1c4-...
  pyrolog trace --db ./trace.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run with its solutions")
	cmd.Flags().StringVar(&opts.ProgramHash, "program", "", "only runs against this program hash")
	cmd.Flags().StringVar(&opts.Outcome, "outcome", "", "only runs with this outcome (success|failure|error)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "only the most recent N runs (0 = all)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	switch ir.Outcome(opts.Outcome) {
	case "", ir.OutcomeSuccess, ir.OutcomeFailure, ir.OutcomeError:
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid outcome %q", opts.Outcome))
	}

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	f := opts.formatter(cmd)

	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if errors.Is(err, store.ErrNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		if f.JSON() {
			return f.Success(run)
		}
		printRun(cmd, run)
		return nil
	}

	runs, err := st.ListRuns(ctx, store.RunFilter{
		ProgramHash: opts.ProgramHash,
		Outcome:     ir.Outcome(opts.Outcome),
		Limit:       opts.Limit,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	result := TraceResult{Runs: make([]TraceRun, len(runs)), Total: len(runs)}
	for i, r := range runs {
		result.Runs[i] = TraceRun{
			ID:          r.ID,
			Seq:         r.Seq,
			Query:       r.Query,
			ProgramHash: r.ProgramHash,
			Outcome:     r.Outcome,
			Error:       r.Error,
			Steps:       r.Steps,
			Truncated:   r.Truncated,
			Solutions:   len(r.Solutions),
		}
	}
	if f.JSON() {
		return f.Success(result)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, r := range result.Runs {
		outcome := string(r.Outcome)
		if r.Truncated {
			outcome += "+"
		}
		fmt.Fprintf(w, "%6d  %-36s  %-8s  %3d sol  %8d steps  %s\n",
			r.Seq, r.ID, outcome, r.Solutions, r.Steps, r.Query)
	}
	fmt.Fprintf(w, "\n%d run(s)\n", result.Total)
	return nil
}

func printRun(cmd *cobra.Command, run ir.Run) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run:      %s\n", run.ID)
	fmt.Fprintf(w, "Seq:      %d\n", run.Seq)
	fmt.Fprintf(w, "Query:    %s\n", run.Query)
	fmt.Fprintf(w, "Program:  %s\n", run.ProgramHash)
	fmt.Fprintf(w, "Outcome:  %s\n", run.Outcome)
	fmt.Fprintf(w, "Steps:    %d\n", run.Steps)
	if run.Truncated {
		fmt.Fprintln(w, "Truncated: yes")
	}
	if run.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", run.Error)
	}
	for _, s := range run.Solutions {
		keys := s.Bindings.SortedKeys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s = %s", k, s.Bindings[k].(ir.IRString))
		}
		if len(parts) == 0 {
			parts = []string{"true"}
		}
		fmt.Fprintf(w, "  [%d] %s\n", s.Index, strings.Join(parts, ", "))
	}
}
