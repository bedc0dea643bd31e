package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pyrolog/internal/engine"
	"github.com/roach88/pyrolog/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database    string
	ProgramHash string // optional - one program only
}

// ReplayMismatch describes a run whose replay differed from the record.
type ReplayMismatch struct {
	RunID    string `json:"run_id"`
	Query    string `json:"query"`
	Recorded string `json:"recorded"`
	Replayed string `json:"replayed"`
}

// ReplayProgramResult holds the replay result for one program.
type ReplayProgramResult struct {
	ProgramHash   string           `json:"program_hash"`
	Runs          int              `json:"runs"`
	Matched       int              `json:"matched"`
	Mismatches    []ReplayMismatch `json:"mismatches"`
	Deterministic bool             `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Programs         []ReplayProgramResult `json:"programs"`
	TotalRuns        int                   `json:"total_runs"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-execute recorded runs and verify determinism",
		Long: `Re-execute every run recorded in a trace database and check that it
still produces the same outcome and the same solutions in the same order.

Each program is reloaded from the source text stored alongside its runs,
into a fresh engine configured from --config.

Exit codes:
  0 - Every run replayed identically
  1 - At least one run differs
  2 - Command error (database not found, etc.)

Examples:
  pyrolog replay --db ./trace.db
  pyrolog replay --db ./trace.db --program 3f2a...
  pyrolog replay --db ./trace.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.ProgramHash, "program", "", "replay runs of this program only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	cfg, err := opts.Settings()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	var hashes []string
	if opts.ProgramHash != "" {
		hashes = []string{opts.ProgramHash}
	} else {
		hashes, err = st.ProgramHashes(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list programs", err)
		}
	}

	f := opts.formatter(cmd)
	result := ReplayResult{
		Programs:         make([]ReplayProgramResult, 0, len(hashes)),
		AllDeterministic: true,
	}
	for _, hash := range hashes {
		trace, err := st.ReadTrace(ctx, hash)
		if errors.Is(err, store.ErrNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("program not found: %s", hash))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read trace", err)
		}
		f.VerboseLog("Replaying %d run(s) of program %s", len(trace.Runs), hash)

		eng := engine.New(append(cfg.EngineOptions(), engine.WithLogger(slog.Default()))...)
		for _, src := range trace.Sources {
			if err := eng.Consult(src); err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("failed to reload program %s", hash), err)
			}
		}
		replayed, err := eng.Replay(ctx, trace.Runs)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay program %s", hash), err)
		}

		pr := ReplayProgramResult{
			ProgramHash:   hash,
			Runs:          replayed.Runs,
			Matched:       replayed.Matched,
			Mismatches:    make([]ReplayMismatch, 0, len(replayed.Mismatches)),
			Deterministic: replayed.OK(),
		}
		for _, m := range replayed.Mismatches {
			pr.Mismatches = append(pr.Mismatches, ReplayMismatch{
				RunID:    m.Recorded.ID,
				Query:    m.Recorded.Query,
				Recorded: summarize(m.Recorded.Outcome, len(m.Recorded.Solutions), m.Recorded.Error),
				Replayed: summarize(m.Replayed.Outcome, len(m.Replayed.Solutions), m.Replayed.Error),
			})
		}
		if !pr.Deterministic {
			result.AllDeterministic = false
		}
		result.TotalRuns += pr.Runs
		result.Programs = append(result.Programs, pr)
	}

	if f.JSON() {
		if result.AllDeterministic {
			return f.Success(result)
		}
		if err := f.Failure(result, "E_REPLAY_MISMATCH", "replay differs from the recorded trace"); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "replay differs from the recorded trace")
	}

	w := cmd.OutOrStdout()
	if len(result.Programs) == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}
	for _, p := range result.Programs {
		mark := "✓"
		if !p.Deterministic {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s program %s: %d/%d runs matched\n", mark, shortHash(p.ProgramHash), p.Matched, p.Runs)
		for _, m := range p.Mismatches {
			fmt.Fprintf(w, "  %s %s\n    recorded: %s\n    replayed: %s\n", m.RunID, m.Query, m.Recorded, m.Replayed)
		}
	}
	fmt.Fprintf(w, "\nReplayed %d run(s) across %d program(s)\n", result.TotalRuns, len(result.Programs))
	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay differs from the recorded trace")
	}
	fmt.Fprintln(w, "✓ All runs deterministic")
	return nil
}

// openExisting opens a trace database that must already exist.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func summarize(outcome any, solutions int, errText string) string {
	if errText != "" {
		return fmt.Sprintf("%v (%s)", outcome, errText)
	}
	return fmt.Sprintf("%v, %d solution(s)", outcome, solutions)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
