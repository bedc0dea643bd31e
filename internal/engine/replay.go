package engine

import (
	"context"
	"fmt"

	"github.com/roach88/pyrolog/internal/ir"
)

// Replay re-executes recorded runs and checks that they still produce
// the same results.
//
// Determinism is structural: clause order, the order alternatives are
// pushed on the choice stack, and the variable naming of the formatter
// are all fixed, so the same program and query always yield the same
// solutions in the same order. A run's content hash (ir.RunHash) covers
// the query, program hash, outcome, error text and solution hashes; run
// IDs, seq numbers and step counts are excluded, so a faithful replay has
// an identical hash.
//
// A mismatch therefore means the program, the engine or its settings
// changed since the run was recorded. A truncated run is replayed only
// up to the number of solutions it recorded.

// ReplayMismatch describes one run whose replay differed.
type ReplayMismatch struct {
	Recorded ir.Run
	Replayed ir.Run
}

// ReplayResult summarizes a replay.
type ReplayResult struct {
	Runs       int
	Matched    int
	Mismatches []ReplayMismatch
}

// OK returns true if every run replayed identically.
func (r ReplayResult) OK() bool {
	return len(r.Mismatches) == 0
}

// Replay runs the query of each recorded run on e, in order, and compares
// the outcome with the record. e must already have the recorded program
// consulted.
func (e *Engine) Replay(ctx context.Context, runs []ir.Run) (ReplayResult, error) {
	result := ReplayResult{Mismatches: []ReplayMismatch{}}
	for _, recorded := range runs {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("replay cancelled: %w", err)
		}
		sols, err := e.Query(ctx, recorded.Query)
		if err != nil {
			return result, fmt.Errorf("replay run %s: %w", recorded.ID, err)
		}
		if recorded.Truncated {
			for len(sols.Run().Solutions) < len(recorded.Solutions) && sols.Next() {
			}
			sols.Close()
		} else {
			for sols.Next() {
			}
		}
		replayed := sols.Run()
		result.Runs++

		want, err := ir.RunHash(recorded)
		if err != nil {
			return result, fmt.Errorf("replay run %s: %w", recorded.ID, err)
		}
		got, err := ir.RunHash(replayed)
		if err != nil {
			return result, fmt.Errorf("replay run %s: %w", recorded.ID, err)
		}
		if got == want {
			result.Matched++
			continue
		}
		e.logger.Debug("replay mismatch", "run", recorded.ID, "query", recorded.Query)
		result.Mismatches = append(result.Mismatches, ReplayMismatch{Recorded: recorded, Replayed: replayed})
	}
	return result, nil
}
