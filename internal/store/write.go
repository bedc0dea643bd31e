package store

import (
	"context"
	"fmt"

	"github.com/roach88/pyrolog/internal/ir"
)

// WriteRun inserts a run and its solutions in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - writing the same run
// twice leaves the first copy in place.
func (s *Store) WriteRun(ctx context.Context, run ir.Run) error {
	runHash, err := ir.RunHash(run)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, query, program_hash, outcome, error, steps, truncated, run_hash, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Seq,
		run.Query,
		run.ProgramHash,
		string(run.Outcome),
		run.Error,
		run.Steps,
		run.Truncated,
		runHash,
		ir.EngineVersion,
		ir.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("write run: %w", err)
	} else if n == 0 {
		return nil
	}

	for _, sol := range run.Solutions {
		bindings, err := marshalBindings(sol.Bindings)
		if err != nil {
			return fmt.Errorf("write run: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO solutions (run_id, idx, bindings, hash)
			VALUES (?, ?, ?, ?)
		`, run.ID, sol.Index, bindings, sol.Hash); err != nil {
			return fmt.Errorf("write solution %d of run %s: %w", sol.Index, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

// RecordRun implements engine.Recorder.
func (s *Store) RecordRun(ctx context.Context, run ir.Run) error {
	return s.WriteRun(ctx, run)
}

// WriteProgram stores the source texts behind a program hash so that its
// runs can be replayed later. Writing the same program again is a no-op.
func (s *Store) WriteProgram(ctx context.Context, sources []string) (string, error) {
	hash := ir.ProgramHash(sources)
	data, err := marshalSources(sources)
	if err != nil {
		return "", fmt.Errorf("write program: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO programs (hash, sources) VALUES (?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, data)
	if err != nil {
		return "", fmt.Errorf("write program: %w", err)
	}
	return hash, nil
}
