package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/pyrolog/internal/ir"
)

// RunFilter narrows ListRuns. Zero values mean "no restriction".
type RunFilter struct {
	ProgramHash string
	Outcome     ir.Outcome
	// Limit keeps only the most recent runs, still returned in seq order.
	Limit int
}

// ReadRun returns one run with its solutions. Returns an error wrapping
// ErrNotFound if the run does not exist.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, query, program_hash, outcome, error, steps, truncated
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Run{}, fmt.Errorf("read run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ir.Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	run.Solutions, err = s.readSolutions(ctx, id)
	if err != nil {
		return ir.Run{}, err
	}
	return run, nil
}

// ListRuns returns runs with their solutions.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if no runs match.
func (s *Store) ListRuns(ctx context.Context, filter RunFilter) ([]ir.Run, error) {
	query := `
		SELECT id, seq, query, program_hash, outcome, error, steps, truncated
		FROM runs
		WHERE (? = '' OR program_hash = ?)
		  AND (? = '' OR outcome = ?)
	`
	args := []any{filter.ProgramHash, filter.ProgramHash, string(filter.Outcome), string(filter.Outcome)}
	if filter.Limit > 0 {
		// Newest N, re-sorted ascending below.
		query = `SELECT * FROM (` + query + ` ORDER BY seq DESC, id DESC LIMIT ?)`
		args = append(args, filter.Limit)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	for i := range runs {
		runs[i].Solutions, err = s.readSolutions(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// LastSeq returns the highest seq in the store, or 0 if it is empty.
// An engine clock resumed with engine.NewClockAt(LastSeq) keeps appending
// in order.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

// ReadProgram returns the source texts stored for a program hash.
func (s *Store) ReadProgram(ctx context.Context, hash string) ([]string, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT sources FROM programs WHERE hash = ?`, hash).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read program %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read program %s: %w", hash, err)
	}
	return unmarshalSources(data)
}

// readSolutions returns the solutions of a run in index order.
func (s *Store) readSolutions(ctx context.Context, runID string) ([]ir.Solution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, bindings, hash
		FROM solutions
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query solutions: %w", err)
	}
	defer rows.Close()

	sols := []ir.Solution{}
	for rows.Next() {
		var sol ir.Solution
		var bindings string
		if err := rows.Scan(&sol.Index, &bindings, &sol.Hash); err != nil {
			return nil, fmt.Errorf("scan solution: %w", err)
		}
		sol.Bindings, err = unmarshalBindings(bindings)
		if err != nil {
			return nil, err
		}
		sols = append(sols, sol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate solutions: %w", err)
	}
	return sols, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (ir.Run, error) {
	var run ir.Run
	var outcome string
	if err := row.Scan(&run.ID, &run.Seq, &run.Query, &run.ProgramHash, &outcome, &run.Error, &run.Steps, &run.Truncated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.Run{}, err
		}
		return ir.Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Outcome = ir.Outcome(outcome)
	return run, nil
}
