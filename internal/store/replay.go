package store

import (
	"context"
	"fmt"

	"github.com/roach88/pyrolog/internal/ir"
)

// Trace is everything needed to replay one program's runs: its source
// texts and the recorded runs in seq order.
type Trace struct {
	ProgramHash string
	Sources     []string
	Runs        []ir.Run
}

// ReadTrace loads the trace of one program. Returns an error wrapping
// ErrNotFound if the program was never stored.
func (s *Store) ReadTrace(ctx context.Context, programHash string) (Trace, error) {
	sources, err := s.ReadProgram(ctx, programHash)
	if err != nil {
		return Trace{}, fmt.Errorf("read trace: %w", err)
	}
	runs, err := s.ListRuns(ctx, RunFilter{ProgramHash: programHash})
	if err != nil {
		return Trace{}, fmt.Errorf("read trace: %w", err)
	}
	return Trace{ProgramHash: programHash, Sources: sources, Runs: runs}, nil
}

// ProgramHashes returns the hash of every program that has recorded runs,
// ordered by the seq of its first run.
func (s *Store) ProgramHashes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT program_hash
		FROM runs
		GROUP BY program_hash
		ORDER BY MIN(seq) ASC, program_hash COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query programs: %w", err)
	}
	defer rows.Close()

	hashes := []string{}
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scan program hash: %w", err)
		}
		hashes = append(hashes, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate programs: %w", err)
	}
	return hashes, nil
}
