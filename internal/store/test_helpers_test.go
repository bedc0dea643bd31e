package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/pyrolog/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with one solution per binding map.
func createTestRun(id string, seq int64, programHash string, bindings ...ir.IRObject) ir.Run {
	run := ir.Run{
		ID:          id,
		Seq:         seq,
		Query:       "p(X)",
		ProgramHash: programHash,
		Outcome:     ir.OutcomeFailure,
		Steps:       7,
		Solutions:   []ir.Solution{},
	}
	for i, b := range bindings {
		run.Solutions = append(run.Solutions, ir.Solution{
			Index:    i,
			Bindings: b,
			Hash:     ir.MustSolutionHash(b),
		})
	}
	if len(bindings) > 0 {
		run.Outcome = ir.OutcomeSuccess
	}
	return run
}
