package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/pyrolog/internal/ir"
)

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadRun() error = %v, want ErrNotFound", err)
	}
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background(), RunFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if runs == nil {
		t.Error("ListRuns() returned nil, want empty slice")
	}
	if len(runs) != 0 {
		t.Errorf("got %d runs, want 0", len(runs))
	}
}

func TestListRuns_DeterministicOrdering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Written out of order; two share a seq and must sort by id.
	for _, r := range []ir.Run{
		createTestRun("c", 3, "prog"),
		createTestRun("b", 1, "prog"),
		createTestRun("a", 1, "prog"),
		createTestRun("d", 2, "prog"),
	} {
		if err := s.WriteRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.ListRuns(ctx, RunFilter{})
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	want := []string{"a", "b", "d", "c"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestListRuns_Filters(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runs := []ir.Run{
		createTestRun("r1", 1, "p1", ir.IRObject{"X": ir.IRString("1")}),
		createTestRun("r2", 2, "p2"),
		createTestRun("r3", 3, "p1"),
		createTestRun("r4", 4, "p1", ir.IRObject{"X": ir.IRString("4")}),
	}
	for _, r := range runs {
		if err := s.WriteRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter RunFilter
		want   []string
	}{
		{"program", RunFilter{ProgramHash: "p1"}, []string{"r1", "r3", "r4"}},
		{"outcome", RunFilter{Outcome: ir.OutcomeSuccess}, []string{"r1", "r4"}},
		{"limit keeps newest", RunFilter{Limit: 2}, []string{"r3", "r4"}},
		{"combined", RunFilter{ProgramHash: "p1", Outcome: ir.OutcomeFailure}, []string{"r3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListRuns(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d runs, want %v", len(got), tt.want)
			}
			for i, r := range got {
				if r.ID != tt.want[i] {
					t.Errorf("run %d = %s, want %s", i, r.ID, tt.want[i])
				}
			}
		})
	}
}

func TestLastSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.LastSeq(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if seq != 0 {
		t.Errorf("LastSeq() on empty store = %d, want 0", seq)
	}

	for _, r := range []ir.Run{createTestRun("a", 5, "p"), createTestRun("b", 9, "p"), createTestRun("c", 2, "p")} {
		if err := s.WriteRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	seq, err = s.LastSeq(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if seq != 9 {
		t.Errorf("LastSeq() = %d, want 9", seq)
	}
}

func TestReadProgram_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadProgram(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadProgram() error = %v, want ErrNotFound", err)
	}
}
