package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pyrolog/internal/ir"
	"github.com/roach88/pyrolog/internal/term"
)

type memoryRecorder struct {
	runs []ir.Run
	err  error
}

func (r *memoryRecorder) RecordRun(_ context.Context, run ir.Run) error {
	if r.err != nil {
		return r.err
	}
	r.runs = append(r.runs, run)
	return nil
}

type countingIDs struct{ n int }

func (g *countingIDs) Generate() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

func TestSolutions_RecordsRun(t *testing.T) {
	rec := &memoryRecorder{}
	e := newTestEngine(t, appendProgram, WithRecorder(rec), WithIDGenerator(&countingIDs{}))

	got := solveAll(t, e, "append(X, Y, [1]).")
	require.Len(t, got, 2)

	require.Len(t, rec.runs, 1)
	run := rec.runs[0]
	assert.Equal(t, "id-1", run.ID)
	assert.Equal(t, int64(1), run.Seq)
	assert.Equal(t, "append(X,Y,[1])", run.Query)
	assert.Equal(t, e.ProgramHash(), run.ProgramHash)
	assert.Equal(t, ir.OutcomeSuccess, run.Outcome)
	assert.Empty(t, run.Error)
	assert.Positive(t, run.Steps)
	require.Len(t, run.Solutions, 2)
	assert.Equal(t, 0, run.Solutions[0].Index)
	assert.Equal(t, ir.IRString("[]"), run.Solutions[0].Bindings["X"])
	assert.Equal(t, ir.IRString("[1]"), run.Solutions[1].Bindings["X"])
	assert.Equal(t, ir.MustSolutionHash(run.Solutions[1].Bindings), run.Solutions[1].Hash)
}

func TestSolutions_Outcomes(t *testing.T) {
	rec := &memoryRecorder{}
	e := newTestEngine(t, "", WithRecorder(rec))

	solveAll(t, e, "fail.")
	solveErr(t, e, "throw(oops).")

	require.Len(t, rec.runs, 2)
	assert.Equal(t, ir.OutcomeFailure, rec.runs[0].Outcome)
	assert.Empty(t, rec.runs[0].Solutions)
	assert.NotNil(t, rec.runs[0].Solutions)
	assert.Equal(t, ir.OutcomeError, rec.runs[1].Outcome)
	assert.Equal(t, "uncaught exception: oops", rec.runs[1].Error)
	assert.Greater(t, rec.runs[1].Seq, rec.runs[0].Seq)
}

func TestSolutions_SameResultSameHash(t *testing.T) {
	rec := &memoryRecorder{}
	e := newTestEngine(t, appendProgram, WithRecorder(rec))

	solveAll(t, e, "append(X, Y, [a,b]).")
	solveAll(t, e, "append(X, Y, [a,b]).")

	require.Len(t, rec.runs, 2)
	assert.NotEqual(t, rec.runs[0].ID, rec.runs[1].ID)
	assert.Equal(t, ir.MustRunHash(rec.runs[0]), ir.MustRunHash(rec.runs[1]))
}

func TestSolutions_CloseEarly(t *testing.T) {
	rec := &memoryRecorder{}
	e := newTestEngine(t, memberProgram, WithRecorder(rec))

	sols, err := e.Query(context.Background(), "member(X, [a,b,c]).")
	require.NoError(t, err)
	require.True(t, sols.Next())
	assert.Equal(t, "a", term.Format(sols.Bindings()["X"]))
	sols.Close()

	assert.False(t, sols.Next())
	assert.NoError(t, sols.Err())
	require.Len(t, rec.runs, 1)
	assert.Equal(t, ir.OutcomeSuccess, rec.runs[0].Outcome)
	assert.Len(t, rec.runs[0].Solutions, 1)
	assert.True(t, rec.runs[0].Truncated)
}

func TestSolutions_NewQueryClosesPrevious(t *testing.T) {
	e := newTestEngine(t, memberProgram)

	first, err := e.Query(context.Background(), "member(X, [a,b]).")
	require.NoError(t, err)
	require.True(t, first.Next())

	second, err := e.Query(context.Background(), "member(Y, [c]).")
	require.NoError(t, err)
	assert.False(t, first.Next())
	require.True(t, second.Next())
	assert.Equal(t, "c", term.Format(second.Bindings()["Y"]))
}

func TestSolutions_BindingsSnapshot(t *testing.T) {
	e := newTestEngine(t, memberProgram)

	sols, err := e.Query(context.Background(), "member(X, [f(A), g]), A = 1.")
	require.NoError(t, err)
	require.True(t, sols.Next())
	snap := sols.Bindings()

	// Backtracking undoes the bindings but not the snapshot.
	require.True(t, sols.Next())
	assert.Equal(t, "f(1)", term.Format(snap["X"]))
	assert.Equal(t, "g", term.Format(sols.Bindings()["X"]))
}

func TestSolutions_UnderscoreVariablesHidden(t *testing.T) {
	e := newTestEngine(t, "")
	got := solveAll(t, e, "_Hidden = 1, Shown = 2.")
	assert.Equal(t, []map[string]string{{"Shown": "2"}}, got)
}

func TestSolutions_RecordedBindingsUseQueryNames(t *testing.T) {
	e := newTestEngine(t, "")

	got := solveAll(t, e, "X = Y.")
	require.Len(t, got, 1)
	assert.Equal(t, got[0]["X"], got[0]["Y"])
	assert.Contains(t, []string{"X", "Y"}, got[0]["X"])

	got = solveAll(t, e, "X = f(Y, _Z, W), W = g(_).")
	assert.Equal(t, []map[string]string{{"X": "f(Y,_Z,g(_G0))", "Y": "Y", "W": "g(_G0)"}}, got)
}

func TestSolutions_RecorderError(t *testing.T) {
	rec := &memoryRecorder{err: errors.New("disk full")}
	e := newTestEngine(t, "", WithRecorder(rec))

	sols, err := e.Query(context.Background(), "true.")
	require.NoError(t, err)
	assert.True(t, sols.Next())
	assert.False(t, sols.Next())
	require.Error(t, sols.Err())
	assert.Contains(t, sols.Err().Error(), "disk full")
}

func TestSolutions_ParseError(t *testing.T) {
	e := newTestEngine(t, "")
	_, err := e.Query(context.Background(), "foo(")
	require.Error(t, err)
}

func TestSolutions_ClockContinues(t *testing.T) {
	rec := &memoryRecorder{}
	e := newTestEngine(t, "", WithRecorder(rec), WithClock(NewClockAt(41)))

	solveAll(t, e, "true.")
	require.Len(t, rec.runs, 1)
	assert.Equal(t, int64(42), rec.runs[0].Seq)
}
