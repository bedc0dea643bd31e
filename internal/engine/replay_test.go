package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pyrolog/internal/ir"
)

func TestReplay_Identical(t *testing.T) {
	rec := &memoryRecorder{}
	e := newTestEngine(t, appendProgram+memberProgram, WithRecorder(rec))
	solveAll(t, e, "append(X, Y, [1,2,3]).")
	solveAll(t, e, "member(z, [a,b]).")
	solveErr(t, e, "undefined(1).")
	require.Len(t, rec.runs, 3)

	fresh := newTestEngine(t, appendProgram+memberProgram)
	result, err := fresh.Replay(context.Background(), rec.runs)
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, 3, result.Runs)
	assert.Equal(t, 3, result.Matched)
}

func TestReplay_DetectsChangedProgram(t *testing.T) {
	rec := &memoryRecorder{}
	e := newTestEngine(t, "color(red).\ncolor(blue).", WithRecorder(rec))
	solveAll(t, e, "color(C).")
	require.Len(t, rec.runs, 1)

	changed := newTestEngine(t, "color(blue).\ncolor(red).")
	result, err := changed.Replay(context.Background(), rec.runs)
	require.NoError(t, err)
	assert.False(t, result.OK())
	require.Len(t, result.Mismatches, 1)
	assert.Equal(t, ir.IRString("red"), result.Mismatches[0].Recorded.Solutions[0].Bindings["C"])
	assert.Equal(t, ir.IRString("blue"), result.Mismatches[0].Replayed.Solutions[0].Bindings["C"])
}

func TestReplay_BadQuery(t *testing.T) {
	e := newTestEngine(t, "")
	_, err := e.Replay(context.Background(), []ir.Run{{ID: "r", Query: "foo("}})
	require.Error(t, err)
}

func TestReplay_TruncatedRun(t *testing.T) {
	rec := &memoryRecorder{}
	e := newTestEngine(t, "nat(0).\nnat(N) :- nat(M), N is M + 1.", WithRecorder(rec))

	sols, err := e.Query(context.Background(), "nat(X).")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.True(t, sols.Next())
	}
	sols.Close()
	require.Len(t, rec.runs, 1)
	require.True(t, rec.runs[0].Truncated)

	fresh := newTestEngine(t, "nat(0).\nnat(N) :- nat(M), N is M + 1.")
	result, err := fresh.Replay(context.Background(), rec.runs)
	require.NoError(t, err)
	assert.True(t, result.OK())
}
