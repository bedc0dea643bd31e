package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pyrolog/internal/engine"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, Config{
		MaxSteps:    engine.DefaultMaxSteps,
		OccursCheck: false,
		Unknown:     "error",
		TraceDB:     "",
		LogLevel:    "info",
	}, cfg)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "engine.cue", `
max_steps: 500
unknown:   "fail"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(500), cfg.MaxSteps)
	assert.Equal(t, "fail", cfg.Unknown)
	assert.False(t, cfg.OccursCheck)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.cue", "package cfg\n\noccurs_check: true\n")
	writeConfig(t, dir, "b.cue", "package cfg\n\nlog_level: \"debug\"\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, cfg.OccursCheck)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative steps", "max_steps: -1\n"},
		{"bad enum", "unknown: \"warn\"\n"},
		{"wrong type", "occurs_check: \"yes\"\n"},
		{"unknown field", "max_stepz: 10\n"},
		{"syntax", "max_steps: {\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "engine.cue", tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.cue"))
	assert.Error(t, err)
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.MaxSteps = 50
	cfg.Unknown = "fail"
	cfg.OccursCheck = true

	e := engine.New(cfg.EngineOptions()...)
	require.NoError(t, e.Consult("loop :- loop."))

	sols, err := e.Query(context.Background(), "undefined_thing.")
	require.NoError(t, err)
	assert.False(t, sols.Next())
	assert.NoError(t, sols.Err())

	sols, err = e.Query(context.Background(), "X = f(X).")
	require.NoError(t, err)
	assert.False(t, sols.Next())

	sols, err = e.Query(context.Background(), "loop.")
	require.NoError(t, err)
	assert.False(t, sols.Next())
	assert.True(t, engine.IsStepsExceededError(sols.Err()))
}
