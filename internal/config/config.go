// Package config loads engine settings from CUE.
//
// A config file sets any subset of the fields of the #Config definition in
// schema.cue:
//
//	max_steps:    50000
//	occurs_check: true
//	unknown:      "fail"
//	trace_db:     "trace.db"
//	log_level:    "debug"
//
// The file is unified with the schema, so defaults fill in missing fields
// and values outside the allowed set are rejected with their position.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"

	"github.com/roach88/pyrolog/internal/engine"
)

//go:embed schema.cue
var schemaCUE string

// Config holds engine settings.
type Config struct {
	MaxSteps    int64  `json:"max_steps"`
	OccursCheck bool   `json:"occurs_check"`
	Unknown     string `json:"unknown"`
	TraceDB     string `json:"trace_db"`
	LogLevel    string `json:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg, err := decode(cuecontext.New(), nil)
	if err != nil {
		// The embedded schema always has concrete defaults.
		panic(err)
	}
	return cfg
}

// Load reads a config file, or every .cue file of a directory as one
// package. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	ctx := cuecontext.New()
	var user cue.Value
	if info.IsDir() {
		instances := load.Instances([]string{"."}, &load.Config{Dir: path})
		if len(instances) == 0 {
			return Config{}, fmt.Errorf("load config: no CUE instance in %s", path)
		}
		if err := instances[0].Err; err != nil {
			return Config{}, fmt.Errorf("load config: %s", cueerrors.Details(err, nil))
		}
		user = ctx.BuildInstance(instances[0])
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		user = ctx.CompileBytes(data, cue.Filename(path))
	}
	if err := user.Err(); err != nil {
		return Config{}, fmt.Errorf("load config: %s", cueerrors.Details(err, nil))
	}
	return decode(ctx, &user)
}

// decode unifies user (if any) with #Config and extracts the result.
func decode(ctx *cue.Context, user *cue.Value) (Config, error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}
	v := schema.LookupPath(cue.ParsePath("#Config"))
	if user != nil {
		v = v.Unify(*user)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("invalid config: %s", cueerrors.Details(err, nil))
	}
	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// EngineOptions converts the settings into engine options.
func (c Config) EngineOptions() []engine.EngineOption {
	return []engine.EngineOption{
		engine.WithMaxSteps(c.MaxSteps),
		engine.WithOccursCheck(c.OccursCheck),
		engine.WithUnknown(engine.UnknownPolicy(c.Unknown)),
	}
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
