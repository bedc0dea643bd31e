package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pyrolog/internal/ir"
)

// Snapshot converts a result to the canonical IR object stored in golden
// files. Every field of every run is included, so any change in answers,
// answer order, step counts or error text shows up as a diff.
func Snapshot(r *Result) ir.IRObject {
	runs := make(ir.IRArray, len(r.Runs))
	for i, run := range r.Runs {
		runs[i] = runObject(run)
	}
	return ir.IRObject{
		"scenario": ir.IRString(r.Name),
		"pass":     ir.IRBool(r.Pass),
		"runs":     runs,
	}
}

func runObject(run ir.Run) ir.IRObject {
	sols := make(ir.IRArray, len(run.Solutions))
	for i, s := range run.Solutions {
		sols[i] = ir.IRObject{
			"index":    ir.IRInt(s.Index),
			"bindings": s.Bindings,
			"hash":     ir.IRString(s.Hash),
		}
	}
	obj := ir.IRObject{
		"id":           ir.IRString(run.ID),
		"seq":          ir.IRInt(run.Seq),
		"query":        ir.IRString(run.Query),
		"program_hash": ir.IRString(run.ProgramHash),
		"outcome":      ir.IRString(run.Outcome),
		"steps":        ir.IRInt(run.Steps),
		"solutions":    sols,
	}
	if run.Error != "" {
		obj["error"] = ir.IRString(run.Error)
	}
	if run.Truncated {
		obj["truncated"] = ir.IRBool(true)
	}
	return obj
}

// RunWithGolden executes a scenario and compares its runs against the
// golden file testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the runs don't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := ir.MarshalCanonical(Snapshot(result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
