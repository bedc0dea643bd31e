package harness

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/pyrolog/internal/ir"
)

// AssertionError is returned when a query does not meet its expectation.
type AssertionError struct {
	Index    int    // Position of the query in the scenario
	Query    string // Query text as written in the scenario
	Kind     string // solutions, count, fail, error
	Expected string
	Actual   string
	Diff     string // go-cmp diff for solution mismatches
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "queries[%d] %s: %s mismatch\n", e.Index, e.Query, e.Kind)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Diff != "" {
		fmt.Fprintf(&buf, "  Diff (-expected +actual):\n%s", e.Diff)
	}
	return buf.String()
}

// checkExpect compares one finished run with its expectation. It returns
// nil when everything matches.
func checkExpect(index int, q QueryCase, run ir.Run, runErr error) []error {
	var errs []error
	fail := func(kind, expected, actual, diff string) {
		errs = append(errs, &AssertionError{
			Index:    index,
			Query:    q.Query,
			Kind:     kind,
			Expected: expected,
			Actual:   actual,
			Diff:     diff,
		})
	}
	exp := q.Expect

	if exp.Error != "" {
		switch {
		case runErr == nil:
			fail("error", fmt.Sprintf("error containing %q", exp.Error), describe(run), "")
		case !strings.Contains(runErr.Error(), exp.Error):
			fail("error", fmt.Sprintf("error containing %q", exp.Error), runErr.Error(), "")
		}
		return errs
	}
	if runErr != nil {
		fail("error", "no error", runErr.Error(), "")
		return errs
	}

	got := bindingsOf(run)
	if exp.Fail && len(got) > 0 {
		fail("fail", "no solutions", describe(run), "")
	}
	if exp.Solutions != nil {
		if diff := cmp.Diff(exp.Solutions, got); diff != "" {
			fail("solutions",
				fmt.Sprintf("%d solutions", len(exp.Solutions)),
				fmt.Sprintf("%d solutions", len(got)),
				diff)
		}
	}
	if exp.Count != nil && *exp.Count != len(got) {
		fail("count", fmt.Sprintf("%d solutions", *exp.Count), fmt.Sprintf("%d solutions", len(got)), "")
	}
	return errs
}

// bindingsOf flattens a run's solutions to the shape scenarios use.
func bindingsOf(run ir.Run) []map[string]string {
	out := make([]map[string]string, len(run.Solutions))
	for i, sol := range run.Solutions {
		m := make(map[string]string, len(sol.Bindings))
		for k, v := range sol.Bindings {
			if s, ok := v.(ir.IRString); ok {
				m[k] = string(s)
			} else {
				m[k] = fmt.Sprint(v)
			}
		}
		out[i] = m
	}
	return out
}

func describe(run ir.Run) string {
	switch run.Outcome {
	case ir.OutcomeError:
		return "error: " + run.Error
	case ir.OutcomeFailure:
		return "no solutions"
	}
	return fmt.Sprintf("%d solutions", len(run.Solutions))
}
