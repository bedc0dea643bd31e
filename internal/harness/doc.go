// Package harness runs conformance scenarios against the Prolog engine.
//
// A scenario loads a program, runs a list of queries, and checks each
// query's answers against expectations. Every scenario gets its own
// engine with a deterministic clock and sequential run IDs, so the
// recorded trace is byte-identical across runs and can be compared to a
// golden snapshot.
//
// # Scenario Format
//
//	name: append_split
//	description: "append/3 enumerates every split of a list"
//	files:
//	  - lists.pl          # optional, relative to the scenario file
//	program: |
//	  app([], L, L).
//	  app([H|T], L, [H|R]) :- app(T, L, R).
//	options:
//	  max_steps: 10000
//	  unknown: fail
//	queries:
//	  - query: "app(X, Y, [1,2])."
//	    expect:
//	      solutions:
//	        - { X: "[]", Y: "[1,2]" }
//	        - { X: "[1]", Y: "[2]" }
//	        - { X: "[1,2]", Y: "[]" }
//	  - query: "app(X, [], [1])."
//	    expect:
//	      count: 1
//	  - query: "foo."
//	    expect:
//	      error: "existence_error"
//	replay: true
//
// # Expectations
//
//   - solutions: the exact ordered list of answers, each a map from
//     variable name to formatted value
//   - count: the number of answers
//   - fail: the query has no answer
//   - error: the query raises an uncaught error whose text contains the
//     given substring
//   - limit: stop after this many answers (for infinite generators)
//
// With replay set, every recorded run is re-executed on a fresh engine
// and its hash compared with the original.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/append.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
