package ir

// Outcome classifies how a query run ended.
type Outcome string

const (
	// OutcomeSuccess means the query produced at least one solution.
	OutcomeSuccess Outcome = "success"
	// OutcomeFailure means the query had no solution.
	OutcomeFailure Outcome = "failure"
	// OutcomeError means the query raised an uncaught error.
	OutcomeError Outcome = "error"
)

// Run records one top-level query.
//
// ID is a time-sortable UUID assigned by the engine; Seq comes from the
// engine's logical clock and orders runs within a trace. Neither takes part
// in RunHash, so replaying the same query yields the same hash.
// Truncated marks a run that was closed before its query was exhausted.
type Run struct {
	ID          string     `json:"id"`
	Seq         int64      `json:"seq"`
	Query       string     `json:"query"`
	ProgramHash string     `json:"program_hash"`
	Outcome     Outcome    `json:"outcome"`
	Error       string     `json:"error,omitempty"`
	Steps       int64      `json:"steps"`
	Truncated   bool       `json:"truncated,omitempty"`
	Solutions   []Solution `json:"solutions"`
}

// Solution is one answer of a run. Bindings maps each named query variable
// to the formatted text of its value.
type Solution struct {
	Index    int      `json:"index"`
	Bindings IRObject `json:"bindings"`
	Hash     string   `json:"hash"`
}

// SolutionHashes returns the hash of every solution in order.
func (r Run) SolutionHashes() []string {
	hashes := make([]string, len(r.Solutions))
	for i, s := range r.Solutions {
		hashes[i] = s.Hash
	}
	return hashes
}
