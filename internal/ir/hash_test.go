package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSolutionHash_Deterministic(t *testing.T) {
	a := IRObject{"X": IRString("1"), "Y": IRString("[a,b]")}
	b := IRObject{"Y": IRString("[a,b]"), "X": IRString("1")}

	assert.Equal(t, MustSolutionHash(a), MustSolutionHash(b))
	assert.Len(t, MustSolutionHash(a), 64)
	assert.NotEqual(t, MustSolutionHash(a), MustSolutionHash(IRObject{"X": IRString("2")}))
}

func TestProgramHash(t *testing.T) {
	h1 := ProgramHash([]string{"a.", "b."})
	assert.Equal(t, h1, ProgramHash([]string{"a.", "b."}))
	assert.NotEqual(t, h1, ProgramHash([]string{"b.", "a."}))
	assert.NotEqual(t, h1, ProgramHash([]string{"a.b."}))
}

func TestRunHash_IgnoresIdentity(t *testing.T) {
	run := Run{
		ID:          "run-1",
		Seq:         1,
		Query:       "X = 1",
		ProgramHash: ProgramHash(nil),
		Outcome:     OutcomeSuccess,
		Steps:       3,
		Solutions: []Solution{
			{Index: 0, Bindings: IRObject{"X": IRString("1")}, Hash: MustSolutionHash(IRObject{"X": IRString("1")})},
		},
	}
	replayed := run
	replayed.ID = "run-2"
	replayed.Seq = 9
	replayed.Steps = 4

	assert.Equal(t, MustRunHash(run), MustRunHash(replayed))

	changed := run
	changed.Outcome = OutcomeFailure
	assert.NotEqual(t, MustRunHash(run), MustRunHash(changed))
}

func TestHashWithDomain_Separates(t *testing.T) {
	assert.NotEqual(t, hashWithDomain(DomainRun, []byte("x")), hashWithDomain(DomainSolution, []byte("x")))
}
