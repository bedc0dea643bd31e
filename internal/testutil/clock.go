package testutil

import "sync/atomic"

// DeterministicClock implements engine.Sequencer for tests. Two clocks
// built with the same start hand out the same seq values, so a scenario
// recorded twice produces identical runs.
type DeterministicClock struct {
	seq atomic.Int64
}

// NewDeterministicClock returns a clock whose first Next is 1.
func NewDeterministicClock() *DeterministicClock {
	return NewDeterministicClockAt(0)
}

// NewDeterministicClockAt returns a clock whose first Next is start+1,
// matching a trace database whose last recorded seq is start.
func NewDeterministicClockAt(start int64) *DeterministicClock {
	c := &DeterministicClock{}
	c.seq.Store(start)
	return c
}

func (c *DeterministicClock) Next() int64 {
	return c.seq.Add(1)
}

func (c *DeterministicClock) Current() int64 {
	return c.seq.Load()
}
