package engine

import "sync/atomic"

// Sequencer stamps recorded runs with increasing sequence numbers. *Clock
// implements it.
type Sequencer interface {
	Next() int64
	Current() int64
}

// Clock is a monotonic logical clock. Every recorded query run is stamped
// with the next value, which orders runs in a trace without wall-clock time.
//
// Clock is safe for concurrent use, so engines running in parallel may
// share one to produce a single ordering.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that continues after start, e.g. from the
// last seq found in an existing trace database.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
