package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxSteps is the default inference limit per query.
const DefaultMaxSteps = 1_000_000

// QuotaEnforcer counts inferences (calls dispatched by the CALL state) for
// one query and stops the query once the limit is passed.
//
// Infinite recursion and runaway backtracking never terminate on their
// own; the quota turns them into a StepsExceededError. A limit of zero or
// less disables the check.
type QuotaEnforcer struct {
	maxSteps int64
	current  int64
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
func NewQuotaEnforcer(maxSteps int64) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check increments the step counter and validates it against the limit.
func (q *QuotaEnforcer) Check() error {
	q.current++
	if q.maxSteps > 0 && q.current > q.maxSteps {
		return &StepsExceededError{Steps: q.current, Limit: q.maxSteps}
	}
	return nil
}

// Reset sets the step counter back to 0 for the next query.
func (q *QuotaEnforcer) Reset() {
	q.current = 0
}

// Current returns the current step count.
func (q *QuotaEnforcer) Current() int64 {
	return q.current
}

// MaxSteps returns the limit.
func (q *QuotaEnforcer) MaxSteps() int64 {
	return q.maxSteps
}

// StepsExceededError is returned when a query passes its inference limit.
// It cannot be caught by catch/3.
type StepsExceededError struct {
	Steps int64
	Limit int64
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("query exceeded max steps quota: %d steps > %d limit", e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
