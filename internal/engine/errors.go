package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/pyrolog/internal/term"
)

// CatchableError is a Prolog exception that catch/3 can intercept. Term is
// a snapshot taken when the error was raised, so it survives backtracking.
//
// Engine-raised errors have the form error(Formal), where Formal is one of
// instantiation_error, type_error(Type, Culprit), domain_error(Domain,
// Culprit), existence_error(procedure, Name/Arity), permission_error(Action,
// Type, Culprit), representation_error(What) or evaluation_error(What).
type CatchableError struct {
	Term term.Term
}

// Error implements the error interface.
func (e *CatchableError) Error() string {
	return "uncaught exception: " + term.Format(e.Term)
}

// UserError is an exception raised by throw/1.
type UserError struct {
	CatchableError
}

// Unwrap exposes the embedded CatchableError to errors.As.
func (e *UserError) Unwrap() error {
	return &e.CatchableError
}

// UncatchableError aborts the running query. catch/3 never sees it.
type UncatchableError struct {
	Message string
}

// Error implements the error interface.
func (e *UncatchableError) Error() string {
	return "internal error: " + e.Message
}

// IsFailure returns true if err means "no solution".
func IsFailure(err error) bool {
	return errors.Is(err, term.ErrUnificationFailed)
}

// IsCatchable returns true if err is or wraps a Prolog exception.
// Uses errors.As to handle wrapped errors.
func IsCatchable(err error) bool {
	return asCatchable(err) != nil
}

// IsUncatchable returns true if err aborts a query: an UncatchableError or
// an exceeded step quota.
func IsUncatchable(err error) bool {
	var ue *UncatchableError
	return errors.As(err, &ue) || IsStepsExceededError(err)
}

// ErrorTerm returns the Prolog term carried by a catchable error, or nil.
func ErrorTerm(err error) term.Term {
	if ce := asCatchable(err); ce != nil {
		return ce.Term
	}
	return nil
}

func asCatchable(err error) *CatchableError {
	var ce *CatchableError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

func (e *Engine) errorTerm(formal term.Term) error {
	return &CatchableError{Term: term.NewCompound(term.ErrorAtom, formal)}
}

// InstantiationError builds error(instantiation_error).
func (e *Engine) InstantiationError() error {
	return e.errorTerm(e.in.Atom("instantiation_error"))
}

// TypeError builds error(type_error(Type, Culprit)).
func (e *Engine) TypeError(typ string, culprit term.Term) error {
	return e.errorTerm(e.in.Compound("type_error", e.in.Atom(typ), term.GetValue(culprit)))
}

// DomainError builds error(domain_error(Domain, Culprit)).
func (e *Engine) DomainError(domain string, culprit term.Term) error {
	return e.errorTerm(e.in.Compound("domain_error", e.in.Atom(domain), term.GetValue(culprit)))
}

// ExistenceError builds error(existence_error(procedure, Name/Arity)).
func (e *Engine) ExistenceError(sig term.Signature) error {
	return e.errorTerm(e.in.Compound("existence_error", e.in.Atom("procedure"), e.in.Indicator(sig)))
}

// PermissionError builds error(permission_error(Action, Type, Culprit)).
func (e *Engine) PermissionError(action, typ string, culprit term.Term) error {
	return e.errorTerm(e.in.Compound("permission_error",
		e.in.Atom(action), e.in.Atom(typ), term.GetValue(culprit)))
}

// RepresentationError builds error(representation_error(What)).
func (e *Engine) RepresentationError(what string) error {
	return e.errorTerm(e.in.Compound("representation_error", e.in.Atom(what)))
}

// ResourceError builds error(resource_error(What)).
func (e *Engine) ResourceError(what string) error {
	return e.errorTerm(e.in.Compound("resource_error", e.in.Atom(what)))
}

// EvaluationError builds error(evaluation_error(What)).
func (e *Engine) EvaluationError(what string) error {
	return e.errorTerm(e.in.Compound("evaluation_error", e.in.Atom(what)))
}

// staticProcedure is the error for modifying a builtin.
func (e *Engine) staticProcedure(sig term.Signature) error {
	return e.PermissionError("modify", "static_procedure", e.in.Indicator(sig))
}

func errReentrant(op string) error {
	return &UncatchableError{Message: fmt.Sprintf("%s called while a query is running", op)}
}
