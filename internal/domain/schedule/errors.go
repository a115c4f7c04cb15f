// Package schedule defines the outcome kinds shared by every scheduling operation.
//
// Each kind is an expected, recoverable result. Callers branch on it with errors.Is
// against the Err* sentinels or with KindOf; only errors without a kind are
// infrastructure failures.
package schedule

import (
	"errors"
	"fmt"
)

// Kind classifies a rejected scheduling operation.
type Kind string

// Kind constants
const (
	KindIneligibleCoach         Kind = "ineligible_coach"
	KindNoEligibleCoach         Kind = "no_eligible_coach"
	KindCapacityExceeded        Kind = "capacity_exceeded"
	KindCapacityBelowEnrollment Kind = "capacity_below_enrollment"
	KindDuplicateRegistration   Kind = "duplicate_registration"
	KindInvalidTransition       Kind = "invalid_transition"
	KindSessionClosed           Kind = "session_closed"
	KindNotFound                Kind = "not_found"
)

// Error is a scheduling rejection carrying its Kind and a human-readable reason.
type Error struct {
	Kind Kind
	Msg  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Msg
}

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNotFound) ignores Msg.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrIneligibleCoach         = &Error{Kind: KindIneligibleCoach}
	ErrNoEligibleCoach         = &Error{Kind: KindNoEligibleCoach}
	ErrCapacityExceeded        = &Error{Kind: KindCapacityExceeded}
	ErrCapacityBelowEnrollment = &Error{Kind: KindCapacityBelowEnrollment}
	ErrDuplicateRegistration   = &Error{Kind: KindDuplicateRegistration}
	ErrInvalidTransition       = &Error{Kind: KindInvalidTransition}
	ErrSessionClosed           = &Error{Kind: KindSessionClosed}
	ErrNotFound                = &Error{Kind: KindNotFound}
)

// Reject builds an *Error of kind k with a formatted reason.
func Reject(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// NotFound is shorthand for a KindNotFound rejection naming the missing thing.
func NotFound(what, id string) *Error {
	return Reject(KindNotFound, "%s %q does not exist", what, id)
}

// KindOf returns the Kind of the first *Error in err's chain.
// POST: ok is false for nil and for infrastructure errors
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
