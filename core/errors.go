package core

import (
	"errors"
	"fmt"
)

// ErrNoHandler is returned by the router when no handler (including the
// fallback) is registered for the resolved mode.
var ErrNoHandler = errors.New("no handler registered")

// PreconditionError signals structural misuse at a lifecycle boundary, e.g.
// starting a meeting while one is already recording. Unlike the
// internally-absorbed ambiguity / contradiction / instability signals, a
// precondition failure is surfaced to the caller as an explicit error.
type PreconditionError struct {
	Op     string // the operation that was attempted
	Reason string // why its precondition does not hold
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: precondition failed: %s", e.Op, e.Reason)
}

// NewPreconditionError constructs a PreconditionError for op.
func NewPreconditionError(op, reason string) *PreconditionError {
	return &PreconditionError{Op: op, Reason: reason}
}

// IsPrecondition reports whether err (or anything it wraps) is a
// PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
