package kmeans

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is the sentinel for bad data, k or strategy. Every
	// *InvalidInputError unwraps to it.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPrecondition is the sentinel for operations called in the wrong
	// engine state. Every *PreconditionError unwraps to it.
	ErrPrecondition = errors.New("precondition failed")
	// ErrStepLimit is returned by RunToConvergence when the configured
	// maximum number of steps was taken without converging.
	ErrStepLimit = errors.New("step limit reached before convergence")
)

// InvalidInputError is raised at initialization time for an empty data set,
// a non-positive k, a k larger than the data set or an unknown strategy.
type InvalidInputError struct {
	Op     string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: invalid input: %s", e.Op, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// PreconditionError indicates that an operation isn't valid in the current
// engine state, e.g stepping before all centroids are placed or after the
// run has converged. It's recoverable with Reset or (for manual placement)
// AddManualCentroid.
type PreconditionError struct {
	Op     string
	State  State
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s (state: %s)", e.Op, e.Reason, e.State)
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

func invalidInput(op, reason string) error {
	return &InvalidInputError{Op: op, Reason: reason}
}

func invalidInputf(op, format string, args ...interface{}) error {
	return &InvalidInputError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
