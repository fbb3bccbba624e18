package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a run configuration rejected before stepping.
	ErrInvalidConfig = errors.New("sim: invalid run configuration")

	// ErrDimensionMismatch indicates an initial state that does not fit the dynamics.
	ErrDimensionMismatch = errors.New("sim: dimension mismatch between state and system")
)

// SimError wraps an error with the step it happened at.
type SimError struct {
	Step    int
	Wrapped error
}

func (e *SimError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *SimError) Unwrap() error {
	return e.Wrapped
}
