package lifecycle

import (
	"errors"
	"fmt"
)

// Lifecycle errors.
var (
	// ErrInvalidTransition is returned when a phase runs out of order or twice.
	ErrInvalidTransition = errors.New("lifecycle: invalid transition")

	// ErrDuplicateFeature is returned when two features share a name.
	ErrDuplicateFeature = errors.New("lifecycle: duplicate feature")

	// ErrUnknownDependency is returned when a feature wants to run after a
	// feature that was never added.
	ErrUnknownDependency = errors.New("lifecycle: unknown dependency")

	// ErrCyclicDependency is returned when feature ordering has a cycle.
	ErrCyclicDependency = errors.New("lifecycle: cyclic feature dependency")

	// ErrAlreadyAttached is returned when Attach is called twice.
	ErrAlreadyAttached = errors.New("lifecycle: already attached")

	// ErrUndeclaredPoint is returned when a feature registers an interceptor
	// on an extension point that will never be installed.
	ErrUndeclaredPoint = errors.New("lifecycle: undeclared extension point")

	// ErrUnsupportedPoint is returned when the host cannot intercept a
	// declared extension point.
	ErrUnsupportedPoint = errors.New("lifecycle: host does not support extension point")
)

// InitError reports which feature failed in which phase.
type InitError struct {
	Phase   string
	Feature string
	Err     error
}

func (e *InitError) Error() string {
	if e.Feature == "" {
		return fmt.Sprintf("lifecycle: %s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("lifecycle: %s %s: %v", e.Phase, e.Feature, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }
