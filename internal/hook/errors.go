package hook

import (
	"errors"
	"fmt"
)

// Errors returned by the registry and chains.
var (
	// ErrRegistryFrozen is returned by Register once chains are installed.
	ErrRegistryFrozen = errors.New("hook: registry is frozen")

	// ErrAlreadyInstalled is returned when a point is installed twice.
	ErrAlreadyInstalled = errors.New("hook: extension point already installed")

	// ErrNotInstalled is returned when a point is called before installation.
	ErrNotInstalled = errors.New("hook: extension point not installed")

	// ErrContinuationReused is returned when a step calls next more than once.
	ErrContinuationReused = errors.New("hook: continuation called more than once")

	// ErrNilPending is returned when a step returns a nil *Pending.
	ErrNilPending = errors.New("hook: step returned no result")

	// ErrNilInterceptor is returned when registering a nil interceptor.
	ErrNilInterceptor = errors.New("hook: nil interceptor")

	// ErrNilOriginal is returned when installing without an original.
	ErrNilOriginal = errors.New("hook: nil original implementation")
)

// PanicError wraps a value recovered from a panicking chain step.
type PanicError struct {
	Point Point
	Step  string
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("hook: %s: step %q panicked: %v", e.Point, e.Step, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ObserverError reports a failed observer of an observing step.
// It is logged and handed to the error reporter, never returned to the caller.
type ObserverError struct {
	Point    Point
	Step     string
	Observer string
	Err      error
}

func (e *ObserverError) Error() string {
	if e.Point == "" {
		return fmt.Sprintf("hook: %s: observer %q: %v", e.Step, e.Observer, e.Err)
	}
	return fmt.Sprintf("hook: %s: %s: observer %q: %v", e.Point, e.Step, e.Observer, e.Err)
}

func (e *ObserverError) Unwrap() error { return e.Err }
