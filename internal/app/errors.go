package app

import "errors"

// Application errors.
var (
	// ErrNoHost is returned when New gets a nil host.
	ErrNoHost = errors.New("no host")

	// ErrAlreadyAttached indicates Attach was already called.
	ErrAlreadyAttached = errors.New("application already attached")

	// ErrClosed indicates the application was closed.
	ErrClosed = errors.New("application closed")

	// ErrNotStarted indicates the host has not run setup yet.
	ErrNotStarted = errors.New("application not started")

	// ErrCannotStart indicates the host cannot fire its own lifecycle events.
	ErrCannotStart = errors.New("host cannot be started")
)

// InitError reports a component that failed to initialize.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}
