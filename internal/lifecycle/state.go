package lifecycle

// State is the orchestrator's position in the host lifecycle.
type State int

// Lifecycle states. Transitions only move forward.
const (
	// StateUninitialized - nothing has run yet.
	StateUninitialized State = iota

	// StateSetupComplete - every feature finished setup.
	StateSetupComplete

	// StateReady - activations ran and every declared point is installed.
	StateReady
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSetupComplete:
		return "setup-complete"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// next returns the state that follows s.
func (s State) next() State {
	if s == StateReady {
		return StateReady
	}
	return s + 1
}
