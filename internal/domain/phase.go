package domain

// Phase is the single-valued, thread-scoped workflow state.
// Transitions are strictly linear and forward-only per run; the
// terminal step always returns to idle.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseBrainstorming Phase = "brainstorming"
	PhaseCollaboration Phase = "collaboration"
	PhaseExecution     Phase = "execution"
	PhaseReporting     Phase = "reporting"
)

// Next returns the phase that follows p in a run. The reporting phase
// wraps back to idle.
func (p Phase) Next() Phase {
	switch p {
	case PhaseIdle:
		return PhaseBrainstorming
	case PhaseBrainstorming:
		return PhaseCollaboration
	case PhaseCollaboration:
		return PhaseExecution
	case PhaseExecution:
		return PhaseReporting
	default:
		return PhaseIdle
	}
}

// Running reports whether p is an active workflow phase.
func (p Phase) Running() bool {
	return p != PhaseIdle && p != ""
}
