package hsm

// Transition describes a state transition.
type Transition[TState, TTrigger comparable] struct {
	// Source is the state transitioned from. It is the zero value for the
	// initial transition.
	Source TState

	// Destination is the state transitioned to.
	Destination TState

	// Trigger is the trigger that caused the transition. It is the zero value
	// for the initial transition.
	Trigger TTrigger

	// initial marks the synthetic transition that bootstraps the machine.
	initial bool
}

// NewTransition creates a new transition.
func NewTransition[TState, TTrigger comparable](source, destination TState, trigger TTrigger) Transition[TState, TTrigger] {
	return Transition[TState, TTrigger]{
		Source:      source,
		Destination: destination,
		Trigger:     trigger,
	}
}

// NewInitialTransition creates the transition used to enter the initial state.
// It has neither a source nor a trigger.
func NewInitialTransition[TState, TTrigger comparable](destination TState) Transition[TState, TTrigger] {
	return Transition[TState, TTrigger]{
		Destination: destination,
		initial:     true,
	}
}

// IsReentry returns true if the transition is a re-entry, i.e., the identity transition.
func (t Transition[TState, TTrigger]) IsReentry() bool {
	return !t.initial && t.Source == t.Destination
}

// IsInitial returns true if this is the initial transition.
func (t Transition[TState, TTrigger]) IsInitial() bool {
	return t.initial
}

// HasTrigger reports whether Trigger carries a real trigger. Only the initial
// transition has none.
func (t Transition[TState, TTrigger]) HasTrigger() bool {
	return !t.initial
}
