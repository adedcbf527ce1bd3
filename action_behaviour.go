package hsm

// Action is run when a trigger behaviour fires. It receives the machine context.
type Action[TContext any] func(c TContext) error

// TransitionAction is an entry or exit action. It observes the full transition.
type TransitionAction[TState, TTrigger comparable, TContext any] func(t Transition[TState, TTrigger], c TContext) error

// EntryActionBehaviour is an entry action of a state, optionally bound to a trigger.
type EntryActionBehaviour[TState, TTrigger comparable, TContext any] struct {
	action      TransitionAction[TState, TTrigger, TContext]
	description InvocationInfo
	fromTrigger TTrigger
	bound       bool
}

// NewEntryActionBehaviour creates an entry action that runs on every entry.
func NewEntryActionBehaviour[TState, TTrigger comparable, TContext any](
	action TransitionAction[TState, TTrigger, TContext],
	description InvocationInfo,
) *EntryActionBehaviour[TState, TTrigger, TContext] {
	return &EntryActionBehaviour[TState, TTrigger, TContext]{
		action:      action,
		description: description,
	}
}

// NewEntryActionBehaviourFrom creates an entry action that only runs when the
// state is entered through trigger.
func NewEntryActionBehaviourFrom[TState, TTrigger comparable, TContext any](
	trigger TTrigger,
	action TransitionAction[TState, TTrigger, TContext],
	description InvocationInfo,
) *EntryActionBehaviour[TState, TTrigger, TContext] {
	return &EntryActionBehaviour[TState, TTrigger, TContext]{
		action:      action,
		description: description,
		fromTrigger: trigger,
		bound:       true,
	}
}

// Execute runs the action unless it is bound to a different trigger.
func (e *EntryActionBehaviour[TState, TTrigger, TContext]) Execute(t Transition[TState, TTrigger], c TContext) error {
	if e.bound && (!t.HasTrigger() || t.Trigger != e.fromTrigger) {
		return nil
	}
	return e.action(t, c)
}

// Description returns the description of the action.
func (e *EntryActionBehaviour[TState, TTrigger, TContext]) Description() InvocationInfo {
	return e.description
}

// FromTrigger returns the trigger the action is bound to, if any.
func (e *EntryActionBehaviour[TState, TTrigger, TContext]) FromTrigger() (TTrigger, bool) {
	return e.fromTrigger, e.bound
}

// ExitActionBehaviour is an exit action of a state.
type ExitActionBehaviour[TState, TTrigger comparable, TContext any] struct {
	action      TransitionAction[TState, TTrigger, TContext]
	description InvocationInfo
}

// NewExitActionBehaviour creates a new exit action.
func NewExitActionBehaviour[TState, TTrigger comparable, TContext any](
	action TransitionAction[TState, TTrigger, TContext],
	description InvocationInfo,
) *ExitActionBehaviour[TState, TTrigger, TContext] {
	return &ExitActionBehaviour[TState, TTrigger, TContext]{
		action:      action,
		description: description,
	}
}

// Execute runs the action.
func (e *ExitActionBehaviour[TState, TTrigger, TContext]) Execute(t Transition[TState, TTrigger], c TContext) error {
	return e.action(t, c)
}

// Description returns the description of the action.
func (e *ExitActionBehaviour[TState, TTrigger, TContext]) Description() InvocationInfo {
	return e.description
}
