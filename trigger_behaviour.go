package hsm

import "slices"

// StateSelector computes the destination of a dynamic transition from the context.
type StateSelector[TState comparable, TContext any] func(c TContext) TState

// TriggerBehaviour describes what happens when a trigger fires in a state.
// The set of implementations is closed: *TransitioningTriggerBehaviour,
// *InternalTriggerBehaviour and *DynamicTriggerBehaviour.
type TriggerBehaviour[TState, TTrigger comparable, TContext any] interface {
	// Trigger returns the trigger associated with this behaviour.
	Trigger() TTrigger

	// Guard returns the transition guard for this behaviour.
	Guard() TransitionGuard[TContext]

	// GuardConditionMet returns true if all guard conditions are met.
	GuardConditionMet(c TContext) bool

	// UnmetGuardConditions returns the descriptions of all unmet guard conditions.
	UnmetGuardConditions(c TContext) []string

	// IsInternal reports whether firing leaves the state untouched.
	IsInternal() bool

	// PerformAction runs the action bound to the behaviour. It never changes
	// the destination.
	PerformAction(c TContext) error

	// TransitionsTo computes the destination without side effects.
	TransitionsTo(source TState, c TContext) TState

	triggerBehaviour()
}

type triggerBehaviourBase[TTrigger comparable, TContext any] struct {
	trigger TTrigger
	guard   TransitionGuard[TContext]
	action  Action[TContext]
}

func (t *triggerBehaviourBase[TTrigger, TContext]) Trigger() TTrigger {
	return t.trigger
}

func (t *triggerBehaviourBase[TTrigger, TContext]) Guard() TransitionGuard[TContext] {
	return TransitionGuard[TContext]{Conditions: slices.Clone(t.guard.Conditions)}
}

func (t *triggerBehaviourBase[TTrigger, TContext]) GuardConditionMet(c TContext) bool {
	return t.guard.GuardConditionsMet(c)
}

func (t *triggerBehaviourBase[TTrigger, TContext]) UnmetGuardConditions(c TContext) []string {
	return t.guard.UnmetGuardConditions(c)
}

func (t *triggerBehaviourBase[TTrigger, TContext]) PerformAction(c TContext) error {
	if t.action == nil {
		return nil
	}
	return t.action(c)
}

// HasAction reports whether an action is bound to the behaviour.
func (t *triggerBehaviourBase[TTrigger, TContext]) HasAction() bool {
	return t.action != nil
}

// TransitioningTriggerBehaviour represents a transition to a fixed destination state.
// A destination equal to the owning state is a reentry.
type TransitioningTriggerBehaviour[TState, TTrigger comparable, TContext any] struct {
	triggerBehaviourBase[TTrigger, TContext]

	destination TState
}

// NewTransitioningTriggerBehaviour creates a new transitioning trigger behaviour.
func NewTransitioningTriggerBehaviour[TState, TTrigger comparable, TContext any](
	trigger TTrigger,
	destination TState,
	guard TransitionGuard[TContext],
	action Action[TContext],
) *TransitioningTriggerBehaviour[TState, TTrigger, TContext] {
	return &TransitioningTriggerBehaviour[TState, TTrigger, TContext]{
		triggerBehaviourBase: triggerBehaviourBase[TTrigger, TContext]{
			trigger: trigger,
			guard:   guard,
			action:  action,
		},
		destination: destination,
	}
}

// Destination returns the fixed destination state.
func (b *TransitioningTriggerBehaviour[TState, TTrigger, TContext]) Destination() TState {
	return b.destination
}

func (b *TransitioningTriggerBehaviour[TState, TTrigger, TContext]) IsInternal() bool {
	return false
}

func (b *TransitioningTriggerBehaviour[TState, TTrigger, TContext]) TransitionsTo(TState, TContext) TState {
	return b.destination
}

func (b *TransitioningTriggerBehaviour[TState, TTrigger, TContext]) triggerBehaviour() {}

// InternalTriggerBehaviour runs its action without exiting or entering any state.
// Without an action it ignores the trigger.
type InternalTriggerBehaviour[TState, TTrigger comparable, TContext any] struct {
	triggerBehaviourBase[TTrigger, TContext]
}

// NewInternalTriggerBehaviour creates a new internal trigger behaviour. A nil
// action makes the behaviour ignore the trigger.
func NewInternalTriggerBehaviour[TState, TTrigger comparable, TContext any](
	trigger TTrigger,
	guard TransitionGuard[TContext],
	action Action[TContext],
) *InternalTriggerBehaviour[TState, TTrigger, TContext] {
	return &InternalTriggerBehaviour[TState, TTrigger, TContext]{
		triggerBehaviourBase: triggerBehaviourBase[TTrigger, TContext]{
			trigger: trigger,
			guard:   guard,
			action:  action,
		},
	}
}

func (b *InternalTriggerBehaviour[TState, TTrigger, TContext]) IsInternal() bool {
	return true
}

func (b *InternalTriggerBehaviour[TState, TTrigger, TContext]) TransitionsTo(source TState, _ TContext) TState {
	return source
}

func (b *InternalTriggerBehaviour[TState, TTrigger, TContext]) triggerBehaviour() {}

// DynamicTriggerBehaviour represents a transition to a state computed when fired.
type DynamicTriggerBehaviour[TState, TTrigger comparable, TContext any] struct {
	triggerBehaviourBase[TTrigger, TContext]

	selector             StateSelector[TState, TContext]
	selectorDescription  InvocationInfo
	possibleDestinations []DynamicStateInfo
}

// NewDynamicTriggerBehaviour creates a new dynamic trigger behaviour.
func NewDynamicTriggerBehaviour[TState, TTrigger comparable, TContext any](
	trigger TTrigger,
	selector StateSelector[TState, TContext],
	guard TransitionGuard[TContext],
	action Action[TContext],
	possibleDestinations ...DynamicStateInfo,
) *DynamicTriggerBehaviour[TState, TTrigger, TContext] {
	return &DynamicTriggerBehaviour[TState, TTrigger, TContext]{
		triggerBehaviourBase: triggerBehaviourBase[TTrigger, TContext]{
			trigger: trigger,
			guard:   guard,
			action:  action,
		},
		selector:             selector,
		selectorDescription:  CreateInvocationInfo(selector, ""),
		possibleDestinations: slices.Clone(possibleDestinations),
	}
}

func (b *DynamicTriggerBehaviour[TState, TTrigger, TContext]) IsInternal() bool {
	return false
}

func (b *DynamicTriggerBehaviour[TState, TTrigger, TContext]) TransitionsTo(_ TState, c TContext) TState {
	return b.selector(c)
}

// SelectorDescription describes the destination selector.
func (b *DynamicTriggerBehaviour[TState, TTrigger, TContext]) SelectorDescription() InvocationInfo {
	return b.selectorDescription
}

// PossibleDestinations returns the destinations declared at configuration time.
func (b *DynamicTriggerBehaviour[TState, TTrigger, TContext]) PossibleDestinations() []DynamicStateInfo {
	return slices.Clone(b.possibleDestinations)
}

func (b *DynamicTriggerBehaviour[TState, TTrigger, TContext]) triggerBehaviour() {}
