package hsm

import (
	"github.com/cockroachdb/errors"
)

// Builder collects state configurations and produces an immutable Topology.
// Configuration mistakes are recorded as they happen and reported by Build.
type Builder[TState, TTrigger comparable, TContext any] struct {
	topology *Topology[TState, TTrigger, TContext]
	err      error
	errs     []error
}

// NewBuilder creates an empty builder.
func NewBuilder[TState, TTrigger comparable, TContext any]() *Builder[TState, TTrigger, TContext] {
	return &Builder[TState, TTrigger, TContext]{
		topology: newTopology[TState, TTrigger, TContext](),
	}
}

// Configure begins configuration of a state.
func (b *Builder[TState, TTrigger, TContext]) Configure(state TState) *StateConfiguration[TState, TTrigger, TContext] {
	return &StateConfiguration[TState, TTrigger, TContext]{
		representation: b.topology.getOrCreate(state),
		builder:        b,
	}
}

// Build returns a snapshot of the configured topology. Later changes to the
// builder do not affect topologies already built.
func (b *Builder[TState, TTrigger, TContext]) Build() (*Topology[TState, TTrigger, TContext], error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.topology.clone(), nil
}

// Err returns the configuration errors recorded so far, combined into one.
// The first error is the primary one; the rest are attached to it.
func (b *Builder[TState, TTrigger, TContext]) Err() error {
	return b.err
}

// Errors returns every configuration error recorded so far, in order.
func (b *Builder[TState, TTrigger, TContext]) Errors() []error {
	return b.errs
}

func (b *Builder[TState, TTrigger, TContext]) record(err error) {
	b.errs = append(b.errs, err)
	b.err = errors.CombineErrors(b.err, err)
}

// StateConfiguration provides a fluent interface for configuring state behaviour.
type StateConfiguration[TState, TTrigger comparable, TContext any] struct {
	representation *StateRepresentation[TState, TTrigger, TContext]
	builder        *Builder[TState, TTrigger, TContext]
}

// firstOrEmpty returns the first element of the slice or empty string if empty.
func firstOrEmpty(s []string) string {
	if len(s) > 0 {
		return s[0]
	}
	return ""
}

// State returns the state being configured.
func (sc *StateConfiguration[TState, TTrigger, TContext]) State() TState {
	return sc.representation.UnderlyingState()
}

// Permit configures the state to transition to destination when trigger is fired.
func (sc *StateConfiguration[TState, TTrigger, TContext]) Permit(trigger TTrigger, destination TState) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.enforceNotIdentityTransition(trigger, destination) {
		sc.addTransition(trigger, destination, EmptyTransitionGuard[TContext](), nil)
	}
	return sc
}

// PermitWithAction is Permit with an action run between exit and entry.
func (sc *StateConfiguration[TState, TTrigger, TContext]) PermitWithAction(
	trigger TTrigger,
	destination TState,
	action Action[TContext],
) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.enforceNotIdentityTransition(trigger, destination) && sc.requireAction(action) {
		sc.addTransition(trigger, destination, EmptyTransitionGuard[TContext](), action)
	}
	return sc
}

// PermitIf configures the state to transition to destination when trigger is
// fired and guard holds.
func (sc *StateConfiguration[TState, TTrigger, TContext]) PermitIf(
	trigger TTrigger,
	destination TState,
	guard GuardFunc[TContext],
	guardDescription ...string,
) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.enforceNotIdentityTransition(trigger, destination) && sc.requireGuard(guard) {
		sc.addTransition(trigger, destination, NewTransitionGuard(guard, firstOrEmpty(guardDescription)), nil)
	}
	return sc
}

// PermitIfWithAction is PermitIf with an action run between exit and entry.
func (sc *StateConfiguration[TState, TTrigger, TContext]) PermitIfWithAction(
	trigger TTrigger,
	destination TState,
	guard GuardFunc[TContext],
	action Action[TContext],
	guardDescription ...string,
) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.enforceNotIdentityTransition(trigger, destination) && sc.requireGuard(guard) && sc.requireAction(action) {
		sc.addTransition(trigger, destination, NewTransitionGuard(guard, firstOrEmpty(guardDescription)), action)
	}
	return sc
}

// PermitIfElseIgnore transitions to destination when guard holds and ignores
// trigger otherwise.
func (sc *StateConfiguration[TState, TTrigger, TContext]) PermitIfElseIgnore(
	trigger TTrigger,
	destination TState,
	guard GuardFunc[TContext],
	guardDescription ...string,
) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.enforceNotIdentityTransition(trigger, destination) && sc.requireGuard(guard) {
		sc.addElseIgnore(trigger, destination, NewTransitionGuard(guard, firstOrEmpty(guardDescription)), nil)
	}
	return sc
}

// PermitIfElseIgnoreWithAction is PermitIfElseIgnore with an action run
// between exit and entry when the transition is taken.
func (sc *StateConfiguration[TState, TTrigger, TContext]) PermitIfElseIgnoreWithAction(
	trigger TTrigger,
	destination TState,
	guard GuardFunc[TContext],
	action Action[TContext],
	guardDescription ...string,
) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.enforceNotIdentityTransition(trigger, destination) && sc.requireGuard(guard) && sc.requireAction(action) {
		sc.addElseIgnore(trigger, destination, NewTransitionGuard(guard, firstOrEmpty(guardDescription)), action)
	}
	return sc
}

// PermitReentry configures the state to exit and re-enter itself when trigger is fired.
// Only this state's exit and entry actions run, never its superstates'.
func (sc *StateConfiguration[TState, TTrigger, TContext]) PermitReentry(trigger TTrigger) *StateConfiguration[TState, TTrigger, TContext] {
	sc.addTransition(trigger, sc.State(), EmptyTransitionGuard[TContext](), nil)
	return sc
}

// PermitReentryIf is PermitReentry gated by guard.
func (sc *StateConfiguration[TState, TTrigger, TContext]) PermitReentryIf(
	trigger TTrigger,
	guard GuardFunc[TContext],
	guardDescription ...string,
) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.requireGuard(guard) {
		sc.addTransition(trigger, sc.State(), NewTransitionGuard(guard, firstOrEmpty(guardDescription)), nil)
	}
	return sc
}

// PermitReentryWithAction is PermitReentry with an action run between the
// exit and entry actions.
func (sc *StateConfiguration[TState, TTrigger, TContext]) PermitReentryWithAction(trigger TTrigger, action Action[TContext]) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.requireAction(action) {
		sc.addTransition(trigger, sc.State(), EmptyTransitionGuard[TContext](), action)
	}
	return sc
}

// PermitReentryIfWithAction is PermitReentryIf with an action.
func (sc *StateConfiguration[TState, TTrigger, TContext]) PermitReentryIfWithAction(
	trigger TTrigger,
	guard GuardFunc[TContext],
	action Action[TContext],
	guardDescription ...string,
) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.requireGuard(guard) && sc.requireAction(action) {
		sc.addTransition(trigger, sc.State(), NewTransitionGuard(guard, firstOrEmpty(guardDescription)), action)
	}
	return sc
}

// PermitInternal runs action when trigger is fired without leaving the state.
// No entry or exit actions run.
func (sc *StateConfiguration[TState, TTrigger, TContext]) PermitInternal(trigger TTrigger, action Action[TContext]) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.requireAction(action) {
		sc.representation.addTriggerBehaviour(
			NewInternalTriggerBehaviour[TState](trigger, EmptyTransitionGuard[TContext](), action),
		)
	}
	return sc
}

// PermitInternalIf is PermitInternal gated by guard.
func (sc *StateConfiguration[TState, TTrigger, TContext]) PermitInternalIf(
	trigger TTrigger,
	guard GuardFunc[TContext],
	action Action[TContext],
	guardDescription ...string,
) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.requireGuard(guard) && sc.requireAction(action) {
		sc.representation.addTriggerBehaviour(
			NewInternalTriggerBehaviour[TState](trigger, NewTransitionGuard(guard, firstOrEmpty(guardDescription)), action),
		)
	}
	return sc
}

// Ignore configures the state to ignore trigger.
func (sc *StateConfiguration[TState, TTrigger, TContext]) Ignore(trigger TTrigger) *StateConfiguration[TState, TTrigger, TContext] {
	sc.representation.addTriggerBehaviour(
		NewInternalTriggerBehaviour[TState](trigger, EmptyTransitionGuard[TContext](), nil),
	)
	return sc
}

// IgnoreIf configures the state to ignore trigger when guard holds.
func (sc *StateConfiguration[TState, TTrigger, TContext]) IgnoreIf(
	trigger TTrigger,
	guard GuardFunc[TContext],
	guardDescription ...string,
) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.requireGuard(guard) {
		sc.representation.addTriggerBehaviour(
			NewInternalTriggerBehaviour[TState](trigger, NewTransitionGuard(guard, firstOrEmpty(guardDescription)), nil),
		)
	}
	return sc
}

// PermitDynamic transitions to the state returned by selector when trigger is fired.
// possibleDestinations only documents the outcomes for graph export.
func (sc *StateConfiguration[TState, TTrigger, TContext]) PermitDynamic(
	trigger TTrigger,
	selector StateSelector[TState, TContext],
	possibleDestinations ...DynamicStateInfo,
) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.requireSelector(selector) {
		sc.representation.addTriggerBehaviour(
			NewDynamicTriggerBehaviour[TState, TTrigger, TContext](trigger, selector, EmptyTransitionGuard[TContext](), nil, possibleDestinations...),
		)
	}
	return sc
}

// PermitDynamicWithAction is PermitDynamic with an action run between exit
// and entry.
func (sc *StateConfiguration[TState, TTrigger, TContext]) PermitDynamicWithAction(
	trigger TTrigger,
	selector StateSelector[TState, TContext],
	action Action[TContext],
	possibleDestinations ...DynamicStateInfo,
) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.requireSelector(selector) && sc.requireAction(action) {
		sc.representation.addTriggerBehaviour(
			NewDynamicTriggerBehaviour[TState, TTrigger, TContext](trigger, selector, EmptyTransitionGuard[TContext](), action, possibleDestinations...),
		)
	}
	return sc
}

// PermitDynamicIf is PermitDynamic gated by guard, with an optional action.
func (sc *StateConfiguration[TState, TTrigger, TContext]) PermitDynamicIf(
	trigger TTrigger,
	selector StateSelector[TState, TContext],
	guard GuardFunc[TContext],
	action Action[TContext],
	possibleDestinations ...DynamicStateInfo,
) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.requireSelector(selector) && sc.requireGuard(guard) {
		sc.representation.addTriggerBehaviour(
			NewDynamicTriggerBehaviour[TState, TTrigger, TContext](trigger, selector, NewTransitionGuard(guard, ""), action, possibleDestinations...),
		)
	}
	return sc
}

// OnEntry configures an action to be executed when entering this state.
func (sc *StateConfiguration[TState, TTrigger, TContext]) OnEntry(
	action TransitionAction[TState, TTrigger, TContext],
	description ...string,
) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.requireTransitionAction(action) {
		sc.representation.addEntryAction(
			NewEntryActionBehaviour(action, CreateInvocationInfo(action, firstOrEmpty(description))),
		)
	}
	return sc
}

// OnEntryFrom configures an action to be executed when entering this state
// through trigger.
func (sc *StateConfiguration[TState, TTrigger, TContext]) OnEntryFrom(
	trigger TTrigger,
	action TransitionAction[TState, TTrigger, TContext],
	description ...string,
) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.requireTransitionAction(action) {
		sc.representation.addEntryAction(
			NewEntryActionBehaviourFrom(trigger, action, CreateInvocationInfo(action, firstOrEmpty(description))),
		)
	}
	return sc
}

// OnExit configures an action to be executed when exiting this state.
func (sc *StateConfiguration[TState, TTrigger, TContext]) OnExit(
	action TransitionAction[TState, TTrigger, TContext],
	description ...string,
) *StateConfiguration[TState, TTrigger, TContext] {
	if sc.requireTransitionAction(action) {
		sc.representation.addExitAction(
			NewExitActionBehaviour(action, CreateInvocationInfo(action, firstOrEmpty(description))),
		)
	}
	return sc
}

// SubstateOf sets the superstate of this state. A state has at most one
// superstate and the hierarchy must not contain cycles.
func (sc *StateConfiguration[TState, TTrigger, TContext]) SubstateOf(superstate TState) *StateConfiguration[TState, TTrigger, TContext] {
	topology := sc.builder.topology
	child := sc.representation
	parent := topology.getOrCreate(superstate)

	if current := child.Superstate(); current != nil {
		if current.state != superstate {
			sc.builder.record(&SuperstateConflictError{
				State:     child.state,
				Current:   current.state,
				Requested: superstate,
			})
		}
		return sc
	}

	if parent.IsIncludedIn(child.state) {
		sc.builder.record(&CircularSuperstateError{State: child.state, Superstate: superstate})
		return sc
	}

	topology.setSuperstate(child, parent)
	return sc
}

func (sc *StateConfiguration[TState, TTrigger, TContext]) addTransition(
	trigger TTrigger,
	destination TState,
	guard TransitionGuard[TContext],
	action Action[TContext],
) {
	sc.representation.addTriggerBehaviour(
		NewTransitioningTriggerBehaviour(trigger, destination, guard, action),
	)
}

// addElseIgnore registers the transition together with an ignore behaviour
// guarded by the negated guard, so exactly one of them applies.
func (sc *StateConfiguration[TState, TTrigger, TContext]) addElseIgnore(
	trigger TTrigger,
	destination TState,
	guard TransitionGuard[TContext],
	action Action[TContext],
) {
	sc.representation.addTriggerBehaviour(
		NewInternalTriggerBehaviour[TState](trigger, guard.negate(), nil),
	)
	sc.addTransition(trigger, destination, guard, action)
}

func (sc *StateConfiguration[TState, TTrigger, TContext]) enforceNotIdentityTransition(trigger TTrigger, destination TState) bool {
	if sc.State() == destination {
		sc.builder.record(&IdentityTransitionError{State: destination, Trigger: trigger})
		return false
	}
	return true
}

func (sc *StateConfiguration[TState, TTrigger, TContext]) requireGuard(guard GuardFunc[TContext]) bool {
	return sc.require(guard != nil, "guard")
}

func (sc *StateConfiguration[TState, TTrigger, TContext]) requireAction(action Action[TContext]) bool {
	return sc.require(action != nil, "action")
}

func (sc *StateConfiguration[TState, TTrigger, TContext]) requireTransitionAction(action TransitionAction[TState, TTrigger, TContext]) bool {
	return sc.require(action != nil, "action")
}

func (sc *StateConfiguration[TState, TTrigger, TContext]) requireSelector(selector StateSelector[TState, TContext]) bool {
	return sc.require(selector != nil, "selector")
}

func (sc *StateConfiguration[TState, TTrigger, TContext]) require(ok bool, param string) bool {
	if !ok {
		sc.builder.record(errors.WithStack(&ArgumentError{
			ParamName: param,
			Message:   param + " must not be nil in configuration of state '" + sc.representation.String() + "'",
		}))
	}
	return ok
}
