package hsm

import (
	"fmt"
	"reflect"
	"strings"
)

// UnhandledTriggerHandler decides what happens when a trigger has no handler in
// the current state. Returning nil silently ignores the trigger.
type UnhandledTriggerHandler[TState, TTrigger comparable] func(state TState, trigger TTrigger, unmetGuards []string) error

// Tracer observes a running state machine. Trigger is called for every fired
// trigger, Transition after every completed non-internal transition, including
// the initial one.
type Tracer[TState, TTrigger comparable] interface {
	Trigger(trigger TTrigger)
	Transition(transition Transition[TState, TTrigger])
}

// CompletionTracer is implemented by tracers that need to know how each Fire
// ended, including internal transitions and failures.
type CompletionTracer[TTrigger comparable] interface {
	Completed(trigger TTrigger, err error)
}

// StateMachine tracks the current state of one instance of a topology and
// evolves it as triggers are fired. It is not safe for concurrent use; the
// topology it runs on is.
type StateMachine[TState, TTrigger comparable, TContext any] struct {
	// stateAccessor is used to retrieve the current state.
	stateAccessor func() TState

	// stateMutator is used to set the current state.
	stateMutator func(TState)

	topology *Topology[TState, TTrigger, TContext]
	context  TContext

	// unhandledTriggerAction is called when a trigger is fired but not handled.
	unhandledTriggerAction UnhandledTriggerHandler[TState, TTrigger]

	tracer Tracer[TState, TTrigger]

	// initialState stores the initial state of the state machine.
	initialState TState

	started bool
}

// NewStateMachine creates a new state machine in initialState.
func NewStateMachine[TState, TTrigger comparable, TContext any](
	topology *Topology[TState, TTrigger, TContext],
	initialState TState,
	c TContext,
) *StateMachine[TState, TTrigger, TContext] {
	state := initialState
	return NewStateMachineWithExternalStorage(
		topology,
		c,
		func() TState { return state },
		func(s TState) { state = s },
	)
}

// NewStateMachineWithExternalStorage creates a new state machine whose current
// state lives outside of it. The value returned by stateAccessor at
// construction is the initial state.
func NewStateMachineWithExternalStorage[TState, TTrigger comparable, TContext any](
	topology *Topology[TState, TTrigger, TContext],
	c TContext,
	stateAccessor func() TState,
	stateMutator func(TState),
) *StateMachine[TState, TTrigger, TContext] {
	if topology == nil {
		topology = newTopology[TState, TTrigger, TContext]()
	}
	sm := &StateMachine[TState, TTrigger, TContext]{
		stateAccessor: stateAccessor,
		stateMutator:  stateMutator,
		topology:      topology,
		context:       c,
		initialState:  stateAccessor(),
	}
	sm.unhandledTriggerAction = sm.defaultUnhandledTriggerAction
	return sm
}

// State returns the current state.
func (sm *StateMachine[TState, TTrigger, TContext]) State() TState {
	return sm.stateAccessor()
}

// Context returns the context passed to guards and actions.
func (sm *StateMachine[TState, TTrigger, TContext]) Context() TContext {
	return sm.context
}

// Topology returns the topology the machine runs on.
func (sm *StateMachine[TState, TTrigger, TContext]) Topology() *Topology[TState, TTrigger, TContext] {
	return sm.topology
}

// IsStarted reports whether the initial transition or any trigger was fired.
func (sm *StateMachine[TState, TTrigger, TContext]) IsStarted() bool {
	return sm.started
}

// SetTracer installs tracer. A nil tracer, including a nil pointer of a
// concrete tracer type, disables tracing.
func (sm *StateMachine[TState, TTrigger, TContext]) SetTracer(tracer Tracer[TState, TTrigger]) {
	if isNilInterface(tracer) {
		sm.tracer = nil
		return
	}
	sm.tracer = tracer
}

// isNilInterface reports whether v is nil or wraps a nil pointer, map, slice,
// func or channel.
func isNilInterface(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// FireInitialTransition runs the entry actions of the initial state and all of
// its superstates, outermost first. It may be called once, before any Fire.
func (sm *StateMachine[TState, TTrigger, TContext]) FireInitialTransition() error {
	current := sm.State()
	if sm.started || current != sm.initialState {
		return &AlreadyStartedError{State: current}
	}
	sm.started = true

	transition := NewInitialTransition[TState, TTrigger](current)
	if err := sm.currentRepresentation().Enter(transition, sm.context); err != nil {
		return err
	}
	sm.traceTransition(transition)
	return nil
}

// Fire transitions from the current state via trigger. Exit actions of the
// states being left run first, then the transition action, then the state is
// updated and entry actions of the states being entered run.
func (sm *StateMachine[TState, TTrigger, TContext]) Fire(trigger TTrigger) (err error) {
	sm.started = true
	if sm.tracer != nil {
		sm.tracer.Trigger(trigger)
		if completion, ok := sm.tracer.(CompletionTracer[TTrigger]); ok {
			defer func() { completion.Completed(trigger, err) }()
		}
	}

	representation := sm.currentRepresentation()
	handler, err := representation.TryFindHandler(trigger, sm.context)
	if err != nil {
		return err
	}
	if handler == nil {
		return sm.unhandledTriggerAction(
			representation.UnderlyingState(),
			trigger,
			representation.UnmetGuards(trigger, sm.context),
		)
	}

	if handler.IsInternal() {
		return handler.PerformAction(sm.context)
	}

	source := sm.State()
	destination := handler.TransitionsTo(source, sm.context)
	transition := NewTransition(source, destination, trigger)

	if err = representation.Exit(transition, sm.context); err != nil {
		return err
	}
	if err = handler.PerformAction(sm.context); err != nil {
		return err
	}
	sm.stateMutator(destination)
	if err = sm.currentRepresentation().Enter(transition, sm.context); err != nil {
		return err
	}

	sm.traceTransition(transition)
	return nil
}

// OnUnhandledTrigger overrides the default behaviour of returning an
// *UnhandledTriggerError. A nil handler restores the default.
func (sm *StateMachine[TState, TTrigger, TContext]) OnUnhandledTrigger(handler UnhandledTriggerHandler[TState, TTrigger]) {
	if handler == nil {
		sm.unhandledTriggerAction = sm.defaultUnhandledTriggerAction
		return
	}
	sm.unhandledTriggerAction = handler
}

// IsInState returns true if the current state is state or one of its substates.
func (sm *StateMachine[TState, TTrigger, TContext]) IsInState(state TState) bool {
	return sm.currentRepresentation().IsIncludedIn(state)
}

// CanFire returns true if trigger has a handler in the current state. An error
// is returned when the guards of trigger are ambiguous.
func (sm *StateMachine[TState, TTrigger, TContext]) CanFire(trigger TTrigger) (bool, error) {
	return sm.currentRepresentation().CanHandle(trigger, sm.context)
}

// PermittedTriggers returns the triggers that can be fired from the current state.
func (sm *StateMachine[TState, TTrigger, TContext]) PermittedTriggers() []TTrigger {
	return sm.currentRepresentation().PermittedTriggers(sm.context)
}

// Info returns introspection data for the topology, with the machine's
// initial state marked.
func (sm *StateMachine[TState, TTrigger, TContext]) Info() *MachineInfo {
	return sm.topology.Info(sm.initialState)
}

// String returns the current state and the permitted triggers.
func (sm *StateMachine[TState, TTrigger, TContext]) String() string {
	permitted := sm.PermittedTriggers()
	triggers := make([]string, len(permitted))
	for i, t := range permitted {
		triggers[i] = fmt.Sprint(t)
	}
	return fmt.Sprintf("StateMachine { State = %v, PermittedTriggers = { %s } }", sm.State(), strings.Join(triggers, ", "))
}

func (sm *StateMachine[TState, TTrigger, TContext]) currentRepresentation() *StateRepresentation[TState, TTrigger, TContext] {
	return sm.topology.representationOf(sm.State())
}

func (sm *StateMachine[TState, TTrigger, TContext]) traceTransition(transition Transition[TState, TTrigger]) {
	if sm.tracer != nil {
		sm.tracer.Transition(transition)
	}
}

// defaultUnhandledTriggerAction reports the trigger as an *UnhandledTriggerError.
func (sm *StateMachine[TState, TTrigger, TContext]) defaultUnhandledTriggerAction(state TState, trigger TTrigger, unmetGuards []string) error {
	permittedTriggers := sm.topology.representationOf(state).PermittedTriggers(sm.context)
	permitted := make([]any, len(permittedTriggers))
	for i, t := range permittedTriggers {
		permitted[i] = t
	}
	return &UnhandledTriggerError{
		State:             state,
		Trigger:           trigger,
		UnmetGuards:       unmetGuards,
		PermittedTriggers: permitted,
	}
}
