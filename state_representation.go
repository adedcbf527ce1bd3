package hsm

import (
	"fmt"
	"slices"
)

// stateID is the handle of a representation inside its topology.
type stateID int

const noState stateID = -1

// StateRepresentation models the behaviour of a state: its trigger table,
// its entry and exit actions, and its place in the state hierarchy.
type StateRepresentation[TState, TTrigger comparable, TContext any] struct {
	state TState

	// topology owns every representation; superstate and substates are
	// handles into it.
	topology *Topology[TState, TTrigger, TContext]

	superstate stateID
	substates  []stateID

	// triggerBehaviours maps triggers to their behaviours in registration order.
	triggerBehaviours map[TTrigger][]TriggerBehaviour[TState, TTrigger, TContext]

	// triggerOrder records the order in which triggers were first registered.
	triggerOrder []TTrigger

	entryActions []*EntryActionBehaviour[TState, TTrigger, TContext]
	exitActions  []*ExitActionBehaviour[TState, TTrigger, TContext]
}

// NewStateRepresentation creates a detached state representation with no
// superstate.
func NewStateRepresentation[TState, TTrigger comparable, TContext any](state TState) *StateRepresentation[TState, TTrigger, TContext] {
	return &StateRepresentation[TState, TTrigger, TContext]{
		state:             state,
		superstate:        noState,
		triggerBehaviours: make(map[TTrigger][]TriggerBehaviour[TState, TTrigger, TContext]),
	}
}

// UnderlyingState returns the state this representation models.
func (sr *StateRepresentation[TState, TTrigger, TContext]) UnderlyingState() TState {
	return sr.state
}

// Superstate returns the parent state, or nil for a root state.
func (sr *StateRepresentation[TState, TTrigger, TContext]) Superstate() *StateRepresentation[TState, TTrigger, TContext] {
	if sr.superstate == noState {
		return nil
	}
	return sr.topology.nodes[sr.superstate]
}

// Substates returns the direct substates of this state.
func (sr *StateRepresentation[TState, TTrigger, TContext]) Substates() []*StateRepresentation[TState, TTrigger, TContext] {
	result := make([]*StateRepresentation[TState, TTrigger, TContext], len(sr.substates))
	for i, id := range sr.substates {
		result[i] = sr.topology.nodes[id]
	}
	return result
}

// TriggerBehaviours returns the behaviours registered for trigger in evaluation order.
// The returned slice is a copy.
func (sr *StateRepresentation[TState, TTrigger, TContext]) TriggerBehaviours(trigger TTrigger) []TriggerBehaviour[TState, TTrigger, TContext] {
	return slices.Clone(sr.triggerBehaviours[trigger])
}

// Triggers returns the locally configured triggers in registration order.
func (sr *StateRepresentation[TState, TTrigger, TContext]) Triggers() []TTrigger {
	return slices.Clone(sr.triggerOrder)
}

// EntryActions returns a copy of the entry actions.
func (sr *StateRepresentation[TState, TTrigger, TContext]) EntryActions() []*EntryActionBehaviour[TState, TTrigger, TContext] {
	return slices.Clone(sr.entryActions)
}

// ExitActions returns a copy of the exit actions.
func (sr *StateRepresentation[TState, TTrigger, TContext]) ExitActions() []*ExitActionBehaviour[TState, TTrigger, TContext] {
	return slices.Clone(sr.exitActions)
}

// CanHandle returns true if this state or one of its superstates can handle trigger.
func (sr *StateRepresentation[TState, TTrigger, TContext]) CanHandle(trigger TTrigger, c TContext) (bool, error) {
	handler, err := sr.TryFindHandler(trigger, c)
	if err != nil {
		return false, err
	}
	return handler != nil, nil
}

// TryFindHandler finds the behaviour handling trigger, looking at superstates
// when this state has none. It returns nil when no behaviour applies.
func (sr *StateRepresentation[TState, TTrigger, TContext]) TryFindHandler(trigger TTrigger, c TContext) (TriggerBehaviour[TState, TTrigger, TContext], error) {
	handler, err := sr.TryFindLocalHandler(trigger, c)
	if err != nil || handler != nil {
		return handler, err
	}
	if super := sr.Superstate(); super != nil {
		return super.TryFindHandler(trigger, c)
	}
	return nil, nil
}

// TryFindLocalHandler finds the behaviour of this state whose guard holds for
// trigger. More than one satisfied guard is a *GuardAmbiguityError.
func (sr *StateRepresentation[TState, TTrigger, TContext]) TryFindLocalHandler(trigger TTrigger, c TContext) (TriggerBehaviour[TState, TTrigger, TContext], error) {
	var found TriggerBehaviour[TState, TTrigger, TContext]
	for _, behaviour := range sr.triggerBehaviours[trigger] {
		if !behaviour.GuardConditionMet(c) {
			continue
		}
		if found != nil {
			return nil, &GuardAmbiguityError{State: sr.state, Trigger: trigger}
		}
		found = behaviour
	}
	return found, nil
}

// UnmetGuards returns the descriptions of the guards that prevented trigger
// from being handled, collected from this state and its superstates.
func (sr *StateRepresentation[TState, TTrigger, TContext]) UnmetGuards(trigger TTrigger, c TContext) []string {
	var unmet []string
	for rep := sr; rep != nil; rep = rep.Superstate() {
		for _, behaviour := range rep.triggerBehaviours[trigger] {
			unmet = append(unmet, behaviour.UnmetGuardConditions(c)...)
		}
	}
	return unmet
}

// Enter runs the entry actions for transition. Superstates that the machine is
// arriving into from outside are entered first.
func (sr *StateRepresentation[TState, TTrigger, TContext]) Enter(transition Transition[TState, TTrigger], c TContext) error {
	if transition.IsReentry() {
		return sr.ExecuteEntryActions(transition, c)
	}

	if transition.IsInitial() || !sr.Includes(transition.Source) {
		if super := sr.Superstate(); super != nil {
			if err := super.Enter(transition, c); err != nil {
				return err
			}
		}
		return sr.ExecuteEntryActions(transition, c)
	}

	return nil
}

// Exit runs the exit actions for transition. Superstates that the machine is
// leaving are exited after this state.
func (sr *StateRepresentation[TState, TTrigger, TContext]) Exit(transition Transition[TState, TTrigger], c TContext) error {
	if transition.IsReentry() {
		return sr.ExecuteExitActions(transition, c)
	}

	if !sr.Includes(transition.Destination) {
		if err := sr.ExecuteExitActions(transition, c); err != nil {
			return err
		}
		if super := sr.Superstate(); super != nil {
			return super.Exit(transition, c)
		}
	}

	return nil
}

// ExecuteEntryActions executes all entry actions for this state.
func (sr *StateRepresentation[TState, TTrigger, TContext]) ExecuteEntryActions(transition Transition[TState, TTrigger], c TContext) error {
	for _, action := range sr.entryActions {
		if err := action.Execute(transition, c); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteExitActions executes all exit actions for this state.
func (sr *StateRepresentation[TState, TTrigger, TContext]) ExecuteExitActions(transition Transition[TState, TTrigger], c TContext) error {
	for _, action := range sr.exitActions {
		if err := action.Execute(transition, c); err != nil {
			return err
		}
	}
	return nil
}

// Includes returns true if state is this state or nested within it.
func (sr *StateRepresentation[TState, TTrigger, TContext]) Includes(state TState) bool {
	if sr.state == state {
		return true
	}
	for _, substate := range sr.Substates() {
		if substate.Includes(state) {
			return true
		}
	}
	return false
}

// IsIncludedIn returns true if this state is state or nested within it.
func (sr *StateRepresentation[TState, TTrigger, TContext]) IsIncludedIn(state TState) bool {
	if sr.state == state {
		return true
	}
	if super := sr.Superstate(); super != nil {
		return super.IsIncludedIn(state)
	}
	return false
}

// PermittedTriggers returns the triggers with at least one satisfied guard in
// this state or its superstates. Each trigger appears once.
func (sr *StateRepresentation[TState, TTrigger, TContext]) PermittedTriggers(c TContext) []TTrigger {
	var result []TTrigger
	seen := make(map[TTrigger]struct{})
	for rep := sr; rep != nil; rep = rep.Superstate() {
		for _, trigger := range rep.LocalPermittedTriggers(c) {
			if _, ok := seen[trigger]; ok {
				continue
			}
			seen[trigger] = struct{}{}
			result = append(result, trigger)
		}
	}
	return result
}

// LocalPermittedTriggers returns the triggers permitted by this state alone.
func (sr *StateRepresentation[TState, TTrigger, TContext]) LocalPermittedTriggers(c TContext) []TTrigger {
	var result []TTrigger
	for _, trigger := range sr.triggerOrder {
		for _, behaviour := range sr.triggerBehaviours[trigger] {
			if behaviour.GuardConditionMet(c) {
				result = append(result, trigger)
				break
			}
		}
	}
	return result
}

// addTriggerBehaviour adds a trigger behaviour to this state. Only the
// builder calls it; built topologies are never changed.
func (sr *StateRepresentation[TState, TTrigger, TContext]) addTriggerBehaviour(behaviour TriggerBehaviour[TState, TTrigger, TContext]) {
	trigger := behaviour.Trigger()
	if _, ok := sr.triggerBehaviours[trigger]; !ok {
		sr.triggerOrder = append(sr.triggerOrder, trigger)
	}
	sr.triggerBehaviours[trigger] = append(sr.triggerBehaviours[trigger], behaviour)
}

// addEntryAction adds an entry action to this state.
func (sr *StateRepresentation[TState, TTrigger, TContext]) addEntryAction(action *EntryActionBehaviour[TState, TTrigger, TContext]) {
	sr.entryActions = append(sr.entryActions, action)
}

// addExitAction adds an exit action to this state.
func (sr *StateRepresentation[TState, TTrigger, TContext]) addExitAction(action *ExitActionBehaviour[TState, TTrigger, TContext]) {
	sr.exitActions = append(sr.exitActions, action)
}

// String returns a string representation of this state.
func (sr *StateRepresentation[TState, TTrigger, TContext]) String() string {
	return fmt.Sprintf("%v", sr.state)
}

// clone copies the representation into topology. Behaviours and actions are
// immutable and shared.
func (sr *StateRepresentation[TState, TTrigger, TContext]) clone(topology *Topology[TState, TTrigger, TContext]) *StateRepresentation[TState, TTrigger, TContext] {
	behaviours := make(map[TTrigger][]TriggerBehaviour[TState, TTrigger, TContext], len(sr.triggerBehaviours))
	for trigger, list := range sr.triggerBehaviours {
		behaviours[trigger] = append([]TriggerBehaviour[TState, TTrigger, TContext](nil), list...)
	}
	return &StateRepresentation[TState, TTrigger, TContext]{
		state:             sr.state,
		topology:          topology,
		superstate:        sr.superstate,
		substates:         append([]stateID(nil), sr.substates...),
		triggerBehaviours: behaviours,
		triggerOrder:      append([]TTrigger(nil), sr.triggerOrder...),
		entryActions:      append([]*EntryActionBehaviour[TState, TTrigger, TContext](nil), sr.entryActions...),
		exitActions:       append([]*ExitActionBehaviour[TState, TTrigger, TContext](nil), sr.exitActions...),
	}
}
