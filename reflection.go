package hsm

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// InvocationInfo describes a method - either an action, a selector or a guard condition.
type InvocationInfo struct {
	// MethodName is the name of the invoked method.
	MethodName string

	// description is the user-specified description (can be empty).
	description string
}

// DefaultFunctionDescription is the text returned for compiler-generated functions
// where the caller has not specified a description.
var DefaultFunctionDescription = "Function"

// NullString is the string representation of a null value.
const NullString = "<null>"

// NewInvocationInfo creates a new InvocationInfo.
func NewInvocationInfo(methodName, description string) InvocationInfo {
	return InvocationInfo{
		MethodName:  methodName,
		description: description,
	}
}

// CreateInvocationInfo creates InvocationInfo from a function and description.
func CreateInvocationInfo(fn any, description string) InvocationInfo {
	return NewInvocationInfo(getFunctionName(fn), description)
}

// Description returns the description of the invoked method:
// the user-specified description if any, DefaultFunctionDescription for
// closures and the bare function name otherwise.
func (i InvocationInfo) Description() string {
	if i.description != "" {
		return i.description
	}
	if i.MethodName == "" {
		return NullString
	}
	if strings.Contains(i.MethodName, ".func") {
		return DefaultFunctionDescription
	}
	name := strings.TrimSuffix(i.MethodName, "-fm")
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// getFunctionName returns the package-qualified name of a function.
func getFunctionName(fn any) string {
	if fn == nil {
		return ""
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	name := runtime.FuncForPC(v.Pointer()).Name()
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// ActionInfo describes an entry action with optional trigger information.
type ActionInfo struct {
	InvocationInfo

	// FromTrigger is the trigger the action is bound to, or nil.
	FromTrigger any
}

// NewActionInfo creates a new ActionInfo.
func NewActionInfo(method InvocationInfo, fromTrigger any) ActionInfo {
	return ActionInfo{
		InvocationInfo: method,
		FromTrigger:    fromTrigger,
	}
}

// TriggerInfo describes a trigger.
type TriggerInfo struct {
	// UnderlyingTrigger is the underlying trigger value.
	UnderlyingTrigger any
}

// NewTriggerInfo creates a new TriggerInfo.
func NewTriggerInfo(trigger any) TriggerInfo {
	return TriggerInfo{UnderlyingTrigger: trigger}
}

// String returns the string representation of the trigger.
func (t TriggerInfo) String() string {
	if t.UnderlyingTrigger == nil {
		return NullString
	}
	return fmt.Sprint(t.UnderlyingTrigger)
}

// MachineInfo exposes the states, transitions, and actions of a topology.
type MachineInfo struct {
	// InitialState is the initial state of the machine, if known.
	InitialState *StateInfo

	// States contains all configured states in registration order.
	States []*StateInfo

	// StateType is a string representation of the state type.
	StateType string

	// TriggerType is a string representation of the trigger type.
	TriggerType string
}

// StateInfo describes a state representation through the reflection API.
type StateInfo struct {
	// UnderlyingState is the instance or value this state represents.
	UnderlyingState any

	// Superstate is the superstate defined, if any.
	Superstate *StateInfo

	// Substates are substates defined for this state.
	Substates []*StateInfo

	// EntryActions are actions executed on state-entry.
	EntryActions []ActionInfo

	// ExitActions are actions executed on state-exit.
	ExitActions []InvocationInfo

	// FixedTransitions are fixed and internal transitions defined for this state.
	FixedTransitions []FixedTransitionInfo

	// DynamicTransitions are dynamic transitions defined for this state.
	DynamicTransitions []DynamicTransitionInfo

	// IgnoredTriggers are triggers ignored for this state.
	IgnoredTriggers []IgnoredTransitionInfo
}

// String returns the string representation of the state.
func (s *StateInfo) String() string {
	if s == nil || s.UnderlyingState == nil {
		return NullString
	}
	return fmt.Sprint(s.UnderlyingState)
}

// TransitionInfo is the base interface for transition information.
type TransitionInfo interface {
	// GetTrigger returns the trigger that causes this transition.
	GetTrigger() TriggerInfo
	// GetGuardConditions returns the guard conditions for this transition.
	GetGuardConditions() []InvocationInfo
	// GetIsInternalTransition returns true if this is an internal transition.
	GetIsInternalTransition() bool
}

type transitionInfoBase struct {
	// Trigger is the trigger whose firing resulted in this transition.
	Trigger TriggerInfo

	// GuardConditions contains method descriptions of the guard conditions.
	GuardConditions []InvocationInfo

	// IsInternalTransition indicates if this is an internal transition.
	IsInternalTransition bool
}

func (t *transitionInfoBase) GetTrigger() TriggerInfo {
	return t.Trigger
}

func (t *transitionInfoBase) GetGuardConditions() []InvocationInfo {
	return t.GuardConditions
}

func (t *transitionInfoBase) GetIsInternalTransition() bool {
	return t.IsInternalTransition
}

// FixedTransitionInfo describes a transition to a known destination.
type FixedTransitionInfo struct {
	transitionInfoBase

	// DestinationState is the state that will be transitioned into.
	DestinationState *StateInfo
}

// DynamicStateInfo describes a possible destination state of a dynamic transition.
type DynamicStateInfo struct {
	// DestinationState is the name of the destination state.
	DestinationState string

	// Criterion is the reason this destination state would be chosen.
	Criterion string
}

// DynamicTransitionInfo describes a transition whose destination is computed when fired.
type DynamicTransitionInfo struct {
	transitionInfoBase

	// DestinationStateSelectorDescription describes the destination selector.
	DestinationStateSelectorDescription InvocationInfo

	// PossibleDestinationStates are the destinations declared at configuration time.
	PossibleDestinationStates []DynamicStateInfo
}

// IgnoredTransitionInfo describes a trigger that is ignored in a state.
type IgnoredTransitionInfo struct {
	transitionInfoBase
}

// Info returns introspection data for every configured state. initialState
// is marked as the machine's initial state when it is configured.
func (t *Topology[TState, TTrigger, TContext]) Info(initialState TState) *MachineInfo {
	infos := make([]*StateInfo, len(t.nodes))
	for i, rep := range t.nodes {
		infos[i] = newStateInfo(rep)
	}

	for i, rep := range t.nodes {
		info := infos[i]
		if rep.superstate != noState {
			info.Superstate = infos[rep.superstate]
		}
		for _, sub := range rep.substates {
			info.Substates = append(info.Substates, infos[sub])
		}
		addTransitionInfos(info, rep, t.index, infos)
	}

	var initial *StateInfo
	if id, ok := t.index[initialState]; ok {
		initial = infos[id]
	}

	var zeroTrigger TTrigger
	return &MachineInfo{
		InitialState: initial,
		States:       infos,
		StateType:    fmt.Sprintf("%T", initialState),
		TriggerType:  fmt.Sprintf("%T", zeroTrigger),
	}
}

func newStateInfo[TState, TTrigger comparable, TContext any](rep *StateRepresentation[TState, TTrigger, TContext]) *StateInfo {
	entry := make([]ActionInfo, len(rep.entryActions))
	for i, action := range rep.entryActions {
		var from any
		if trigger, ok := action.FromTrigger(); ok {
			from = trigger
		}
		entry[i] = NewActionInfo(action.Description(), from)
	}

	exit := make([]InvocationInfo, len(rep.exitActions))
	for i, action := range rep.exitActions {
		exit[i] = action.Description()
	}

	return &StateInfo{
		UnderlyingState: rep.state,
		EntryActions:    entry,
		ExitActions:     exit,
	}
}

func addTransitionInfos[TState, TTrigger comparable, TContext any](
	info *StateInfo,
	rep *StateRepresentation[TState, TTrigger, TContext],
	index map[TState]stateID,
	infos []*StateInfo,
) {
	destinationInfo := func(state TState) *StateInfo {
		if id, ok := index[state]; ok {
			return infos[id]
		}
		return &StateInfo{UnderlyingState: state}
	}

	for _, trigger := range rep.triggerOrder {
		for _, behaviour := range rep.triggerBehaviours[trigger] {
			base := transitionInfoBase{
				Trigger:         NewTriggerInfo(trigger),
				GuardConditions: behaviour.Guard().Descriptions(),
			}

			switch b := behaviour.(type) {
			case *TransitioningTriggerBehaviour[TState, TTrigger, TContext]:
				info.FixedTransitions = append(info.FixedTransitions, FixedTransitionInfo{
					transitionInfoBase: base,
					DestinationState:   destinationInfo(b.Destination()),
				})
			case *InternalTriggerBehaviour[TState, TTrigger, TContext]:
				if !b.HasAction() {
					info.IgnoredTriggers = append(info.IgnoredTriggers, IgnoredTransitionInfo{transitionInfoBase: base})
					continue
				}
				base.IsInternalTransition = true
				info.FixedTransitions = append(info.FixedTransitions, FixedTransitionInfo{
					transitionInfoBase: base,
					DestinationState:   info,
				})
			case *DynamicTriggerBehaviour[TState, TTrigger, TContext]:
				info.DynamicTransitions = append(info.DynamicTransitions, DynamicTransitionInfo{
					transitionInfoBase:                  base,
					DestinationStateSelectorDescription: b.SelectorDescription(),
					PossibleDestinationStates:           b.PossibleDestinations(),
				})
			}
		}
	}
}
