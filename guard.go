package hsm

import "strings"

// GuardFunc is a predicate over the machine context. Guards may be evaluated
// several times per fire, so they should be free of side effects.
type GuardFunc[TContext any] func(c TContext) bool

// GuardCondition represents a single guard condition with its method description.
type GuardCondition[TContext any] struct {
	// Guard returns true if the condition is met.
	Guard GuardFunc[TContext]

	methodDescription InvocationInfo
}

// NewGuardCondition creates a new guard condition.
func NewGuardCondition[TContext any](guard GuardFunc[TContext], description InvocationInfo) GuardCondition[TContext] {
	return GuardCondition[TContext]{
		Guard:             guard,
		methodDescription: description,
	}
}

// Description returns the description of the guard method.
func (g GuardCondition[TContext]) Description() string {
	return g.methodDescription.Description()
}

// MethodDescription returns the full method description.
func (g GuardCondition[TContext]) MethodDescription() InvocationInfo {
	return g.methodDescription
}

// IsMet returns true if the guard condition is met. A nil guard is always met.
func (g GuardCondition[TContext]) IsMet(c TContext) bool {
	if g.Guard == nil {
		return true
	}
	return g.Guard(c)
}

// TransitionGuard contains a list of guard conditions that must all be met for a transition.
type TransitionGuard[TContext any] struct {
	Conditions []GuardCondition[TContext]
}

// EmptyTransitionGuard returns a guard with no conditions (always passes).
func EmptyTransitionGuard[TContext any]() TransitionGuard[TContext] {
	return TransitionGuard[TContext]{}
}

// NewTransitionGuard creates a new transition guard from a guard function.
// The description is used in diagnostics and graphs; when empty, the function
// name is used.
func NewTransitionGuard[TContext any](guard GuardFunc[TContext], description string) TransitionGuard[TContext] {
	if guard == nil {
		return EmptyTransitionGuard[TContext]()
	}
	return TransitionGuard[TContext]{
		Conditions: []GuardCondition[TContext]{
			NewGuardCondition(guard, CreateInvocationInfo(guard, description)),
		},
	}
}

// GuardConditionsMet returns true if all guard conditions are met.
func (tg TransitionGuard[TContext]) GuardConditionsMet(c TContext) bool {
	for _, cond := range tg.Conditions {
		if !cond.IsMet(c) {
			return false
		}
	}
	return true
}

// UnmetGuardConditions returns the descriptions of all guard conditions that are not met.
func (tg TransitionGuard[TContext]) UnmetGuardConditions(c TContext) []string {
	var unmet []string
	for _, cond := range tg.Conditions {
		if !cond.IsMet(c) {
			unmet = append(unmet, cond.Description())
		}
	}
	return unmet
}

// Descriptions returns the method descriptions of every condition.
func (tg TransitionGuard[TContext]) Descriptions() []InvocationInfo {
	result := make([]InvocationInfo, len(tg.Conditions))
	for i, cond := range tg.Conditions {
		result[i] = cond.MethodDescription()
	}
	return result
}

// IsEmpty returns true if the transition guard has no conditions.
func (tg TransitionGuard[TContext]) IsEmpty() bool {
	return len(tg.Conditions) == 0
}

// negate returns a guard that holds exactly when tg does not.
func (tg TransitionGuard[TContext]) negate() TransitionGuard[TContext] {
	descriptions := make([]string, len(tg.Conditions))
	for i, cond := range tg.Conditions {
		descriptions[i] = cond.Description()
	}

	var desc string
	switch len(descriptions) {
	case 0:
		desc = "!" + NullString
	case 1:
		desc = "!" + descriptions[0]
	default:
		desc = "!(" + strings.Join(descriptions, " && ") + ")"
	}

	inverse := func(c TContext) bool { return !tg.GuardConditionsMet(c) }
	return TransitionGuard[TContext]{
		Conditions: []GuardCondition[TContext]{
			NewGuardCondition[TContext](inverse, NewInvocationInfo("", desc)),
		},
	}
}
