package definition

import (
	"strings"

	"github.com/atlekbai/hsm"
)

// Registry binds the names used in a Document to code. States and triggers
// of compiled topologies are strings; C is the machine context.
type Registry[C any] struct {
	guards            map[string]hsm.GuardFunc[C]
	actions           map[string]hsm.Action[C]
	transitionActions map[string]hsm.TransitionAction[string, string, C]
	selectors         map[string]hsm.StateSelector[string, C]
}

// NewRegistry creates an empty registry.
func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{
		guards:            make(map[string]hsm.GuardFunc[C]),
		actions:           make(map[string]hsm.Action[C]),
		transitionActions: make(map[string]hsm.TransitionAction[string, string, C]),
		selectors:         make(map[string]hsm.StateSelector[string, C]),
	}
}

// Guard registers a guard usable in the guard field of a transition.
func (r *Registry[C]) Guard(name string, guard hsm.GuardFunc[C]) *Registry[C] {
	r.guards[name] = guard
	return r
}

// Action registers an action usable in the action field of a transition.
func (r *Registry[C]) Action(name string, action hsm.Action[C]) *Registry[C] {
	r.actions[name] = action
	return r
}

// TransitionAction registers an action usable as an entry or exit action.
func (r *Registry[C]) TransitionAction(name string, action hsm.TransitionAction[string, string, C]) *Registry[C] {
	r.transitionActions[name] = action
	return r
}

// Selector registers the destination selector of a dynamic transition.
func (r *Registry[C]) Selector(name string, selector hsm.StateSelector[string, C]) *Registry[C] {
	r.selectors[name] = selector
	return r
}

// parseGuard splits a guard reference into its name and whether it is negated.
func parseGuard(ref string) (name string, negated bool) {
	ref = strings.TrimSpace(ref)
	if rest, ok := strings.CutPrefix(ref, "!"); ok {
		return strings.TrimSpace(rest), true
	}
	return ref, false
}

// lookupGuard resolves ref, negating the registered guard when ref starts with "!".
func (r *Registry[C]) lookupGuard(ref string) (hsm.GuardFunc[C], bool) {
	name, negated := parseGuard(ref)
	guard, ok := r.guards[name]
	if !ok || guard == nil {
		return nil, false
	}
	if negated {
		return func(c C) bool { return !guard(c) }, true
	}
	return guard, true
}
