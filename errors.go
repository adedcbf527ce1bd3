package hsm

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrAlreadyStarted is returned when the initial transition is fired more than
// once or after ordinary firing began.
var ErrAlreadyStarted = errors.New("firing initial transition after state machine has been started")

// AlreadyStartedError carries the state the machine was in when the initial
// transition was rejected. It matches ErrAlreadyStarted with errors.Is.
type AlreadyStartedError struct {
	State any
}

func (e *AlreadyStartedError) Error() string {
	return fmt.Sprintf("%v (current state '%v')", ErrAlreadyStarted, e.State)
}

func (e *AlreadyStartedError) Is(target error) bool {
	return target == ErrAlreadyStarted
}

// GuardAmbiguityError is returned when more than one guarded behaviour for the
// same trigger in the same state is satisfied. Guards of one trigger within one
// state must be mutually exclusive.
type GuardAmbiguityError struct {
	State   any
	Trigger any
}

func (e *GuardAmbiguityError) Error() string {
	return fmt.Sprintf(
		"multiple permitted exit transitions are configured from state '%v' for trigger '%v'; guard clauses must be mutually exclusive",
		e.State, e.Trigger)
}

// UnhandledTriggerError is returned by the default unhandled-trigger policy
// when a trigger is fired from a state that has no valid transition for it.
type UnhandledTriggerError struct {
	State             any
	Trigger           any
	UnmetGuards       []string
	PermittedTriggers []any
}

func (e *UnhandledTriggerError) Error() string {
	if len(e.UnmetGuards) > 0 {
		return fmt.Sprintf(
			"trigger '%v' is valid for transition from state '%v' but guard conditions are not met. Guard conditions: %s",
			e.Trigger, e.State, strings.Join(e.UnmetGuards, ", "))
	}

	permitted := " No valid leaving transitions are permitted from state."
	if len(e.PermittedTriggers) > 0 {
		triggers := make([]string, len(e.PermittedTriggers))
		for i, t := range e.PermittedTriggers {
			triggers[i] = fmt.Sprint(t)
		}
		permitted = fmt.Sprintf(" Permitted triggers: %s.", strings.Join(triggers, ", "))
	}

	return fmt.Sprintf(
		"no valid leaving transitions are permitted from state '%v' for trigger '%v'.%s",
		e.State, e.Trigger, permitted)
}

// IdentityTransitionError is returned by the builder when Permit targets the
// state being configured.
type IdentityTransitionError struct {
	State   any
	Trigger any
}

func (e *IdentityTransitionError) Error() string {
	return fmt.Sprintf(
		"permit of trigger '%v' requires that the destination state is not equal to the source state '%v'; "+
			"to accept a trigger without changing state, use Ignore(), PermitInternal() or PermitReentry()",
		e.Trigger, e.State)
}

// ArgumentError indicates an invalid argument was passed.
type ArgumentError struct {
	ParamName string
	Message   string
}

func (e *ArgumentError) Error() string {
	if e.ParamName != "" {
		return fmt.Sprintf("%s (parameter: %s)", e.Message, e.ParamName)
	}
	return e.Message
}

// SuperstateConflictError is returned when a state is declared a substate of
// two different superstates.
type SuperstateConflictError struct {
	State     any
	Current   any
	Requested any
}

func (e *SuperstateConflictError) Error() string {
	return fmt.Sprintf("state '%v' is already a substate of '%v'; cannot make it a substate of '%v'",
		e.State, e.Current, e.Requested)
}

// CircularSuperstateError is returned when a superstate relationship would
// introduce a cycle.
type CircularSuperstateError struct {
	State      any
	Superstate any
}

func (e *CircularSuperstateError) Error() string {
	return fmt.Sprintf("circular superstate relationship detected: '%v' -> '%v'", e.State, e.Superstate)
}
