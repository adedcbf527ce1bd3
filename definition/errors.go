package definition

import "github.com/cockroachdb/errors"

// Document validation errors.
var (
	ErrInitialStateRequired = errors.New("initial state is required")
	ErrStateRequired        = errors.New("at least one state is required")
	ErrInitialStateNotFound = errors.New("initial state does not exist")
	ErrStateNameRequired    = errors.New("state name is required")
	ErrDuplicateStateName   = errors.New("duplicate state name")
	ErrParentNotFound       = errors.New("parent state does not exist")
	ErrCircularParent       = errors.New("state hierarchy contains a cycle")
	ErrTriggerRequired      = errors.New("transition trigger is required")
	ErrUnknownKind          = errors.New("unknown transition kind")
	ErrDestinationRequired  = errors.New("transition destination is required")
	ErrDestinationNotFound  = errors.New("transition destination does not exist")
	ErrUnexpectedField      = errors.New("field is not allowed for this transition kind")
	ErrIdentityTransition   = errors.New("permit must not target its own state; use kind reentry")
	ErrActionRequired       = errors.New("action is required")
	ErrSelectorRequired     = errors.New("dynamic transition requires a selector")
	ErrElseIgnoreNeedsGuard = errors.New("elseIgnore requires a guard")
)

// Compilation errors, returned when a name is missing from the Registry.
var (
	ErrUnknownGuard    = errors.New("unknown guard")
	ErrUnknownAction   = errors.New("unknown action")
	ErrUnknownSelector = errors.New("unknown selector")
)
