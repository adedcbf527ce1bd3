package definition

import "github.com/cockroachdb/errors"

// Validate checks that the document is structurally sound: states are named
// and unique, parents and destinations exist, the hierarchy is acyclic and
// every transition carries exactly the fields its kind needs. Names of
// guards, actions and selectors are only resolved by Compile.
func (d *Document) Validate() error {
	if d.Initial == "" {
		return ErrInitialStateRequired
	}
	if len(d.States) == 0 {
		return ErrStateRequired
	}

	states := make(map[string]*StateDocument, len(d.States))
	for i := range d.States {
		s := &d.States[i]
		if s.Name == "" {
			return errors.Wrapf(ErrStateNameRequired, "state #%d", i)
		}
		if _, ok := states[s.Name]; ok {
			return errors.Wrapf(ErrDuplicateStateName, "state %q", s.Name)
		}
		states[s.Name] = s
	}

	if _, ok := states[d.Initial]; !ok {
		return errors.Wrapf(ErrInitialStateNotFound, "initial %q", d.Initial)
	}

	for _, s := range d.States {
		if err := validateHierarchy(s.Name, states); err != nil {
			return err
		}
		if err := validateActions(s); err != nil {
			return err
		}
		for i, t := range s.Transitions {
			if err := validateTransition(s.Name, t, states); err != nil {
				return errors.Wrapf(err, "state %q: transition #%d (%s)", s.Name, i, t.Trigger)
			}
		}
	}
	return nil
}

func validateHierarchy(name string, states map[string]*StateDocument) error {
	visited := map[string]bool{name: true}
	for current := states[name]; current.Parent != ""; {
		parent, ok := states[current.Parent]
		if !ok {
			return errors.Wrapf(ErrParentNotFound, "state %q: parent %q", current.Name, current.Parent)
		}
		if visited[parent.Name] {
			return errors.Wrapf(ErrCircularParent, "state %q", name)
		}
		visited[parent.Name] = true
		current = parent
	}
	return nil
}

func validateActions(s StateDocument) error {
	for _, a := range s.Entry {
		if a.Action == "" {
			return errors.Wrapf(ErrActionRequired, "state %q: entry", s.Name)
		}
	}
	for _, a := range s.Exit {
		if a.Action == "" {
			return errors.Wrapf(ErrActionRequired, "state %q: exit", s.Name)
		}
		if a.From != "" {
			return errors.Wrapf(ErrUnexpectedField, "state %q: exit action %q: from", s.Name, a.Action)
		}
	}
	return nil
}

func validateTransition(source string, t TransitionDocument, states map[string]*StateDocument) error {
	if t.Trigger == "" {
		return ErrTriggerRequired
	}

	kind := t.EffectiveKind()
	if !kind.valid() {
		return errors.Wrapf(ErrUnknownKind, "%q", t.Kind)
	}

	if t.Guard != "" {
		if name, _ := parseGuard(t.Guard); name == "" {
			return errors.Wrapf(ErrUnexpectedField, "guard %q", t.Guard)
		}
	}

	if kind != KindDynamic {
		if t.Selector != "" {
			return errors.Wrap(ErrUnexpectedField, "selector")
		}
		if len(t.Destinations) > 0 {
			return errors.Wrap(ErrUnexpectedField, "destinations")
		}
	}
	if kind != KindPermit && t.ElseIgnore {
		return errors.Wrap(ErrUnexpectedField, "elseIgnore")
	}

	switch kind {
	case KindPermit:
		if t.To == "" {
			return ErrDestinationRequired
		}
		if _, ok := states[t.To]; !ok {
			return errors.Wrapf(ErrDestinationNotFound, "%q", t.To)
		}
		if t.To == source {
			return ErrIdentityTransition
		}
		if t.ElseIgnore && t.Guard == "" {
			return ErrElseIgnoreNeedsGuard
		}

	case KindReentry:
		if t.To != "" {
			return errors.Wrap(ErrUnexpectedField, "to")
		}

	case KindIgnore:
		if t.To != "" {
			return errors.Wrap(ErrUnexpectedField, "to")
		}
		if t.Action != "" {
			return errors.Wrap(ErrUnexpectedField, "action")
		}

	case KindInternal:
		if t.To != "" {
			return errors.Wrap(ErrUnexpectedField, "to")
		}
		if t.Action == "" {
			return ErrActionRequired
		}

	case KindDynamic:
		if t.To != "" {
			return errors.Wrap(ErrUnexpectedField, "to")
		}
		if t.Selector == "" {
			return ErrSelectorRequired
		}
		for _, dest := range t.Destinations {
			if _, ok := states[dest.State]; !ok {
				return errors.Wrapf(ErrDestinationNotFound, "%q", dest.State)
			}
		}
	}
	return nil
}
