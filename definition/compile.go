package definition

import (
	"github.com/cockroachdb/errors"

	"github.com/atlekbai/hsm"
)

// Compile validates d and configures a new builder with it. The builder is
// returned unbuilt so that callers can add configuration the document cannot
// express.
func Compile[C any](d *Document, registry *Registry[C]) (*hsm.Builder[string, string, C], error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	b := hsm.NewBuilder[string, string, C]()
	for _, s := range d.States {
		sc := b.Configure(s.Name)
		if s.Parent != "" {
			sc.SubstateOf(s.Parent)
		}
		if err := compileActions(sc, s, registry); err != nil {
			return nil, errors.Wrapf(err, "state %q", s.Name)
		}
		for i, t := range s.Transitions {
			if err := compileTransition(sc, t, registry); err != nil {
				return nil, errors.Wrapf(err, "state %q: transition #%d (%s)", s.Name, i, t.Trigger)
			}
		}
	}
	if err := b.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

// Build compiles d and builds the topology.
func Build[C any](d *Document, registry *Registry[C]) (*hsm.Topology[string, string, C], error) {
	b, err := Compile(d, registry)
	if err != nil {
		return nil, err
	}
	return b.Build()
}

func compileActions[C any](sc *hsm.StateConfiguration[string, string, C], s StateDocument, registry *Registry[C]) error {
	for _, ref := range s.Entry {
		action, ok := registry.transitionActions[ref.Action]
		if !ok {
			return errors.Wrapf(ErrUnknownAction, "entry %q", ref.Action)
		}
		if ref.From != "" {
			sc.OnEntryFrom(ref.From, action, ref.Action)
		} else {
			sc.OnEntry(action, ref.Action)
		}
	}
	for _, ref := range s.Exit {
		action, ok := registry.transitionActions[ref.Action]
		if !ok {
			return errors.Wrapf(ErrUnknownAction, "exit %q", ref.Action)
		}
		sc.OnExit(action, ref.Action)
	}
	return nil
}

func compileTransition[C any](sc *hsm.StateConfiguration[string, string, C], t TransitionDocument, registry *Registry[C]) error {
	var (
		guard  hsm.GuardFunc[C]
		action hsm.Action[C]
		ok     bool
	)
	if t.Guard != "" {
		if guard, ok = registry.lookupGuard(t.Guard); !ok {
			return errors.Wrapf(ErrUnknownGuard, "%q", t.Guard)
		}
	}
	if t.Action != "" {
		if action, ok = registry.actions[t.Action]; !ok || action == nil {
			return errors.Wrapf(ErrUnknownAction, "%q", t.Action)
		}
	}

	switch t.EffectiveKind() {
	case KindPermit:
		switch {
		case t.ElseIgnore && action != nil:
			sc.PermitIfElseIgnoreWithAction(t.Trigger, t.To, guard, action, t.Guard)
		case t.ElseIgnore:
			sc.PermitIfElseIgnore(t.Trigger, t.To, guard, t.Guard)
		case guard != nil && action != nil:
			sc.PermitIfWithAction(t.Trigger, t.To, guard, action, t.Guard)
		case guard != nil:
			sc.PermitIf(t.Trigger, t.To, guard, t.Guard)
		case action != nil:
			sc.PermitWithAction(t.Trigger, t.To, action)
		default:
			sc.Permit(t.Trigger, t.To)
		}

	case KindReentry:
		switch {
		case guard != nil && action != nil:
			sc.PermitReentryIfWithAction(t.Trigger, guard, action, t.Guard)
		case guard != nil:
			sc.PermitReentryIf(t.Trigger, guard, t.Guard)
		case action != nil:
			sc.PermitReentryWithAction(t.Trigger, action)
		default:
			sc.PermitReentry(t.Trigger)
		}

	case KindInternal:
		if guard != nil {
			sc.PermitInternalIf(t.Trigger, guard, action, t.Guard)
		} else {
			sc.PermitInternal(t.Trigger, action)
		}

	case KindIgnore:
		if guard != nil {
			sc.IgnoreIf(t.Trigger, guard, t.Guard)
		} else {
			sc.Ignore(t.Trigger)
		}

	case KindDynamic:
		selector, found := registry.selectors[t.Selector]
		if !found || selector == nil {
			return errors.Wrapf(ErrUnknownSelector, "%q", t.Selector)
		}
		possible := make([]hsm.DynamicStateInfo, len(t.Destinations))
		for i, dest := range t.Destinations {
			possible[i] = hsm.DynamicStateInfo{DestinationState: dest.State, Criterion: dest.Criterion}
		}
		switch {
		case guard != nil:
			sc.PermitDynamicIf(t.Trigger, selector, guard, action, possible...)
		case action != nil:
			sc.PermitDynamicWithAction(t.Trigger, selector, action, possible...)
		default:
			sc.PermitDynamic(t.Trigger, selector, possible...)
		}
	}
	return nil
}
