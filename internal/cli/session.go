package cli

import (
	"log/slog"
	"slices"

	"github.com/atlekbai/hsm"
	"github.com/atlekbai/hsm/definition"
)

// session is the machine context of documents run from the command line.
// Guards read named flags, actions only log, and selectors pick the
// destination chosen by the user.
type session struct {
	guards map[string]bool
	logger *slog.Logger

	// choose returns the destination of a dynamic transition.
	choose func(selector string, options []string) string

	// state reports the current state; selectors without options stay there.
	state func() string
}

type machine = hsm.StateMachine[string, string, *session]

func newSession(logger *slog.Logger, holding []string) *session {
	s := &session{
		guards: make(map[string]bool, len(holding)),
		logger: logger,
	}
	for _, g := range holding {
		s.guards[g] = true
	}
	return s
}

// fixedChoice picks choices[selector], falling back to the first option.
func fixedChoice(choices map[string]string) func(string, []string) string {
	return func(selector string, options []string) string {
		if choice, ok := choices[selector]; ok {
			return choice
		}
		if len(options) > 0 {
			return options[0]
		}
		return ""
	}
}

// registryFor binds every name doc references to session behaviour.
func registryFor(doc *definition.Document) *definition.Registry[*session] {
	refs := doc.References()
	registry := definition.NewRegistry[*session]()

	for _, name := range refs.Guards {
		name := name
		registry.Guard(name, func(s *session) bool {
			return s.guards[name]
		})
	}
	for _, name := range refs.Actions {
		name := name
		registry.Action(name, func(s *session) error {
			s.logger.Info("Action executed", "action", name)
			return nil
		})
	}
	for _, name := range refs.TransitionActions {
		name := name
		registry.TransitionAction(name, func(t hsm.Transition[string, string], s *session) error {
			s.logger.Info("Action executed", "action", name, "from", t.Source, "to", t.Destination)
			return nil
		})
	}

	options := selectorOptions(doc)
	for _, name := range refs.Selectors {
		name := name
		registry.Selector(name, func(s *session) string {
			if choice := s.choose(name, options[name]); choice != "" {
				return choice
			}
			return s.state()
		})
	}
	return registry
}

// selectorOptions collects the declared destinations of every selector.
func selectorOptions(doc *definition.Document) map[string][]string {
	options := make(map[string][]string)
	for _, s := range doc.States {
		for _, t := range s.Transitions {
			if t.Selector == "" {
				continue
			}
			for _, dest := range t.Destinations {
				if !slices.Contains(options[t.Selector], dest.State) {
					options[t.Selector] = append(options[t.Selector], dest.State)
				}
			}
		}
	}
	return options
}

// start loads the document at path and creates a started machine for it.
func (c *cliContext) start(path string, tracer hsm.Tracer[string, string]) (*machine, *definition.Document, error) {
	doc, err := definition.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	topology, err := definition.Build(doc, registryFor(doc))
	if err != nil {
		return nil, nil, err
	}

	initial := doc.Initial
	if c.initial != "" {
		initial = c.initial
	}

	s := newSession(c.logger, c.guards)
	s.choose = fixedChoice(c.choices)
	sm := hsm.NewStateMachine(topology, initial, s)
	s.state = sm.State
	sm.SetTracer(tracer)

	if err := sm.FireInitialTransition(); err != nil {
		return nil, nil, err
	}
	return sm, doc, nil
}
