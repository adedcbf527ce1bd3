// Package definition loads state machine topologies declared in YAML and
// compiles them into an hsm.Builder.
//
// A document names its states and, per state, the transitions leaving it.
// Guards, actions and selectors are referenced by name and resolved against
// a Registry when the document is compiled:
//
//	name: door
//	initial: closed
//	states:
//	  - name: closed
//	    transitions:
//	      - trigger: open
//	        to: opened
//	        guard: isUnlocked
//	  - name: opened
//	    entry:
//	      - action: ring
//	    transitions:
//	      - trigger: close
//	        to: closed
package definition

import (
	"bytes"
	"io"
	"io/fs"
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Kind selects the builder operation a transition compiles to.
type Kind string

const (
	// KindPermit moves to another state. It is the default.
	KindPermit Kind = "permit"
	// KindReentry exits and re-enters the state itself.
	KindReentry Kind = "reentry"
	// KindInternal runs an action without leaving the state.
	KindInternal Kind = "internal"
	// KindIgnore swallows the trigger.
	KindIgnore Kind = "ignore"
	// KindDynamic moves to the state returned by a selector.
	KindDynamic Kind = "dynamic"
)

func (k Kind) valid() bool {
	switch k {
	case KindPermit, KindReentry, KindInternal, KindIgnore, KindDynamic:
		return true
	}
	return false
}

// Document is the root of a topology definition.
type Document struct {
	Name    string          `json:"name"    yaml:"name"`
	Initial string          `json:"initial" yaml:"initial"`
	States  []StateDocument `json:"states"  yaml:"states"`
}

// StateDocument declares one state.
type StateDocument struct {
	Name        string               `json:"name"        yaml:"name"`
	Parent      string               `json:"parent"      yaml:"parent,omitempty"`
	Entry       []ActionRef          `json:"entry"       yaml:"entry,omitempty"`
	Exit        []ActionRef          `json:"exit"        yaml:"exit,omitempty"`
	Transitions []TransitionDocument `json:"transitions" yaml:"transitions,omitempty"`
}

// ActionRef names an entry or exit action. From restricts an entry action to
// one trigger.
type ActionRef struct {
	Action string `json:"action" yaml:"action"`
	From   string `json:"from"   yaml:"from,omitempty"`
}

// TransitionDocument declares a trigger handled by the enclosing state.
//
// Guard may be prefixed with "!" to negate the named guard.
type TransitionDocument struct {
	Trigger      string                `json:"trigger"      yaml:"trigger"`
	Kind         Kind                  `json:"kind"         yaml:"kind,omitempty"`
	To           string                `json:"to"           yaml:"to,omitempty"`
	Guard        string                `json:"guard"        yaml:"guard,omitempty"`
	Action       string                `json:"action"       yaml:"action,omitempty"`
	ElseIgnore   bool                  `json:"elseIgnore"   yaml:"elseIgnore,omitempty"`
	Selector     string                `json:"selector"     yaml:"selector,omitempty"`
	Destinations []DestinationDocument `json:"destinations" yaml:"destinations,omitempty"`
}

// DestinationDocument documents one possible outcome of a dynamic transition.
type DestinationDocument struct {
	State     string `json:"state"     yaml:"state"`
	Criterion string `json:"criterion" yaml:"criterion,omitempty"`
}

// EffectiveKind returns Kind, defaulting to KindPermit.
func (t TransitionDocument) EffectiveKind() Kind {
	if t.Kind == "" {
		return KindPermit
	}
	return t.Kind
}

// Load parses and validates a YAML document. Unknown fields are rejected.
func Load(data []byte) (*Document, error) {
	var doc Document

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty definition")
		}
		return nil, errors.Wrap(err, "failed to parse YAML")
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadFile reads and loads the document at path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path-based loading is intended
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read definition %q", path)
	}
	doc, err := Load(data)
	if err != nil {
		return nil, errors.Wrapf(err, "definition %q", path)
	}
	return doc, nil
}

// LoadFS reads and loads the document at path in fsys, typically an embed.FS.
func LoadFS(fsys fs.FS, path string) (*Document, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read definition %q from FS", path)
	}
	doc, err := Load(data)
	if err != nil {
		return nil, errors.Wrapf(err, "definition %q", path)
	}
	return doc, nil
}

// Encode writes the document as YAML.
func (d *Document) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return errors.Wrap(err, "failed to encode definition")
	}
	return errors.Wrap(enc.Close(), "failed to encode definition")
}

// State returns the declaration of name.
func (d *Document) State(name string) (*StateDocument, bool) {
	for i := range d.States {
		if d.States[i].Name == name {
			return &d.States[i], true
		}
	}
	return nil, false
}

// Triggers returns every trigger named by the document, in order of first
// appearance.
func (d *Document) Triggers() []string {
	seen := make(map[string]bool)
	var triggers []string
	for _, s := range d.States {
		for _, t := range s.Transitions {
			if !seen[t.Trigger] {
				seen[t.Trigger] = true
				triggers = append(triggers, t.Trigger)
			}
		}
	}
	return triggers
}

// References lists the guard, action and selector names the document uses,
// each in order of first appearance. Negated guards are listed without "!".
type References struct {
	Guards            []string
	Actions           []string
	TransitionActions []string
	Selectors         []string
}

// References returns the names a Registry must provide to compile d.
func (d *Document) References() References {
	var refs References
	seen := make(map[string]bool)
	add := func(list *[]string, kind, name string) {
		if name == "" || seen[kind+"/"+name] {
			return
		}
		seen[kind+"/"+name] = true
		*list = append(*list, name)
	}

	for _, s := range d.States {
		for _, a := range s.Entry {
			add(&refs.TransitionActions, "transition", a.Action)
		}
		for _, a := range s.Exit {
			add(&refs.TransitionActions, "transition", a.Action)
		}
		for _, t := range s.Transitions {
			guard, _ := parseGuard(t.Guard)
			add(&refs.Guards, "guard", guard)
			add(&refs.Actions, "action", t.Action)
			add(&refs.Selectors, "selector", t.Selector)
		}
	}
	return refs
}
