package definition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/hsm"
	"github.com/atlekbai/hsm/definition"
)

type call struct {
	lineFree bool
	target   string
	log      []string
}

func logAs(name string) hsm.TransitionAction[string, string, *call] {
	return func(_ hsm.Transition[string, string], c *call) error {
		c.log = append(c.log, name)
		return nil
	}
}

func phoneRegistry() *definition.Registry[*call] {
	return definition.NewRegistry[*call]().
		Guard("lineFree", func(c *call) bool { return c.lineFree }).
		Action("saveMessage", func(c *call) error {
			c.log = append(c.log, "saveMessage")
			return nil
		}).
		Action("mute", func(c *call) error {
			c.log = append(c.log, "mute")
			return nil
		}).
		TransitionAction("startTimer", logAs("startTimer")).
		TransitionAction("stopTimer", logAs("stopTimer")).
		TransitionAction("greet", logAs("greet")).
		Selector("transferTarget", func(c *call) string { return c.target })
}

func phoneTopology(t *testing.T) *hsm.Topology[string, string, *call] {
	t.Helper()

	doc, err := definition.LoadFile("testdata/phone_call.yaml")
	require.NoError(t, err)
	topology, err := definition.Build(doc, phoneRegistry())
	require.NoError(t, err)
	return topology
}

func TestCompile_PhoneCall(t *testing.T) {
	t.Parallel()

	c := &call{}
	sm := hsm.NewStateMachine(phoneTopology(t), "OffHook", c)

	require.NoError(t, sm.Fire("CallDialed"))
	assert.Equal(t, "Ringing", sm.State())

	// The line is busy: CallConnected is ignored rather than rejected.
	require.NoError(t, sm.Fire("CallConnected"))
	assert.Equal(t, "Ringing", sm.State())

	c.lineFree = true
	require.NoError(t, sm.Fire("CallConnected"))
	assert.Equal(t, "Connected", sm.State())
	assert.Equal(t, []string{"startTimer", "greet"}, c.log)

	require.NoError(t, sm.Fire("MuteMicrophone"))
	assert.Equal(t, "Connected", sm.State())

	require.NoError(t, sm.Fire("PlacedOnHold"))
	assert.Equal(t, "OnHold", sm.State())
	assert.True(t, sm.IsInState("Connected"))
	require.NoError(t, sm.Fire("PlacedOnHold"))

	// The guarded HungUp in OnHold fails, the one inherited from Connected applies.
	require.NoError(t, sm.Fire("HungUp"))
	assert.Equal(t, "OffHook", sm.State())
	assert.Equal(t, []string{"startTimer", "greet", "mute", "stopTimer"}, c.log)
}

func TestCompile_Dynamic(t *testing.T) {
	t.Parallel()

	c := &call{target: "OffHook"}
	sm := hsm.NewStateMachine(phoneTopology(t), "Connected", c)

	require.NoError(t, sm.Fire("Transfer"))
	assert.Equal(t, "OffHook", sm.State())
	assert.Equal(t, []string{"stopTimer"}, c.log)
}

func TestCompile_TransitionAction(t *testing.T) {
	t.Parallel()

	c := &call{}
	sm := hsm.NewStateMachine(phoneTopology(t), "Connected", c)

	require.NoError(t, sm.Fire("LeftMessage"))
	assert.Equal(t, []string{"stopTimer", "saveMessage"}, c.log)
}

func TestCompile_Info(t *testing.T) {
	t.Parallel()

	info := phoneTopology(t).Info("OffHook")
	require.Len(t, info.States, 4)

	var connected *hsm.StateInfo
	for _, s := range info.States {
		if s.UnderlyingState == "Connected" {
			connected = s
		}
	}
	require.NotNil(t, connected)
	require.Len(t, connected.DynamicTransitions, 1)
	assert.Equal(t, "transfer refused", connected.DynamicTransitions[0].PossibleDestinationStates[1].Criterion)
	require.Len(t, connected.Substates, 1)
	assert.Equal(t, "OnHold", connected.Substates[0].UnderlyingState)
}

func TestCompile_UnknownNames(t *testing.T) {
	t.Parallel()

	doc, err := definition.LoadFile("testdata/phone_call.yaml")
	require.NoError(t, err)

	_, err = definition.Compile(doc, definition.NewRegistry[*call]())
	assert.ErrorIs(t, err, definition.ErrUnknownGuard)
	assert.Contains(t, err.Error(), `state "Ringing"`)

	registry := definition.NewRegistry[*call]().
		Guard("lineFree", func(*call) bool { return true })
	_, err = definition.Compile(doc, registry)
	assert.ErrorIs(t, err, definition.ErrUnknownAction)

	_, err = definition.Compile(doc, phoneRegistry().Selector("transferTarget", nil))
	assert.ErrorIs(t, err, definition.ErrUnknownSelector)
}

func TestCompile_NegatedGuard(t *testing.T) {
	t.Parallel()

	doc, err := definition.Load([]byte(`
initial: idle
states:
  - name: idle
    transitions:
      - trigger: go
        to: busy
        guard: "!blocked"
  - name: busy
`))
	require.NoError(t, err)

	blocked := true
	registry := definition.NewRegistry[*bool]().Guard("blocked", func(b *bool) bool { return *b })
	topology, err := definition.Build(doc, registry)
	require.NoError(t, err)

	sm := hsm.NewStateMachine(topology, "idle", &blocked)
	err = sm.Fire("go")
	var unhandled *hsm.UnhandledTriggerError
	require.ErrorAs(t, err, &unhandled)
	assert.Equal(t, []string{"!blocked"}, unhandled.UnmetGuards)

	blocked = false
	require.NoError(t, sm.Fire("go"))
	assert.Equal(t, "busy", sm.State())
}

func TestCompile_TransitionActionsOnEveryKind(t *testing.T) {
	t.Parallel()

	doc, err := definition.Load([]byte(`
initial: idle
states:
  - name: idle
    entry: [{action: enter}]
    exit: [{action: leave}]
    transitions:
      - trigger: refresh
        kind: reentry
        action: note
      - trigger: retry
        kind: reentry
        guard: lineFree
        action: note
      - trigger: dial
        to: busy
        guard: lineFree
        elseIgnore: true
        action: note
      - trigger: route
        kind: dynamic
        selector: target
        action: note
  - name: busy
    entry: [{action: enter}]
`))
	require.NoError(t, err)

	registry := definition.NewRegistry[*call]().
		Guard("lineFree", func(c *call) bool { return c.lineFree }).
		Action("note", func(c *call) error {
			c.log = append(c.log, "note")
			return nil
		}).
		TransitionAction("enter", logAs("enter")).
		TransitionAction("leave", logAs("leave")).
		Selector("target", func(c *call) string { return c.target })
	topology, err := definition.Build(doc, registry)
	require.NoError(t, err)

	tests := []struct {
		name    string
		trigger string
		c       *call
		state   string
		log     []string
	}{
		{"reentry", "refresh", &call{}, "idle", []string{"leave", "note", "enter"}},
		{"guarded reentry", "retry", &call{lineFree: true}, "idle", []string{"leave", "note", "enter"}},
		{"else ignore taken", "dial", &call{lineFree: true}, "busy", []string{"leave", "note", "enter"}},
		{"else ignore skipped", "dial", &call{}, "idle", nil},
		{"dynamic without guard", "route", &call{target: "busy"}, "busy", []string{"leave", "note", "enter"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			sm := hsm.NewStateMachine(topology, "idle", tt.c)
			require.NoError(t, sm.Fire(tt.trigger))
			assert.Equal(t, tt.state, sm.State())
			assert.Equal(t, tt.log, tt.c.log)
		})
	}
}
