package hsm_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/hsm"
)

func TestSubstateOf(t *testing.T) {
	// StateB is a superstate, StateC is a substate
	b := newBuilder()
	b.Configure(StateB).Permit(TriggerX, StateA)
	b.Configure(StateC).SubstateOf(StateB)
	b.Configure(StateA).Permit(TriggerY, StateC)
	sm := newMachine(t, b, StateA, nil)

	require.NoError(t, sm.Fire(TriggerY))
	assert.Equal(t, StateC, sm.State())

	// StateC inherits TriggerX from StateB
	ok, err := sm.CanFire(TriggerX)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, sm.Fire(TriggerX))
	assert.Equal(t, StateA, sm.State())
}

func TestIsInState_WithSubstates(t *testing.T) {
	b := newBuilder()
	b.Configure(StateB)
	b.Configure(StateC).SubstateOf(StateB)
	sm := newMachine(t, b, StateC, nil)

	assert.True(t, sm.IsInState(StateC))
	assert.True(t, sm.IsInState(StateB))
	assert.False(t, sm.IsInState(StateA))
}

func TestInheritedTrigger_ExitsInnerToOuter(t *testing.T) {
	const (
		active   = "Active"
		idle     = "Idle"
		running  = "Running"
		shutdown = "Shutdown"
		stop     = "Stop"
	)
	var log []string
	note := func(name string) hsm.TransitionAction[string, string, struct{}] {
		return func(hsm.Transition[string, string], struct{}) error {
			log = append(log, name)
			return nil
		}
	}

	b := hsm.NewBuilder[string, string, struct{}]()
	b.Configure(active).
		Permit(stop, shutdown).
		OnEntry(note("enter Active")).
		OnExit(note("exit Active"))
	b.Configure(idle).SubstateOf(active).OnExit(note("exit Idle"))
	b.Configure(running).SubstateOf(active).OnExit(note("exit Running"))
	b.Configure(shutdown).OnEntry(note("enter Shutdown"))
	topology, err := b.Build()
	require.NoError(t, err)

	sm := hsm.NewStateMachine(topology, idle, struct{}{})
	ok, err := sm.CanFire(stop)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, sm.Fire(stop))
	assert.Equal(t, shutdown, sm.State())
	assert.Equal(t, []string{"exit Idle", "exit Active", "enter Shutdown"}, log)
}

func TestEnteringSubstateFromOutside_EntersOuterToInner(t *testing.T) {
	c := &Ctx{}
	b := newBuilder()
	b.Configure(StateA).Permit(TriggerX, StateC).OnExit(record("exitA"))
	b.Configure(StateB).OnEntry(record("enterB"))
	b.Configure(StateC).SubstateOf(StateB).OnEntry(record("enterC"))
	sm := newMachine(t, b, StateA, c)

	require.NoError(t, sm.Fire(TriggerX))
	assert.Equal(t, []string{"exitA", "enterB", "enterC"}, c.Log)
}

func TestSubstateTransition_OverridesSuperstate(t *testing.T) {
	b := newBuilder()
	b.Configure(StateA).Permit(TriggerX, StateB)
	// Overrides the superstate transition
	b.Configure(StateB).SubstateOf(StateA).Permit(TriggerX, StateC)
	sm := newMachine(t, b, StateA, nil)

	require.NoError(t, sm.Fire(TriggerX))
	assert.Equal(t, StateB, sm.State())

	require.NoError(t, sm.Fire(TriggerX))
	assert.Equal(t, StateC, sm.State())
}

func TestSubstateTransition_GuardBlocked_UsesSuperstateTransition(t *testing.T) {
	b := newBuilder()
	b.Configure(StateA).PermitIf(TriggerX, StateD, func(*Ctx) bool { return true })
	b.Configure(StateB).
		SubstateOf(StateA).
		PermitIf(TriggerX, StateC, func(c *Ctx) bool { return c.Value > 0 })
	sm := newMachine(t, b, StateB, nil)

	require.NoError(t, sm.Fire(TriggerX))
	assert.Equal(t, StateD, sm.State())
}

func TestSubstateTransition_GuardOpen_UsesSubstateTransition(t *testing.T) {
	b := newBuilder()
	b.Configure(StateA).PermitIf(TriggerX, StateD, func(*Ctx) bool { return true })
	b.Configure(StateB).
		SubstateOf(StateA).
		PermitIf(TriggerX, StateC, func(c *Ctx) bool { return c.Value > 0 })
	sm := newMachine(t, b, StateB, &Ctx{Value: 1})

	require.NoError(t, sm.Fire(TriggerX))
	assert.Equal(t, StateC, sm.State())
}

func TestMultiLayerSubstates_GuardFallthrough(t *testing.T) {
	b := newBuilder()
	b.Configure(StateA).PermitIf(TriggerX, StateD, func(c *Ctx) bool { return c.Value >= 0 })
	b.Configure(StateB).SubstateOf(StateA).PermitIf(TriggerX, StateD, func(c *Ctx) bool { return c.Value >= 2 })
	b.Configure(StateC).SubstateOf(StateB).PermitIf(TriggerX, StateA, func(c *Ctx) bool { return c.Value >= 3 })
	topology, err := b.Build()
	require.NoError(t, err)

	tests := []struct {
		value int
		want  State
	}{
		{value: 3, want: StateA},
		{value: 2, want: StateD},
		{value: 0, want: StateD},
	}
	for _, tt := range tests {
		sm := hsm.NewStateMachine(topology, StateC, &Ctx{Value: tt.value})
		require.NoError(t, sm.Fire(TriggerX))
		assert.Equal(t, tt.want, sm.State(), "value %d", tt.value)
	}

	sm := hsm.NewStateMachine(topology, StateC, &Ctx{Value: -1})
	var unhandled *hsm.UnhandledTriggerError
	require.True(t, errors.As(sm.Fire(TriggerX), &unhandled))
	assert.Len(t, unhandled.UnmetGuards, 3)
}

func TestChildToParentTransition_OnEntryNotFired(t *testing.T) {
	c := &Ctx{}
	b := newBuilder()
	b.Configure(StateA).OnEntry(record("enterA")).OnExit(record("exitA"))
	b.Configure(StateB).SubstateOf(StateA).Permit(TriggerX, StateA).OnExit(record("exitB"))
	sm := newMachine(t, b, StateB, c)

	require.NoError(t, sm.Fire(TriggerX))
	assert.Equal(t, StateA, sm.State())
	assert.Equal(t, []string{"exitB"}, c.Log)
}

func TestParentToChildTransition_OnlyChildEntered(t *testing.T) {
	c := &Ctx{}
	b := newBuilder()
	b.Configure(StateA).Permit(TriggerX, StateB).OnEntry(record("enterA")).OnExit(record("exitA"))
	b.Configure(StateB).SubstateOf(StateA).OnEntry(record("enterB"))
	sm := newMachine(t, b, StateA, c)

	require.NoError(t, sm.Fire(TriggerX))
	assert.Equal(t, StateB, sm.State())
	assert.Equal(t, []string{"enterB"}, c.Log)
}

func TestWhenTransitioningWithinSameSuperstate(t *testing.T) {
	c := &Ctx{}
	b := newBuilder()
	b.Configure(StateA).OnEntry(record("enterA")).OnExit(record("exitA"))
	b.Configure(StateB).SubstateOf(StateA).Permit(TriggerX, StateC).
		OnEntry(record("enterB")).OnExit(record("exitB"))
	b.Configure(StateC).SubstateOf(StateA).Permit(TriggerY, StateB).
		OnEntry(record("enterC")).OnExit(record("exitC"))
	sm := newMachine(t, b, StateB, c)

	require.NoError(t, sm.Fire(TriggerX))
	require.NoError(t, sm.Fire(TriggerY))
	assert.Equal(t, []string{"exitB", "enterC", "exitC", "enterB"}, c.Log)
	assert.True(t, sm.IsInState(StateA))
}

func TestSubstateOf_SameSuperstateTwiceIsIdempotent(t *testing.T) {
	b := newBuilder()
	b.Configure(StateB).SubstateOf(StateA).SubstateOf(StateA)
	topology, err := b.Build()
	require.NoError(t, err)

	rep, ok := topology.Representation(StateA)
	require.True(t, ok)
	assert.Len(t, rep.Substates(), 1)
}

func TestSubstateOf_ConflictingSuperstate(t *testing.T) {
	b := newBuilder()
	b.Configure(StateC).SubstateOf(StateA).SubstateOf(StateB)

	_, err := b.Build()
	var conflict *hsm.SuperstateConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, StateC, conflict.State)
	assert.Equal(t, StateA, conflict.Current)
	assert.Equal(t, StateB, conflict.Requested)
}

func TestSubstateOf_CycleIsRejected(t *testing.T) {
	tests := []struct {
		name      string
		configure func(b *builder)
	}{
		{"self", func(b *builder) { b.Configure(StateA).SubstateOf(StateA) }},
		{"two states", func(b *builder) {
			b.Configure(StateB).SubstateOf(StateA)
			b.Configure(StateA).SubstateOf(StateB)
		}},
		{"three states", func(b *builder) {
			b.Configure(StateB).SubstateOf(StateA)
			b.Configure(StateC).SubstateOf(StateB)
			b.Configure(StateA).SubstateOf(StateC)
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder()
			tt.configure(b)
			_, err := b.Build()
			var cycle *hsm.CircularSuperstateError
			assert.True(t, errors.As(err, &cycle))
		})
	}
}
