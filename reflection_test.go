package hsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isPositive(c int) bool { return c > 0 }

type checker struct{}

func (checker) Ready(c int) bool { return c == 1 }

func TestInvocationInfo_Description(t *testing.T) {
	tests := []struct {
		name string
		info InvocationInfo
		want string
	}{
		{"user description wins", CreateInvocationInfo(isPositive, "is positive"), "is positive"},
		{"named function", CreateInvocationInfo(isPositive, ""), "isPositive"},
		{"method value", CreateInvocationInfo(checker{}.Ready, ""), "Ready"},
		{"closure", CreateInvocationInfo(func(int) bool { return true }, ""), DefaultFunctionDescription},
		{"nil", CreateInvocationInfo(nil, ""), NullString},
		{"typed nil", CreateInvocationInfo(GuardFunc[int](nil), ""), NullString},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.Description())
		})
	}
}

func TestTransitionGuard_Negate(t *testing.T) {
	guard := NewTransitionGuard(isPositive, "")
	negated := guard.negate()

	assert.True(t, guard.GuardConditionsMet(1))
	assert.False(t, negated.GuardConditionsMet(1))
	assert.True(t, negated.GuardConditionsMet(0))
	assert.Equal(t, []string{"!isPositive"}, negated.UnmetGuardConditions(1))
	assert.Equal(t, "!<null>", EmptyTransitionGuard[int]().negate().Conditions[0].Description())
}

func TestTransitionGuard_Empty(t *testing.T) {
	guard := EmptyTransitionGuard[int]()
	assert.True(t, guard.IsEmpty())
	assert.True(t, guard.GuardConditionsMet(0))
	assert.Empty(t, guard.UnmetGuardConditions(0))
	assert.True(t, NewTransitionGuard[int](nil, "").IsEmpty())
}

func TestTopology_Info(t *testing.T) {
	b := NewBuilder[string, string, int]()
	b.Configure("A").
		PermitIf("go", "B", isPositive).
		PermitInternal("tick", func(int) error { return nil }).
		Ignore("noop").
		PermitDynamic("pick", func(int) string { return "C" },
			DynamicStateInfo{DestinationState: "C", Criterion: "always"})
	b.Configure("B").SubstateOf("A")
	topology, err := b.Build()
	require.NoError(t, err)

	info := topology.Info("A")
	require.Len(t, info.States, 2)
	a, sub := info.States[0], info.States[1]
	assert.Same(t, a, info.InitialState)
	assert.Same(t, a, sub.Superstate)
	assert.Equal(t, []*StateInfo{sub}, a.Substates)

	require.Len(t, a.FixedTransitions, 2)
	assert.Same(t, sub, a.FixedTransitions[0].DestinationState)
	assert.Equal(t, "isPositive", a.FixedTransitions[0].GuardConditions[0].Description())
	assert.True(t, a.FixedTransitions[1].IsInternalTransition)
	assert.Same(t, a, a.FixedTransitions[1].DestinationState)

	require.Len(t, a.IgnoredTriggers, 1)
	assert.Equal(t, "noop", a.IgnoredTriggers[0].Trigger.String())

	require.Len(t, a.DynamicTransitions, 1)
	assert.Equal(t, "pick", a.DynamicTransitions[0].GetTrigger().String())
	assert.Equal(t, "C", a.DynamicTransitions[0].PossibleDestinationStates[0].DestinationState)
	assert.Equal(t, DefaultFunctionDescription, a.DynamicTransitions[0].DestinationStateSelectorDescription.Description())

	assert.Nil(t, topology.Info("Z").InitialState)
}
