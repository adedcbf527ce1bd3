package graph_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/hsm"
	"github.com/atlekbai/hsm/graph"
)

// Test state and trigger types.
type (
	TestState   int
	TestTrigger int
)

const (
	TestStateA TestState = iota
	TestStateB
	TestStateC
	TestStateD
)

const (
	TestTriggerX TestTrigger = iota
	TestTriggerY
	TestTriggerZ
)

func (s TestState) String() string {
	switch s {
	case TestStateA:
		return "A"
	case TestStateB:
		return "B"
	case TestStateC:
		return "C"
	case TestStateD:
		return "D"
	default:
		return "Unknown"
	}
}

func (t TestTrigger) String() string {
	switch t {
	case TestTriggerX:
		return "X"
	case TestTriggerY:
		return "Y"
	case TestTriggerZ:
		return "Z"
	default:
		return "Unknown"
	}
}

type testBuilder = hsm.Builder[TestState, TestTrigger, int]

func machineInfo(t *testing.T, initial TestState, configure func(b *testBuilder)) *hsm.MachineInfo {
	t.Helper()
	b := hsm.NewBuilder[TestState, TestTrigger, int]()
	configure(b)
	topology, err := b.Build()
	require.NoError(t, err)
	return topology.Info(initial)
}

func noop(hsm.Transition[TestState, TestTrigger], int) error { return nil }

func isReady(c int) bool { return c > 0 }

func simple(b *testBuilder) {
	b.Configure(TestStateA).
		Permit(TestTriggerX, TestStateB).
		Permit(TestTriggerY, TestStateC)
	b.Configure(TestStateB).Permit(TestTriggerZ, TestStateA)
	b.Configure(TestStateC).Permit(TestTriggerZ, TestStateA)
}

func TestEdgeList(t *testing.T) {
	info := machineInfo(t, TestStateA, func(b *testBuilder) {
		simple(b)
		b.Configure(TestStateA).
			PermitInternal(TestTriggerZ, func(int) error { return nil }).
			Ignore(TestTriggerZ)
	})

	assert.Equal(t,
		"digraph G {\n\tA -> B;\n\tA -> C;\n\tB -> A;\n\tC -> A;\n}",
		graph.EdgeList(info, false))
	assert.Equal(t,
		"digraph G {\n"+
			"\tA -> B [label = \"X\" ];\n"+
			"\tA -> C [label = \"Y\" ];\n"+
			"\tB -> A [label = \"Z\" ];\n"+
			"\tC -> A [label = \"Z\" ];\n"+
			"}",
		graph.EdgeList(info, true))
}

func TestEdgeList_IncludesReentry(t *testing.T) {
	info := machineInfo(t, TestStateA, func(b *testBuilder) {
		b.Configure(TestStateA).PermitReentry(TestTriggerX)
	})

	var buf bytes.Buffer
	require.NoError(t, graph.WriteEdgeList(&buf, info, false))
	assert.Equal(t, "digraph G {\n\tA -> A;\n}", buf.String())
}

func TestUmlDotGraph(t *testing.T) {
	dot := graph.UmlDotGraph(machineInfo(t, TestStateA, simple))

	expected := "digraph {\n" +
		"compound=true;\n" +
		"node [shape=Mrecord]\n" +
		"rankdir=\"LR\"\n" +
		"\"A\" [label=\"A\"];\n" +
		"\"B\" [label=\"B\"];\n" +
		"\"C\" [label=\"C\"];\n" +
		"\n\"A\" -> \"B\" [style=\"solid\", label=\"X\"];" +
		"\n\"A\" -> \"C\" [style=\"solid\", label=\"Y\"];" +
		"\n\"B\" -> \"A\" [style=\"solid\", label=\"Z\"];" +
		"\n\"C\" -> \"A\" [style=\"solid\", label=\"Z\"];" +
		"\n init [label=\"\", shape=point];" +
		"\n init -> \"A\"[style = \"solid\"]" +
		"\n}"
	assert.Equal(t, expected, dot)
}

func TestUmlDotGraph_EntryExitActions(t *testing.T) {
	dot := graph.UmlDotGraph(machineInfo(t, TestStateA, func(b *testBuilder) {
		b.Configure(TestStateA).OnEntry(noop, "enterA").OnExit(noop, "exitA")
	}))

	assert.Contains(t, dot, "\"A\" [label=\"A|entry / enterA\\nexit / exitA\"];")
}

func TestUmlDotGraph_Guards(t *testing.T) {
	dot := graph.UmlDotGraph(machineInfo(t, TestStateA, func(b *testBuilder) {
		b.Configure(TestStateA).PermitIf(TestTriggerX, TestStateB, isReady)
	}))

	assert.Contains(t, dot, "\"A\" -> \"B\" [style=\"solid\", label=\"X [isReady]\"];")
}

func TestUmlDotGraph_Hierarchy(t *testing.T) {
	dot := graph.UmlDotGraph(machineInfo(t, TestStateA, func(b *testBuilder) {
		b.Configure(TestStateA).Permit(TestTriggerX, TestStateC)
		b.Configure(TestStateB).OnEntry(noop, "enterB")
		b.Configure(TestStateC).SubstateOf(TestStateB)
		b.Configure(TestStateD).SubstateOf(TestStateC)
	}))

	assert.Contains(t, dot, "subgraph \"clusterB\"")
	assert.Contains(t, dot, "label = \"B\\n----------\\nentry / enterB\"")
	assert.Contains(t, dot, "subgraph \"clusterC\"")
	assert.Contains(t, dot, "\"D\" [label=\"D\"];")
	// Substates are only drawn inside their cluster.
	assert.Equal(t, 1, strings.Count(dot, "\"D\" [label"))
}

func TestUmlDotGraph_EntryFromTrigger(t *testing.T) {
	dot := graph.UmlDotGraph(machineInfo(t, TestStateA, func(b *testBuilder) {
		b.Configure(TestStateA).Permit(TestTriggerX, TestStateB).Permit(TestTriggerY, TestStateB)
		b.Configure(TestStateB).OnEntryFrom(TestTriggerX, noop, "fromX")
	}))

	assert.Contains(t, dot, "label=\"X / fromX\"")
	assert.Contains(t, dot, "label=\"Y\"")
	assert.Contains(t, dot, "\"B\" [label=\"B\"];")
}

func TestUmlDotGraph_Dynamic(t *testing.T) {
	dot := graph.UmlDotGraph(machineInfo(t, TestStateA, func(b *testBuilder) {
		b.Configure(TestStateA).PermitDynamic(TestTriggerX,
			func(int) TestState { return TestStateB },
			hsm.DynamicStateInfo{DestinationState: "B", Criterion: "ready"},
			hsm.DynamicStateInfo{DestinationState: "C", Criterion: "not ready"},
		)
		b.Configure(TestStateB)
	}))

	assert.Contains(t, dot, "\"Decision1\" [shape = \"diamond\", label = \"Function\"];")
	assert.Contains(t, dot, "\"A\" -> \"Decision1\" [style=\"solid\", label=\"X\"];")
	assert.Contains(t, dot, "\"Decision1\" -> \"B\" [style=\"solid\", label=\"ready\"];")
	assert.Contains(t, dot, "\"Decision1\" -> \"C\" [style=\"solid\", label=\"not ready\"];")
}

func TestUmlDotGraph_InternalAndIgnored(t *testing.T) {
	dot := graph.UmlDotGraph(machineInfo(t, TestStateA, func(b *testBuilder) {
		b.Configure(TestStateA).
			PermitInternal(TestTriggerX, func(int) error { return nil }).
			Ignore(TestTriggerY)
	}))

	assert.Contains(t, dot, "\"A\" -> \"A\" [style=\"solid\", label=\"X\"];")
	assert.Contains(t, dot, "\"A\" -> \"A\" [style=\"solid\", label=\"Y\"];")
}

func TestUmlDotGraph_NoInitialState(t *testing.T) {
	dot := graph.UmlDotGraph(machineInfo(t, TestStateD, simple))

	assert.NotContains(t, dot, "init")
	assert.True(t, strings.HasSuffix(dot, "\n}"))
}

func TestMermaidGraph(t *testing.T) {
	direction := graph.LeftToRight
	mermaid := graph.MermaidGraph(machineInfo(t, TestStateA, simple), &direction)

	expected := "stateDiagram-v2\n" +
		"\tdirection LR\n" +
		"\tA --> B : X\n" +
		"\tA --> C : Y\n" +
		"\tB --> A : Z\n" +
		"\tC --> A : Z\n" +
		"[*] --> A"
	assert.Equal(t, expected, mermaid)
}

func TestMermaidGraphWithoutDirection(t *testing.T) {
	mermaid := graph.MermaidGraph(machineInfo(t, TestStateA, simple), nil)

	assert.True(t, strings.HasPrefix(mermaid, "stateDiagram-v2"))
	assert.NotContains(t, mermaid, "direction")
}

func TestMermaidGraph_Hierarchy(t *testing.T) {
	mermaid := graph.MermaidGraph(machineInfo(t, TestStateA, func(b *testBuilder) {
		b.Configure(TestStateA).Permit(TestTriggerX, TestStateC)
		b.Configure(TestStateC).SubstateOf(TestStateB)
		b.Configure(TestStateD).SubstateOf(TestStateB)
	}), nil)

	assert.Contains(t, mermaid, "\n\tstate B {\n\t\tC\n\t\tD\n\t}")
}

func TestMermaidGraph_SanitizesNames(t *testing.T) {
	b := hsm.NewBuilder[string, string, int]()
	b.Configure("Off Hook").Permit("dial", "Ringing-Out")
	topology, err := b.Build()
	require.NoError(t, err)

	mermaid := graph.MermaidGraph(topology.Info("Off Hook"), nil)

	assert.Contains(t, mermaid, "\tOffHook : Off Hook")
	assert.Contains(t, mermaid, "\tRingingOut : Ringing-Out")
	assert.Contains(t, mermaid, "\tOffHook --> RingingOut : dial")
	assert.Contains(t, mermaid, "[*] --> OffHook")
}

func TestStateGraph_NaturalOrder(t *testing.T) {
	b := hsm.NewBuilder[string, string, int]()
	for _, s := range []string{"S10", "S2", "S1"} {
		b.Configure(s)
	}
	topology, err := b.Build()
	require.NoError(t, err)

	dot := graph.UmlDotGraph(topology.Info("S1"))
	s1 := strings.Index(dot, "\"S1\" [")
	s2 := strings.Index(dot, "\"S2\" [")
	s10 := strings.Index(dot, "\"S10\" [")
	assert.True(t, s1 < s2 && s2 < s10, dot)
}

func TestStateGraph_Kinds(t *testing.T) {
	sg := graph.NewStateGraph(machineInfo(t, TestStateA, func(b *testBuilder) {
		b.Configure(TestStateA).
			Permit(TestTriggerX, TestStateB).
			PermitReentry(TestTriggerY).
			Ignore(TestTriggerZ)
	}))

	kinds := map[graph.EdgeKind]int{}
	for _, e := range sg.Edges {
		kinds[e.Kind]++
	}
	assert.Equal(t, map[graph.EdgeKind]int{graph.Fixed: 1, graph.Reentry: 1, graph.Ignored: 1}, kinds)
	assert.True(t, graph.Reentry.Stays())
	assert.False(t, graph.Fixed.Stays())
	require.NotNil(t, sg.Initial)
	assert.Equal(t, "A", sg.Initial.Name)
	assert.Len(t, sg.Nodes["A"].Leaving, 3)
}
