package graph

import (
	"fmt"
	"sort"
	"strings"

	"facette.io/natsort"

	"github.com/atlekbai/hsm"
)

// StateGraph is a symbolic representation of a topology, ready to be rendered
// by a Style.
type StateGraph struct {
	// Initial is the initial state node, if known.
	Initial *Node

	// Nodes indexes every state node by name.
	Nodes map[string]*Node

	Edges     []*Edge
	Decisions []*Decision
}

// NewStateGraph builds the graph of machineInfo.
func NewStateGraph(machineInfo *hsm.MachineInfo) *StateGraph {
	sg := &StateGraph{
		Nodes: make(map[string]*Node),
	}

	for _, info := range machineInfo.States {
		sg.node(info)
	}
	for _, info := range machineInfo.States {
		node := sg.Nodes[nameOf(info)]
		if info.Superstate != nil {
			parent := sg.node(info.Superstate)
			node.Parent = parent
			parent.Children = append(parent.Children, node)
		}
	}
	for _, info := range machineInfo.States {
		sg.addEdges(info)
	}
	for _, info := range machineInfo.States {
		sg.bindEntryFrom(info)
	}

	if machineInfo.InitialState != nil {
		sg.Initial = sg.Nodes[nameOf(machineInfo.InitialState)]
	}
	return sg
}

func nameOf(info *hsm.StateInfo) string {
	return fmt.Sprintf("%v", info.UnderlyingState)
}

// node returns the node of info, creating it on first use. Destinations that
// were never configured get a bare node.
func (sg *StateGraph) node(info *hsm.StateInfo) *Node {
	name := nameOf(info)
	if n, ok := sg.Nodes[name]; ok {
		return n
	}

	n := &Node{Name: name, Info: info}
	for _, action := range info.EntryActions {
		if action.FromTrigger == nil {
			n.EntryActions = append(n.EntryActions, action.Description())
		}
	}
	for _, action := range info.ExitActions {
		n.ExitActions = append(n.ExitActions, action.Description())
	}
	sg.Nodes[name] = n
	return n
}

func (sg *StateGraph) link(e *Edge) {
	sg.Edges = append(sg.Edges, e)
	e.Source.Leaving = append(e.Source.Leaving, e)
	if e.Destination != nil {
		e.Destination.Arriving = append(e.Destination.Arriving, e)
	}
}

func (sg *StateGraph) addEdges(info *hsm.StateInfo) {
	from := sg.Nodes[nameOf(info)]

	for _, fix := range info.FixedTransitions {
		to := sg.node(fix.DestinationState)
		kind := Fixed
		switch {
		case fix.IsInternalTransition:
			kind = Internal
		case to == from:
			kind = Reentry
		}
		sg.link(&Edge{
			Kind:        kind,
			Trigger:     fix.Trigger,
			Source:      from,
			Destination: to,
			Guards:      fix.GuardConditions,
		})
	}

	for _, ignored := range info.IgnoredTriggers {
		sg.link(&Edge{
			Kind:        Ignored,
			Trigger:     ignored.Trigger,
			Source:      from,
			Destination: from,
			Guards:      ignored.GuardConditions,
		})
	}

	for _, dyn := range info.DynamicTransitions {
		decision := &Decision{
			Name:     fmt.Sprintf("Decision%d", len(sg.Decisions)+1),
			Selector: dyn.DestinationStateSelectorDescription,
		}
		sg.Decisions = append(sg.Decisions, decision)

		in := &Edge{
			Kind:     ToDecision,
			Trigger:  dyn.Trigger,
			Source:   from,
			Decision: decision,
			Guards:   dyn.GuardConditions,
		}
		sg.link(in)
		decision.Arriving = append(decision.Arriving, in)

		for _, possible := range dyn.PossibleDestinationStates {
			to := sg.node(&hsm.StateInfo{UnderlyingState: possible.DestinationState})
			out := &Edge{
				Kind:        FromDecision,
				Trigger:     dyn.Trigger,
				Source:      from,
				Destination: to,
				Decision:    decision,
				Criterion:   possible.Criterion,
			}
			sg.Edges = append(sg.Edges, out)
			decision.Leaving = append(decision.Leaving, out)
			to.Arriving = append(to.Arriving, out)
		}
	}
}

// bindEntryFrom attaches trigger-bound entry actions to the arriving edges
// that carry the trigger.
func (sg *StateGraph) bindEntryFrom(info *hsm.StateInfo) {
	node := sg.Nodes[nameOf(info)]
	for _, action := range info.EntryActions {
		if action.FromTrigger == nil {
			continue
		}
		bound := fmt.Sprint(action.FromTrigger)
		for _, e := range node.Arriving {
			if e.Kind.runsEntryExit() && e.Trigger.String() == bound {
				e.EntryActions = append(e.EntryActions, action)
			}
		}
	}
}

// sortedNames returns node names in natural order, so State2 sorts before State10.
func (sg *StateGraph) sortedNames() []string {
	names := make([]string, 0, len(sg.Nodes))
	for name := range sg.Nodes {
		names = append(names, name)
	}
	natsort.Sort(names)
	return names
}

// sortedEdges orders edges by source, then destination, then trigger, all in
// natural order.
func (sg *StateGraph) sortedEdges() []*Edge {
	names := sg.sortedNames()
	for _, d := range sg.Decisions {
		names = append(names, d.Name)
	}
	var triggers []string
	for _, e := range sg.Edges {
		triggers = append(triggers, e.Trigger.String())
	}
	natsort.Sort(triggers)

	rank := make(map[string]int, len(names)+len(triggers))
	for i, n := range names {
		rank["s:"+n] = i
	}
	for i, t := range triggers {
		if _, ok := rank["t:"+t]; !ok {
			rank["t:"+t] = i
		}
	}

	key := func(e *Edge) [3]int {
		src, dst := e.Source.Name, ""
		if e.Kind == FromDecision {
			src = e.Decision.Name
		}
		if e.Destination != nil {
			dst = e.Destination.Name
		} else if e.Decision != nil {
			dst = e.Decision.Name
		}
		return [3]int{rank["s:"+src], rank["s:"+dst], rank["t:"+e.Trigger.String()]}
	}

	sorted := append([]*Edge(nil), sg.Edges...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := key(sorted[i]), key(sorted[j])
		for n := range ki {
			if ki[n] != kj[n] {
				return ki[n] < kj[n]
			}
		}
		return false
	})
	return sorted
}

// Render writes the graph using style.
func (sg *StateGraph) Render(style Style) string {
	var sb strings.Builder
	sb.WriteString(style.Prefix(sg))

	names := sg.sortedNames()
	for _, name := range names {
		if n := sg.Nodes[name]; n.Parent == nil && n.IsCluster() {
			sb.WriteString(style.Cluster(n))
		}
	}
	for _, name := range names {
		if n := sg.Nodes[name]; n.Parent == nil && !n.IsCluster() {
			sb.WriteString(style.State(n))
		}
	}
	for _, d := range sg.Decisions {
		sb.WriteString(style.Decision(d))
	}

	for _, e := range sg.sortedEdges() {
		from, to := e.Source.Name, ""
		switch e.Kind {
		case ToDecision:
			to = e.Decision.Name
		case FromDecision:
			from, to = e.Decision.Name, e.Destination.Name
		default:
			to = e.Destination.Name
		}
		sb.WriteString("\n")
		sb.WriteString(style.Edge(from, to, Label(e)))
	}

	sb.WriteString(style.Suffix(sg.Initial))
	return sb.String()
}

// Label formats the UML label of e: trigger, entry actions run along the
// edge, and guards in brackets.
func Label(e *Edge) string {
	if e.Kind == FromDecision {
		return e.Criterion
	}

	var sb strings.Builder
	sb.WriteString(e.Trigger.String())

	if e.Kind.runsEntryExit() && len(e.EntryActions) > 0 {
		actions := make([]string, len(e.EntryActions))
		for i, a := range e.EntryActions {
			actions[i] = a.Description()
		}
		sb.WriteString(" / ")
		sb.WriteString(strings.Join(actions, ", "))
	}

	for _, g := range e.Guards {
		sb.WriteString(" [")
		sb.WriteString(g.Description())
		sb.WriteString("]")
	}
	return sb.String()
}
