// Package graph renders the topology of a state machine for external
// visualization tools: a plain edge list, UML-style DOT and Mermaid.
package graph

import (
	"github.com/atlekbai/hsm"
)

// EdgeKind classifies an edge of the graph.
type EdgeKind int

const (
	// Fixed is a transition to a known, different state.
	Fixed EdgeKind = iota
	// Reentry exits and re-enters the same state.
	Reentry
	// Internal runs an action without leaving the state.
	Internal
	// Ignored swallows the trigger.
	Ignored
	// ToDecision leads from a state into the decision node of a dynamic transition.
	ToDecision
	// FromDecision leads from a decision node to one possible destination.
	FromDecision
)

// Stays reports whether the edge starts and ends on the same state.
func (k EdgeKind) Stays() bool {
	return k == Reentry || k == Internal || k == Ignored
}

// runsEntryExit reports whether entry and exit actions run along the edge.
func (k EdgeKind) runsEntryExit() bool {
	return k != Internal && k != Ignored
}

// Node is a state in the graph.
type Node struct {
	// Name is the state printed with %v.
	Name string

	// EntryActions are the descriptions of the entry actions not bound to a trigger.
	EntryActions []string

	// ExitActions are the descriptions of the exit actions.
	ExitActions []string

	// Parent is the superstate node, if any.
	Parent *Node

	// Children are the substate nodes.
	Children []*Node

	// Info is the underlying introspection data.
	Info *hsm.StateInfo

	Leaving  []*Edge
	Arriving []*Edge
}

// IsCluster reports whether the node has substates.
func (n *Node) IsCluster() bool {
	return len(n.Children) > 0
}

// Decision is the choice node of a dynamic transition.
type Decision struct {
	// Name is the node name, Decision1, Decision2 and so on.
	Name string

	// Selector describes the function choosing the destination.
	Selector hsm.InvocationInfo

	Leaving  []*Edge
	Arriving []*Edge
}

// Edge is one arrow of the graph. Exactly one of Destination and Decision is
// set for ToDecision edges; FromDecision edges start at Decision.
type Edge struct {
	Kind    EdgeKind
	Trigger hsm.TriggerInfo

	Source      *Node
	Destination *Node
	Decision    *Decision

	// Guards are the guard conditions of the transition.
	Guards []hsm.InvocationInfo

	// EntryActions are the trigger-bound entry actions of the destination
	// that run along this edge.
	EntryActions []hsm.ActionInfo

	// Criterion explains when a FromDecision edge is taken.
	Criterion string
}
