package graph

// Style turns the parts of a StateGraph into text.
type Style interface {
	// Prefix starts a new graph.
	Prefix(sg *StateGraph) string

	// Cluster formats a superstate together with all of its substates.
	Cluster(n *Node) string

	// State formats a state without substates.
	State(n *Node) string

	// Decision formats the choice node of a dynamic transition.
	Decision(d *Decision) string

	// Edge formats one arrow.
	Edge(from, to, label string) string

	// Suffix ends the graph, pointing at the initial state when it is known.
	Suffix(initial *Node) string
}
