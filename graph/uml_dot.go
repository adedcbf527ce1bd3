package graph

import (
	"fmt"
	"strings"

	"github.com/atlekbai/hsm"
)

// UmlDotGraphStyle generates DOT graphs in basic UML style.
type UmlDotGraphStyle struct{}

// NewUmlDotGraphStyle creates a new UML DOT graph style.
func NewUmlDotGraphStyle() *UmlDotGraphStyle {
	return &UmlDotGraphStyle{}
}

func (s *UmlDotGraphStyle) Prefix(*StateGraph) string {
	return "digraph {\ncompound=true;\nnode [shape=Mrecord]\nrankdir=\"LR\"\n"
}

func (s *UmlDotGraphStyle) Cluster(n *Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\nsubgraph \"cluster%s\"\n\t{\n", EscapeLabel(n.Name))
	fmt.Fprintf(&sb, "\tlabel = \"%s\"\n", EscapeLabel(n.Name)+actionLines(n, "\\n----------\\n"))
	for _, child := range n.Children {
		if child.IsCluster() {
			sb.WriteString(s.Cluster(child))
			continue
		}
		sb.WriteString(s.State(child))
	}
	sb.WriteString("}\n")
	return sb.String()
}

func (s *UmlDotGraphStyle) State(n *Node) string {
	name := EscapeLabel(n.Name)
	if len(n.EntryActions) == 0 && len(n.ExitActions) == 0 {
		return fmt.Sprintf("\"%s\" [label=\"%s\"];\n", name, name)
	}
	return fmt.Sprintf("\"%s\" [label=\"%s\"];\n", name, name+actionLines(n, "|"))
}

// actionLines lists the entry and exit actions of n after sep, or nothing.
func actionLines(n *Node, sep string) string {
	var lines []string
	for _, act := range n.EntryActions {
		lines = append(lines, "entry / "+EscapeLabel(act))
	}
	for _, act := range n.ExitActions {
		lines = append(lines, "exit / "+EscapeLabel(act))
	}
	if len(lines) == 0 {
		return ""
	}
	return sep + strings.Join(lines, "\\n")
}

func (s *UmlDotGraphStyle) Decision(d *Decision) string {
	return fmt.Sprintf("\"%s\" [shape = \"diamond\", label = \"%s\"];\n",
		EscapeLabel(d.Name), EscapeLabel(d.Selector.Description()))
}

func (s *UmlDotGraphStyle) Edge(from, to, label string) string {
	return fmt.Sprintf("\"%s\" -> \"%s\" [style=\"solid\", label=\"%s\"];",
		EscapeLabel(from), EscapeLabel(to), EscapeLabel(label))
}

func (s *UmlDotGraphStyle) Suffix(initial *Node) string {
	if initial == nil {
		return "\n}"
	}
	return fmt.Sprintf("\n init [label=\"\", shape=point];\n init -> \"%s\"[style = \"solid\"]\n}",
		EscapeLabel(initial.Name))
}

// EscapeLabel escapes special characters in a label.
func EscapeLabel(label string) string {
	label = strings.ReplaceAll(label, "\\", "\\\\")
	label = strings.ReplaceAll(label, "\"", "\\\"")
	return label
}

// UmlDotGraph generates a UML DOT graph from machine info.
func UmlDotGraph(machineInfo *hsm.MachineInfo) string {
	return NewStateGraph(machineInfo).Render(NewUmlDotGraphStyle())
}
