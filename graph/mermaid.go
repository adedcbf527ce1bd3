package graph

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/atlekbai/hsm"
)

// MermaidGraphDirection specifies the direction of the Mermaid graph.
type MermaidGraphDirection int

const (
	// TopToBottom flows from top to bottom.
	TopToBottom MermaidGraphDirection = iota
	// BottomToTop flows from bottom to top.
	BottomToTop
	// LeftToRight flows from left to right.
	LeftToRight
	// RightToLeft flows from right to left.
	RightToLeft
)

func (d MermaidGraphDirection) code() string {
	switch d {
	case BottomToTop:
		return "BT"
	case LeftToRight:
		return "LR"
	case RightToLeft:
		return "RL"
	default:
		return "TB"
	}
}

// MermaidGraphStyle generates Mermaid state diagrams.
type MermaidGraphStyle struct {
	direction *MermaidGraphDirection

	// aliases maps state names to identifiers Mermaid accepts.
	aliases map[string]string
}

// NewMermaidGraphStyle creates a new Mermaid graph style. A nil direction
// leaves the choice to Mermaid.
func NewMermaidGraphStyle(direction *MermaidGraphDirection) *MermaidGraphStyle {
	return &MermaidGraphStyle{
		direction: direction,
		aliases:   make(map[string]string),
	}
}

func (s *MermaidGraphStyle) Prefix(sg *StateGraph) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2")
	if s.direction != nil {
		fmt.Fprintf(&sb, "\n\tdirection %s", s.direction.code())
	}

	taken := make(map[string]bool, len(sg.Nodes))
	for name := range sg.Nodes {
		taken[name] = true
	}
	for _, name := range sg.sortedNames() {
		alias := sanitizeStateName(name)
		if alias == name {
			continue
		}
		candidate := alias
		for n := 1; taken[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", alias, n)
		}
		taken[candidate] = true
		s.aliases[name] = candidate
		fmt.Fprintf(&sb, "\n\t%s : %s", candidate, name)
	}
	return sb.String()
}

func (s *MermaidGraphStyle) id(name string) string {
	if alias, ok := s.aliases[name]; ok {
		return alias
	}
	return name
}

func (s *MermaidGraphStyle) Cluster(n *Node) string {
	return s.cluster(n, "\t")
}

func (s *MermaidGraphStyle) cluster(n *Node, indent string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%sstate %s {", indent, s.id(n.Name))
	for _, child := range n.Children {
		if child.IsCluster() {
			sb.WriteString(s.cluster(child, indent+"\t"))
			continue
		}
		fmt.Fprintf(&sb, "\n%s\t%s", indent, s.id(child.Name))
	}
	fmt.Fprintf(&sb, "\n%s}", indent)
	return sb.String()
}

// State is empty: Mermaid declares states through their transitions.
func (s *MermaidGraphStyle) State(*Node) string {
	return ""
}

func (s *MermaidGraphStyle) Decision(d *Decision) string {
	return fmt.Sprintf("\n\tstate %s <<choice>>", d.Name)
}

func (s *MermaidGraphStyle) Edge(from, to, label string) string {
	if label == "" {
		return fmt.Sprintf("\t%s --> %s", s.id(from), s.id(to))
	}
	return fmt.Sprintf("\t%s --> %s : %s", s.id(from), s.id(to), label)
}

func (s *MermaidGraphStyle) Suffix(initial *Node) string {
	if initial == nil {
		return ""
	}
	return fmt.Sprintf("\n[*] --> %s", s.id(initial.Name))
}

// sanitizeStateName removes characters that would cause invalid Mermaid graphs.
func sanitizeStateName(name string) string {
	var result strings.Builder
	for _, c := range name {
		if !unicode.IsSpace(c) && c != ':' && c != '-' {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// MermaidGraph generates a Mermaid graph from machine info.
func MermaidGraph(machineInfo *hsm.MachineInfo, direction *MermaidGraphDirection) string {
	return NewStateGraph(machineInfo).Render(NewMermaidGraphStyle(direction))
}
