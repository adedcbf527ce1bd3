package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/atlekbai/hsm"
)

// WriteEdgeList writes every ordinary transition of machineInfo as a
// `source -> destination` line inside `digraph G { ... }`. Internal, ignored
// and dynamic transitions are left out. With labels, each edge carries its
// trigger.
func WriteEdgeList(w io.Writer, machineInfo *hsm.MachineInfo, labels bool) error {
	if _, err := io.WriteString(w, "digraph G {\n"); err != nil {
		return errors.Wrap(err, "writing edge list")
	}
	for _, state := range machineInfo.States {
		for _, fix := range state.FixedTransitions {
			if fix.IsInternalTransition {
				continue
			}
			var line string
			if labels {
				line = fmt.Sprintf("\t%v -> %v [label = \"%s\" ];\n", state, fix.DestinationState, fix.Trigger)
			} else {
				line = fmt.Sprintf("\t%v -> %v;\n", state, fix.DestinationState)
			}
			if _, err := io.WriteString(w, line); err != nil {
				return errors.Wrapf(err, "writing edge from %v", state)
			}
		}
	}
	if _, err := io.WriteString(w, "}"); err != nil {
		return errors.Wrap(err, "writing edge list")
	}
	return nil
}

// EdgeList returns the edge list of machineInfo as a string.
func EdgeList(machineInfo *hsm.MachineInfo, labels bool) string {
	var sb strings.Builder
	// strings.Builder never fails.
	_ = WriteEdgeList(&sb, machineInfo, labels)
	return sb.String()
}
