package cli

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/atlekbai/hsm"
	"github.com/atlekbai/hsm/definition"
	"github.com/atlekbai/hsm/graph"
)

func newGraphCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <definition.yaml>",
		Short: "renders a state machine definition as a graph",
		Long: `
Renders the topology declared in a YAML definition as a UML DOT graph, a
Mermaid state diagram or a plain edge list.
`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&c.format, "format", c.format, usage("format"))
	f.BoolVar(&c.labels, "labels", c.labels, usage("labels"))
	f.StringVar(&c.direction, "direction", c.direction, usage("direction"))
	f.StringVarP(&c.output, "output", "o", c.output, usage("output"))
	return cmd
}

func (c *cliContext) runGraph(cmd *cobra.Command, args []string) error {
	doc, err := definition.LoadFile(args[0])
	if err != nil {
		return err
	}
	topology, err := definition.Build(doc, registryFor(doc))
	if err != nil {
		return err
	}
	info := topology.Info(doc.Initial)

	var out io.Writer = cmd.OutOrStdout()
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			return errors.Wrap(err, "creating output file")
		}
		defer file.Close()
		out = file
	}

	if err := c.render(out, info); err != nil {
		return err
	}
	c.logger.Debug("Graph rendered", "definition", args[0], "format", c.format, "states", len(info.States))
	return nil
}

func (c *cliContext) render(w io.Writer, info *hsm.MachineInfo) error {
	var text string
	switch strings.ToLower(c.format) {
	case "dot":
		text = graph.UmlDotGraph(info)
	case "mermaid":
		direction, err := parseDirection(c.direction)
		if err != nil {
			return err
		}
		text = graph.MermaidGraph(info, direction)
	case "edges":
		return graph.WriteEdgeList(w, info, c.labels)
	default:
		return errors.Newf("unknown --format %q: expected dot, mermaid or edges", c.format)
	}
	_, err := io.WriteString(w, text)
	return errors.Wrap(err, "writing graph")
}

func parseDirection(s string) (*graph.MermaidGraphDirection, error) {
	var d graph.MermaidGraphDirection
	switch strings.ToUpper(s) {
	case "":
		return nil, nil
	case "TB":
		d = graph.TopToBottom
	case "BT":
		d = graph.BottomToTop
	case "LR":
		d = graph.LeftToRight
	case "RL":
		d = graph.RightToLeft
	default:
		return nil, errors.Newf("unknown --direction %q: expected TB, BT, LR or RL", s)
	}
	return &d, nil
}
