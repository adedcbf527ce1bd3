package cli

import "github.com/spf13/cobra"

var flagUsage = map[string]string{
	"log-level":     "minimum level of log records: debug, info, warn or error",
	"log-format":    "format of log records: text or json",
	"format":        "graph format: dot, mermaid or edges",
	"labels":        "label edges with their trigger (edges format only)",
	"direction":     "Mermaid direction: TB, BT, LR or RL",
	"output":        "write the graph to a file instead of stdout",
	"initial":       "start in this state instead of the definition's initial state",
	"guard":         "name of a guard that holds; may be repeated",
	"choose":        "destination of a dynamic transition, as selector=state; may be repeated",
	"keep-going":    "keep firing after a trigger fails",
	"metrics":       "print trigger and transition counters after the run",
	"otlp-endpoint": "export fire spans to this OTLP/HTTP endpoint URL",
}

func usage(name string) string {
	return flagUsage[name]
}

// addMachineFlags adds the flags shared by commands that run a machine.
func addMachineFlags(c *cliContext, cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&c.initial, "initial", c.initial, usage("initial"))
	f.StringSliceVar(&c.guards, "guard", c.guards, usage("guard"))
	f.StringToStringVar(&c.choices, "choose", c.choices, usage("choose"))
}
