// Package cli implements hsmctl, a command-line tool for state machine
// definitions written in YAML.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

func newRootCmd(c *cliContext) *cobra.Command {
	root := &cobra.Command{
		Use:   "hsmctl",
		Short: "hierarchical state machine tool",
		Long: `
hsmctl renders, runs and explores hierarchical state machines declared in
YAML definitions.
`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setupLogger(cmd.ErrOrStderr())
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&c.logLevel, "log-level", c.logLevel, usage("log-level"))
	f.StringVar(&c.logFormat, "log-format", c.logFormat, usage("log-format"))

	root.AddCommand(
		newGraphCmd(c),
		newRunCmd(c),
		newInteractiveCmd(c),
	)
	return root
}

// Run executes hsmctl with args, writing output to stdout and logs to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(newCLIContext())
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}
