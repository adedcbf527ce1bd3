package cli

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/atlekbai/hsm/observe"
)

const (
	toggleItem = "[toggle guard]"
	quitItem   = "[quit]"
)

// prompter asks the user to pick one of items.
type prompter interface {
	Select(label string, items []string) (int, string, error)
}

type promptuiPrompter struct{}

func (promptuiPrompter) Select(label string, items []string) (int, string, error) {
	sel := &promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
		Searcher: func(input string, index int) bool {
			return strings.HasPrefix(strings.ToLower(items[index]), strings.ToLower(input))
		},
	}
	return sel.Run()
}

func newInteractiveCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive <definition.yaml>",
		Short: "steps through a state machine definition by picking triggers",
		Long: `
Starts a machine for the YAML definition and repeatedly offers the triggers
permitted in the current state. Guards can be switched on and off from the
menu; dynamic transitions ask for their destination.
`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInteractive(cmd, args)
		},
	}
	addMachineFlags(c, cmd)
	return cmd
}

func (c *cliContext) runInteractive(cmd *cobra.Command, args []string) error {
	sm, doc, err := c.start(args[0], observe.NewSlogTracer[string, string](c.logger))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	s := sm.Context()
	s.choose = func(selector string, options []string) string {
		if choice, ok := c.choices[selector]; ok {
			return choice
		}
		if len(options) == 0 {
			return ""
		}
		_, choice, err := c.prompter.Select(fmt.Sprintf("Destination chosen by %s", selector), options)
		if err != nil {
			c.logger.Warn("No destination chosen", "selector", selector, "error", err)
			return ""
		}
		return choice
	}
	guards := doc.References().Guards

	for {
		items := sm.PermittedTriggers()
		if len(guards) > 0 {
			items = append(items, toggleItem)
		}
		items = append(items, quitItem)

		_, choice, err := c.prompter.Select(fmt.Sprintf("State: %s", sm.State()), items)
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				break
			}
			return errors.Wrap(err, "prompt failed")
		}

		switch choice {
		case quitItem:
			fmt.Fprintln(out, sm.String())
			return nil
		case toggleItem:
			if err := c.toggleGuard(s, guards); err != nil {
				return err
			}
		default:
			if err := sm.Fire(choice); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
	}

	fmt.Fprintln(out, sm.String())
	return nil
}

func (c *cliContext) toggleGuard(s *session, guards []string) error {
	items := make([]string, len(guards))
	for i, g := range guards {
		items[i] = fmt.Sprintf("%s (%t)", g, s.guards[g])
	}
	idx, _, err := c.prompter.Select("Toggle guard", items)
	if err != nil {
		return errors.Wrap(err, "prompt failed")
	}
	g := guards[idx]
	s.guards[g] = !s.guards[g]
	c.logger.Info("Guard toggled", "guard", g, "holds", s.guards[g])
	return nil
}
