package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
)

// cliContext holds the flag values of one invocation.
type cliContext struct {
	logLevel  string
	logFormat string

	// graph
	format    string
	labels    bool
	direction string
	output    string

	// run and interactive
	initial      string
	guards       []string
	choices      map[string]string
	keepGoing    bool
	metrics      bool
	otlpEndpoint string

	logger   *slog.Logger
	prompter prompter
}

func newCLIContext() *cliContext {
	return &cliContext{
		logLevel:  "info",
		logFormat: "text",
		format:    "dot",
		choices:   map[string]string{},
		prompter:  promptuiPrompter{},
	}
}

// setupLogger builds the logger used by commands, writing to w.
func (c *cliContext) setupLogger(w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.logLevel)); err != nil {
		return errors.Wrapf(err, "invalid --log-level %q", c.logLevel)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.logFormat) {
	case "text":
		c.logger = slog.New(slog.NewTextHandler(w, opts))
	case "json":
		c.logger = slog.New(slog.NewJSONHandler(w, opts))
	default:
		return errors.Newf("invalid --log-format %q: expected text or json", c.logFormat)
	}
	return nil
}
