package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/atlekbai/hsm"
	"github.com/atlekbai/hsm/observe"
)

func newRunCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <definition.yaml> [trigger...]",
		Short: "fires a sequence of triggers against a state machine definition",
		Long: `
Starts a machine for the YAML definition, fires its initial transition and
then every trigger given on the command line, in order. Guards hold when they
are named with --guard; dynamic transitions go where --choose says or to their
first declared destination.
`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRun(cmd, args)
		},
	}

	f := cmd.Flags()
	addMachineFlags(c, cmd)
	f.BoolVar(&c.keepGoing, "keep-going", c.keepGoing, usage("keep-going"))
	f.BoolVar(&c.metrics, "metrics", c.metrics, usage("metrics"))
	f.StringVar(&c.otlpEndpoint, "otlp-endpoint", c.otlpEndpoint, usage("otlp-endpoint"))
	return cmd
}

func (c *cliContext) runRun(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reg := prometheus.NewRegistry()
	tracers := []hsm.Tracer[string, string]{
		observe.NewSlogTracer[string, string](c.logger),
		observe.NewMetricsTracer[string, string](observe.NewMetrics(reg), args[0]),
	}

	if c.otlpEndpoint != "" {
		var provider *sdktrace.TracerProvider
		if provider, err = newTracerProvider(ctx, c.otlpEndpoint); err != nil {
			return err
		}
		defer func() {
			err = errors.CombineErrors(err, provider.Shutdown(ctx))
		}()
		tracers = append(tracers, observe.NewSpanTracer[string, string](ctx, provider))
	}

	sm, _, err := c.start(args[0], observe.Multi(tracers...))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var failures []error
	for _, trigger := range args[1:] {
		if fireErr := sm.Fire(trigger); fireErr != nil {
			if !c.keepGoing {
				return fireErr
			}
			failures = append(failures, fireErr)
		}
	}

	fmt.Fprintln(out, sm.String())
	if c.metrics {
		if err := writeMetrics(out, reg); err != nil {
			return err
		}
	}
	if len(failures) > 0 {
		return errors.Newf("%d of %d triggers failed", len(failures), len(args)-1)
	}
	return nil
}

func newTracerProvider(ctx context.Context, endpoint string) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx, resource.WithAttributes(attribute.String("service.name", "hsmctl")))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create resource")
	}
	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create OTLP trace exporter")
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

// writeMetrics prints every sample of reg, one per line, in exposition order.
func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}

			name, value := mf.GetName(), m.GetCounter().GetValue()
			if h := m.GetHistogram(); h != nil {
				name, value = name+"_count", float64(h.GetSampleCount())
			}
			if _, err := fmt.Fprintf(w, "%s{%s} %g\n", name, strings.Join(labels, ","), value); err != nil {
				return errors.Wrap(err, "writing metrics")
			}
		}
	}
	return nil
}
