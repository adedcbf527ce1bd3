// Package observe provides hsm.Tracer implementations that report a running
// state machine to slog, Prometheus and OpenTelemetry.
//
// Tracers are installed with StateMachine.SetTracer. Use Multi to install
// more than one:
//
//	metrics := observe.NewMetrics(prometheus.DefaultRegisterer)
//	sm.SetTracer(observe.Multi[State, Trigger](
//		observe.NewSlogTracer[State, Trigger](slog.Default()),
//		observe.NewMetricsTracer[State, Trigger](metrics, "phone"),
//		observe.NewSpanTracer[State, Trigger](ctx, nil),
//	))
package observe
