package observe

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/atlekbai/hsm"
)

const instrumentationName = "github.com/atlekbai/hsm/observe"

// Span names.
const (
	FireSpanName    = "hsm.fire"
	InitialSpanName = "hsm.initial"
)

// SpanTracer records one span per Fire. The span is a child of the context
// the tracer was created with, or of the enclosing fire span for triggers
// fired from within an action.
type SpanTracer[TState, TTrigger comparable] struct {
	ctx       context.Context
	tracer    trace.Tracer
	machineID string

	// active holds the spans of the fires in progress, innermost last.
	active []activeSpan
}

type activeSpan struct {
	ctx  context.Context
	span trace.Span
}

// NewSpanTracer creates a tracer that starts its spans under ctx using
// provider. A nil provider uses the global one.
func NewSpanTracer[TState, TTrigger comparable](ctx context.Context, provider trace.TracerProvider) *SpanTracer[TState, TTrigger] {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &SpanTracer[TState, TTrigger]{
		ctx:       ctx,
		tracer:    provider.Tracer(instrumentationName),
		machineID: uuid.NewString(),
	}
}

// MachineID returns the value of the hsm.machine_id attribute.
func (t *SpanTracer[TState, TTrigger]) MachineID() string {
	return t.machineID
}

func (t *SpanTracer[TState, TTrigger]) parent() context.Context {
	if n := len(t.active); n > 0 {
		return t.active[n-1].ctx
	}
	return t.ctx
}

func (t *SpanTracer[TState, TTrigger]) Trigger(trigger TTrigger) {
	//nolint:spancheck // ended in Completed
	ctx, span := t.tracer.Start(t.parent(), FireSpanName, trace.WithAttributes(
		attribute.String("hsm.machine_id", t.machineID),
		attribute.String("hsm.trigger", fmt.Sprint(trigger)),
	))
	t.active = append(t.active, activeSpan{ctx: ctx, span: span})
}

func (t *SpanTracer[TState, TTrigger]) Transition(transition hsm.Transition[TState, TTrigger]) {
	if transition.IsInitial() {
		_, span := t.tracer.Start(t.parent(), InitialSpanName, trace.WithAttributes(
			attribute.String("hsm.machine_id", t.machineID),
			attribute.String("hsm.to", fmt.Sprint(transition.Destination)),
		))
		span.SetStatus(codes.Ok, "")
		span.End()
		return
	}

	n := len(t.active)
	if n == 0 {
		return
	}
	t.active[n-1].span.SetAttributes(
		attribute.String("hsm.from", fmt.Sprint(transition.Source)),
		attribute.String("hsm.to", fmt.Sprint(transition.Destination)),
		attribute.Bool("hsm.reentry", transition.IsReentry()),
	)
}

func (t *SpanTracer[TState, TTrigger]) Completed(_ TTrigger, err error) {
	n := len(t.active)
	if n == 0 {
		return
	}
	span := t.active[n-1].span
	t.active = t.active[:n-1]

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
