package observe

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/atlekbai/hsm"
)

// Metrics holds the Prometheus collectors shared by every MetricsTracer
// created from it.
type Metrics struct {
	// Triggers counts fired triggers by machine, trigger and outcome.
	Triggers *prometheus.CounterVec

	// Transitions counts executed transitions by machine, source, destination
	// and kind (initial, reentry or transition).
	Transitions *prometheus.CounterVec

	// FireDuration observes how long each Fire took by machine and outcome.
	FireDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Triggers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hsm_triggers_total",
			Help: "Total number of fired triggers by machine, trigger and outcome (success or error)",
		}, []string{"machine", "trigger", "outcome"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hsm_transitions_total",
			Help: "Total number of executed transitions by machine, from_state, to_state and kind",
		}, []string{"machine", "from_state", "to_state", "kind"}),
		FireDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hsm_fire_duration_seconds",
			Help:    "Duration of Fire by machine and outcome",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"machine", "outcome"}),
	}
}

// MetricsTracer records the activity of one machine into Metrics.
type MetricsTracer[TState, TTrigger comparable] struct {
	metrics *Metrics
	machine string
	now     func() time.Time

	// started holds the start time of every Fire in progress; nested fires
	// from entry actions push on top.
	started []time.Time
}

// NewMetricsTracer creates a tracer labelling its samples with machine.
func NewMetricsTracer[TState, TTrigger comparable](metrics *Metrics, machine string) *MetricsTracer[TState, TTrigger] {
	return &MetricsTracer[TState, TTrigger]{
		metrics: metrics,
		machine: sanitizeMachine(machine),
		now:     time.Now,
	}
}

func (t *MetricsTracer[TState, TTrigger]) Trigger(TTrigger) {
	t.started = append(t.started, t.now())
}

func (t *MetricsTracer[TState, TTrigger]) Transition(transition hsm.Transition[TState, TTrigger]) {
	from := ""
	if !transition.IsInitial() {
		from = fmt.Sprint(transition.Source)
	}
	t.metrics.Transitions.WithLabelValues(
		t.machine,
		from,
		fmt.Sprint(transition.Destination),
		transitionKind(transition),
	).Inc()
}

func (t *MetricsTracer[TState, TTrigger]) Completed(trigger TTrigger, err error) {
	outcome := outcomeOf(err)
	t.metrics.Triggers.WithLabelValues(t.machine, fmt.Sprint(trigger), outcome).Inc()

	if n := len(t.started); n > 0 {
		start := t.started[n-1]
		t.started = t.started[:n-1]
		t.metrics.FireDuration.WithLabelValues(t.machine, outcome).Observe(t.now().Sub(start).Seconds())
	}
}

func transitionKind[TState, TTrigger comparable](transition hsm.Transition[TState, TTrigger]) string {
	switch {
	case transition.IsInitial():
		return "initial"
	case transition.IsReentry():
		return "reentry"
	default:
		return "transition"
	}
}

func outcomeOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func sanitizeMachine(machine string) string {
	if machine == "" {
		return "unknown"
	}
	return machine
}
