package observe_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/hsm/observe"
)

func TestMetricsTracer(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics := observe.NewMetrics(reg)

	sm := door(t)
	sm.SetTracer(observe.NewMetricsTracer[string, string](metrics, "door"))

	require.NoError(t, sm.FireInitialTransition())
	require.NoError(t, sm.Fire("knock"))
	require.NoError(t, sm.Fire("peek"))
	require.NoError(t, sm.Fire("open"))
	require.Error(t, sm.Fire("open"))

	transitions := metrics.Transitions
	assert.InDelta(t, 1, testutil.ToFloat64(transitions.WithLabelValues("door", "", "closed", "initial")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(transitions.WithLabelValues("door", "closed", "closed", "reentry")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(transitions.WithLabelValues("door", "closed", "opened", "transition")), 0)
	assert.Equal(t, 3, testutil.CollectAndCount(transitions))

	triggers := metrics.Triggers
	assert.InDelta(t, 1, testutil.ToFloat64(triggers.WithLabelValues("door", "peek", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(triggers.WithLabelValues("door", "open", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(triggers.WithLabelValues("door", "open", "error")), 0)

	count, err := testutil.GatherAndCount(reg, "hsm_fire_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetricsTracer_NestedFire(t *testing.T) {
	t.Parallel()

	metrics := observe.NewMetrics(nil)
	sm := door(t)
	sm.SetTracer(observe.NewMetricsTracer[string, string](metrics, ""))

	require.NoError(t, sm.Fire("ring"))
	assert.Equal(t, "opened", sm.State())

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Triggers.WithLabelValues("unknown", "ring", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Triggers.WithLabelValues("unknown", "answer", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Transitions.WithLabelValues("unknown", "ringing", "opened", "transition")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.FireDuration))
}

func TestNewMetrics_RegistersCollectors(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	observe.NewMetrics(reg)

	assert.Panics(t, func() { observe.NewMetrics(reg) })
}
