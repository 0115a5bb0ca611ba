package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPromRecorder(reg)
	require.NoError(t, err)

	rec.RecordFill(FillRun{Source: "api", Assigned: 12, Conflicts: 1, Dropped: 2, Fairness: 87.5, Duration: 30 * time.Millisecond})
	rec.RecordFill(FillRun{Source: "api", Err: errors.New("boom"), Assigned: 99})

	expected := `
# HELP duty_fill_runs_total Total number of fill passes by outcome
# TYPE duty_fill_runs_total counter
duty_fill_runs_total{outcome="error",source="api"} 1
duty_fill_runs_total{outcome="ok",source="api"} 1
`
	require.NoError(t, testutil.CollectAndCompare(rec.runs, strings.NewReader(expected)))
	assert.Equal(t, 12.0, testutil.ToFloat64(rec.assigned.WithLabelValues("api")), "failed runs assign nothing")
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.conflicts.WithLabelValues("api")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.dropped.WithLabelValues("api")))
	assert.Equal(t, 87.5, testutil.ToFloat64(rec.fairness.WithLabelValues("api")))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.duration))
}

func TestPromRecorderReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromRecorder(reg)
	require.NoError(t, err)
	second, err := NewPromRecorder(reg)
	require.NoError(t, err)

	second.RecordFill(FillRun{Source: "cli", Assigned: 3})
	assert.Equal(t, 3.0, testutil.ToFloat64(first.assigned.WithLabelValues("cli")))
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = NopRecorder{}
	r.RecordFill(FillRun{Source: "cli"})
}
