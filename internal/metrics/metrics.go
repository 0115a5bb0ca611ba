package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FillRun describes one fill pass for observability purposes.
type FillRun struct {
	Source    string // "cli" or "api"
	Err       error
	Assigned  int
	Conflicts int
	Dropped   int
	Fairness  float64
	Duration  time.Duration
}

// Recorder records fill passes.
type Recorder interface {
	RecordFill(run FillRun)
}

// NopRecorder implements Recorder with no-op methods.
type NopRecorder struct{}

func (NopRecorder) RecordFill(FillRun) {}

// PromRecorder records fill passes in Prometheus metrics.
type PromRecorder struct {
	runs      *prometheus.CounterVec
	assigned  *prometheus.CounterVec
	conflicts *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	fairness  *prometheus.GaugeVec
}

// NewPromRecorder registers fill metrics on the provided registerer. If reg
// is nil, the default registerer is used. Collectors that are already
// registered are reused.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PromRecorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "duty_fill_runs_total",
			Help: "Total number of fill passes by outcome",
		}, []string{"source", "outcome"}),
		assigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "duty_students_assigned_total",
			Help: "Students newly assigned to duties",
		}, []string{"source"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "duty_conflicts_total",
			Help: "Duties left short of their target",
		}, []string{"source"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "duty_dropped_assignments_total",
			Help: "Stale assignments dropped while parsing an arrangement",
		}, []string{"source"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "duty_fill_duration_seconds",
			Help:    "Time spent in a fill pass",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		fairness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "duty_fairness_score",
			Help: "Fairness score of the last successful fill pass",
		}, []string{"source"}),
	}
	var err error
	if r.runs, err = register(reg, r.runs); err != nil {
		return nil, err
	}
	if r.assigned, err = register(reg, r.assigned); err != nil {
		return nil, err
	}
	if r.conflicts, err = register(reg, r.conflicts); err != nil {
		return nil, err
	}
	if r.dropped, err = register(reg, r.dropped); err != nil {
		return nil, err
	}
	if r.duration, err = register(reg, r.duration); err != nil {
		return nil, err
	}
	if r.fairness, err = register(reg, r.fairness); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordFill updates the counters for one fill pass.
func (r *PromRecorder) RecordFill(run FillRun) {
	outcome := "ok"
	if run.Err != nil {
		outcome = "error"
	}
	r.runs.WithLabelValues(run.Source, outcome).Inc()
	r.duration.WithLabelValues(run.Source).Observe(run.Duration.Seconds())
	if run.Err != nil {
		return
	}
	r.assigned.WithLabelValues(run.Source).Add(float64(run.Assigned))
	r.conflicts.WithLabelValues(run.Source).Add(float64(run.Conflicts))
	r.dropped.WithLabelValues(run.Source).Add(float64(run.Dropped))
	r.fairness.WithLabelValues(run.Source).Set(run.Fairness)
}
