// Package monitoring exposes Prometheus metrics for the clone pipeline.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// is valid and records nothing, which keeps tests free of registry state.
type Metrics struct {
	RunsTotal     prometheus.Counter
	FailuresTotal *prometheus.CounterVec
	RunDuration   prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "siteclone_runs_total",
			Help: "The total number of pipeline runs started",
		}),
		FailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "siteclone_failures_total",
			Help: "The total number of failed pipeline stages",
		}, []string{"stage"}), // 'capture' or 'reconstruct'
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "siteclone_run_duration_seconds",
			Help:    "End-to-end duration of successful pipeline runs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

func (m *Metrics) IncRunsTotal() {
	if m == nil {
		return
	}
	m.RunsTotal.Inc()
}

func (m *Metrics) IncFailuresTotal(stage string) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(stage).Inc()
}

func (m *Metrics) ObserveRunDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(d.Seconds())
}
