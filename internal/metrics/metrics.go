// Package metrics exposes Prometheus instrumentation for uploads and procedures.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeOK     = "ok"
	OutcomeCached = "cached"
	OutcomeError  = "error"
)

// Metrics holds the collectors registered on a private registry
type Metrics struct {
	registry *prometheus.Registry

	procedures     *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	uploads        *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

// New creates and registers the dashboard collectors plus the Go and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		procedures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statdash_procedures_total",
				Help: "Statistical procedures run, by procedure and outcome.",
			},
			[]string{"procedure", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statdash_procedure_duration_seconds",
				Help:    "Time spent computing a procedure.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"procedure"},
		),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statdash_uploads_total",
				Help: "File uploads, by outcome.",
			},
			[]string{"outcome"},
		),
		activeSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "statdash_active_sessions",
				Help: "Sessions currently held in memory.",
			},
		),
	}

	m.registry.MustRegister(
		m.procedures,
		m.duration,
		m.uploads,
		m.activeSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveProcedure records one procedure run
func (m *Metrics) ObserveProcedure(procedure, outcome string, elapsed time.Duration) {
	m.procedures.WithLabelValues(procedure, outcome).Inc()
	if outcome == OutcomeOK {
		m.duration.WithLabelValues(procedure).Observe(elapsed.Seconds())
	}
}

// ObserveUpload records one upload attempt
func (m *Metrics) ObserveUpload(outcome string) {
	m.uploads.WithLabelValues(outcome).Inc()
}

// SetActiveSessions sets the live session gauge
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
