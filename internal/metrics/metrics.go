// Package metrics provides Prometheus metrics for link extraction.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "linkmeta"

// Outcome labels for extractions.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeFetch      = "fetch"
	OutcomeTimeout    = "timeout"
	OutcomeParse      = "parse"
	OutcomeInternal   = "internal"
)

// Metrics groups the collectors registered by New.
type Metrics struct {
	ExtractionsTotal   *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram
	EventsTotal        *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ExtractionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extractions_total",
				Help:      "Total number of metadata extractions by outcome",
			},
			[]string{"outcome"},
		),
		ExtractionDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "extraction_duration_seconds",
				Help:      "Duration of metadata extractions in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		EventsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Extraction events by status (published, failed, dropped, duplicate)",
			},
			[]string{"status"},
		),
	}
}

// RecordExtraction records one extraction and its latency.
func (m *Metrics) RecordExtraction(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ExtractionsTotal.WithLabelValues(outcome).Inc()
	m.ExtractionDuration.Observe(elapsed.Seconds())
}

// RecordEvent counts an extraction event by status.
func (m *Metrics) RecordEvent(status string) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(status).Inc()
}
