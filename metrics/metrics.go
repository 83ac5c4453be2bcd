// Package metrics exposes Prometheus instrumentation for the analysis
// pipeline. A nil *Metrics is a valid no-op recorder, so callers never have
// to guard their recording sites.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lexguard"

// Metrics holds the pipeline metric series
type Metrics struct {
	analysesTotal      *prometheus.CounterVec
	analysisIterations prometheus.Histogram
	checksTotal        *prometheus.CounterVec
	completionSeconds  prometheus.Histogram
	completionErrors   prometheus.Counter
}

// New registers the pipeline metrics on the default registerer
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the pipeline metrics on reg
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		analysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "completed_total",
			Help:      "Completed analyses by final status.",
		}, []string{"status"}),
		analysisIterations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "iterations",
			Help:      "Drafting attempts used per analysis.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
		checksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "checks_total",
			Help:      "Validation check outcomes by category and result.",
		}, []string{"category", "result"}),
		completionSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "completion",
			Name:      "duration_seconds",
			Help:      "Latency of completion calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		completionErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "completion",
			Name:      "errors_total",
			Help:      "Failed completion calls.",
		}),
	}
}

// RecordAnalysis records one finished analysis
func (m *Metrics) RecordAnalysis(status string, iterations int) {
	if m == nil {
		return
	}
	m.analysesTotal.WithLabelValues(status).Inc()
	m.analysisIterations.Observe(float64(iterations))
}

// RecordCheck records one validation check outcome
func (m *Metrics) RecordCheck(category, result string) {
	if m == nil {
		return
	}
	m.checksTotal.WithLabelValues(category, result).Inc()
}

// RecordCompletion records the latency and outcome of one completion call
func (m *Metrics) RecordCompletion(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.completionSeconds.Observe(d.Seconds())
	if err != nil {
		m.completionErrors.Inc()
	}
}
