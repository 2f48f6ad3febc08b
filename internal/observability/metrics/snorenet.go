// Package metrics provides custom Prometheus metrics for the snore-go
// application.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// SnoreNETMetrics contains all Prometheus metrics related to model
// inference.
type SnoreNETMetrics struct {
	PredictionDuration prometheus.Histogram
	PredictionTotal    prometheus.Counter
	PredictionErrors   prometheus.Counter
	ProcessTimeGauge   prometheus.Gauge

	registry *prometheus.Registry
}

// NewSnoreNETMetrics creates a new instance of SnoreNETMetrics and registers
// the metrics with the given registry.
func NewSnoreNETMetrics(registry *prometheus.Registry) (*SnoreNETMetrics, error) {
	m := &SnoreNETMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register SnoreNET metrics: %w", err)
	}
	return m, nil
}

func (m *SnoreNETMetrics) initMetrics() {
	m.PredictionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snorenet_prediction_duration_seconds",
			Help:    "Time taken to extract features and run one model invocation.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10), // 1ms to ~1s
		},
	)
	m.PredictionTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "snorenet_predictions_total",
			Help: "Total number of analysis windows evaluated.",
		},
	)
	m.PredictionErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "snorenet_prediction_errors_total",
			Help: "Total number of windows that failed evaluation and were treated as undetermined.",
		},
	)
	m.ProcessTimeGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "snorenet_processing_time_milliseconds",
			Help: "Most recent processing time for one analysis window in milliseconds.",
		},
	)
}

// Describe implements prometheus.Collector
func (m *SnoreNETMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.PredictionDuration.Describe(ch)
	m.PredictionTotal.Describe(ch)
	m.PredictionErrors.Describe(ch)
	m.ProcessTimeGauge.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *SnoreNETMetrics) Collect(ch chan<- prometheus.Metric) {
	m.PredictionDuration.Collect(ch)
	m.PredictionTotal.Collect(ch)
	m.PredictionErrors.Collect(ch)
	m.ProcessTimeGauge.Collect(ch)
}
