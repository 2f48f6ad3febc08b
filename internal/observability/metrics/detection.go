package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// DetectionMetrics contains Prometheus metrics for the alert state machine
// and actuation path.
type DetectionMetrics struct {
	AlertsRaisedTotal       prometheus.Counter
	AlertsClearedTotal      prometheus.Counter
	ConsecutiveHitsGauge    prometheus.Gauge
	ActivationsTotal        prometheus.Counter
	ActivationFailuresTotal prometheus.Counter
	ActuatorDegradedGauge   prometheus.Gauge

	registry *prometheus.Registry
}

// NewDetectionMetrics creates a new instance of DetectionMetrics and
// registers the metrics with the given registry.
func NewDetectionMetrics(registry *prometheus.Registry) (*DetectionMetrics, error) {
	m := &DetectionMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register detection metrics: %w", err)
	}
	return m, nil
}

func (m *DetectionMetrics) initMetrics() {
	m.AlertsRaisedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "detection_alerts_raised_total",
			Help: "Total number of debounced snore alerts raised.",
		},
	)
	m.AlertsClearedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "detection_alerts_cleared_total",
			Help: "Total number of snore alerts cleared.",
		},
	)
	m.ConsecutiveHitsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "detection_consecutive_hits",
			Help: "Current consecutive positive-window count of the alert state machine.",
		},
	)
	m.ActivationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "actuator_activations_total",
			Help: "Total number of actuation commands dispatched.",
		},
	)
	m.ActivationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "actuator_activation_failures_total",
			Help: "Total number of actuation commands that failed.",
		},
	)
	m.ActuatorDegradedGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "actuator_degraded",
			Help: "1 when the actuator has degraded to the simulated backend.",
		},
	)
}

// Describe implements prometheus.Collector
func (m *DetectionMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.AlertsRaisedTotal.Describe(ch)
	m.AlertsClearedTotal.Describe(ch)
	m.ConsecutiveHitsGauge.Describe(ch)
	m.ActivationsTotal.Describe(ch)
	m.ActivationFailuresTotal.Describe(ch)
	m.ActuatorDegradedGauge.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *DetectionMetrics) Collect(ch chan<- prometheus.Metric) {
	m.AlertsRaisedTotal.Collect(ch)
	m.AlertsClearedTotal.Collect(ch)
	m.ConsecutiveHitsGauge.Collect(ch)
	m.ActivationsTotal.Collect(ch)
	m.ActivationFailuresTotal.Collect(ch)
	m.ActuatorDegradedGauge.Collect(ch)
}
