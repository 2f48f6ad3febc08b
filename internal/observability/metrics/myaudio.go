package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// MyAudioMetrics contains Prometheus metrics for audio capture and
// windowing.
type MyAudioMetrics struct {
	ChunksCapturedTotal prometheus.Counter
	ChunksDroppedTotal  prometheus.Counter
	WindowsEmittedTotal prometheus.Counter
	QueueFillGauge      prometheus.Gauge

	registry *prometheus.Registry
}

// NewMyAudioMetrics creates a new instance of MyAudioMetrics and registers
// the metrics with the given registry.
func NewMyAudioMetrics(registry *prometheus.Registry) (*MyAudioMetrics, error) {
	m := &MyAudioMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register myaudio metrics: %w", err)
	}
	return m, nil
}

func (m *MyAudioMetrics) initMetrics() {
	m.ChunksCapturedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "myaudio_chunks_captured_total",
			Help: "Total number of audio chunks delivered by the capture device.",
		},
	)
	m.ChunksDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "myaudio_chunks_dropped_total",
			Help: "Total number of unprocessed chunks evicted because processing fell behind real time.",
		},
	)
	m.WindowsEmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "myaudio_windows_emitted_total",
			Help: "Total number of analysis windows assembled from the chunk stream.",
		},
	)
	m.QueueFillGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "myaudio_queue_fill_chunks",
			Help: "Number of chunks currently waiting in the capture hand-off queue.",
		},
	)
}

// Describe implements prometheus.Collector
func (m *MyAudioMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.ChunksCapturedTotal.Describe(ch)
	m.ChunksDroppedTotal.Describe(ch)
	m.WindowsEmittedTotal.Describe(ch)
	m.QueueFillGauge.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *MyAudioMetrics) Collect(ch chan<- prometheus.Metric) {
	m.ChunksCapturedTotal.Collect(ch)
	m.ChunksDroppedTotal.Collect(ch)
	m.WindowsEmittedTotal.Collect(ch)
	m.QueueFillGauge.Collect(ch)
}
