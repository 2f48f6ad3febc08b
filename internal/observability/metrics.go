// Package observability provides Prometheus metrics functionality for
// monitoring the snore-go application.
package observability

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tphakala/snore-go/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry  *prometheus.Registry
	SnoreNET  *metrics.SnoreNETMetrics
	MyAudio   *metrics.MyAudioMetrics
	Detection *metrics.DetectionMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric
// collectors. It returns an error if any metric collector fails to
// initialize.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	snorenetMetrics, err := metrics.NewSnoreNETMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create SnoreNET metrics: %w", err)
	}

	myAudioMetrics, err := metrics.NewMyAudioMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create myaudio metrics: %w", err)
	}

	detectionMetrics, err := metrics.NewDetectionMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create detection metrics: %w", err)
	}

	return &Metrics{
		registry:  registry,
		SnoreNET:  snorenetMetrics,
		MyAudio:   myAudioMetrics,
		Detection: detectionMetrics,
	}, nil
}

// RegisterHandlers registers the metrics endpoint with the provided http.ServeMux.
func (m *Metrics) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/metrics", m.metricsHandler)
}

// metricsHandler is the HTTP handler for the /metrics endpoint.
func (m *Metrics) metricsHandler(w http.ResponseWriter, r *http.Request) {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
	h.ServeHTTP(w, r)
}
