package analysis

import (
	"log/slog"
	"time"

	"github.com/tphakala/snore-go/internal/logging"
	"github.com/tphakala/snore-go/internal/myaudio"
	"github.com/tphakala/snore-go/internal/observability/metrics"
	"github.com/tphakala/snore-go/internal/snorenet"
)

// Result is the outcome of evaluating one analysis window. An undetermined
// result means the classifier failed on this window; it carries probability
// zero so downstream treats it as a negative, never as a positive.
type Result struct {
	WindowSeq    uint64
	Probability  float32
	Undetermined bool
	Elapsed      time.Duration
}

// Detector evaluates analysis windows. Implementations must be safe to call
// from a single goroutine in window order; they need not be concurrency
// safe.
type Detector interface {
	Evaluate(window myaudio.Window) Result
	Reset() error
	Close()
}

// snoreDetector adapts the SnoreNET model to the Detector interface and
// makes it fail closed: any conversion, feature or inference error is
// logged, counted and reported as an undetermined window instead of
// stopping the run.
type snoreDetector struct {
	sn      *snorenet.SnoreNET
	metrics *metrics.SnoreNETMetrics
	log     *slog.Logger
}

// NewDetector wraps an initialized SnoreNET model. The metrics collector
// may be nil when telemetry is disabled.
func NewDetector(sn *snorenet.SnoreNET, m *metrics.SnoreNETMetrics) Detector {
	return &snoreDetector{
		sn:      sn,
		metrics: m,
		log:     logging.Structured().With("service", "detector"),
	}
}

func (d *snoreDetector) Evaluate(window myaudio.Window) Result {
	start := time.Now()

	samples, err := myaudio.PCM16ToFloat32(window.PCM)
	if err != nil {
		return d.undetermined(window.Seq, start, err)
	}

	features, err := d.sn.ExtractFeatures(samples)
	if err != nil {
		return d.undetermined(window.Seq, start, err)
	}

	probability, err := d.sn.Predict(features)
	if err != nil {
		return d.undetermined(window.Seq, start, err)
	}

	elapsed := time.Since(start)
	if d.metrics != nil {
		d.metrics.PredictionTotal.Inc()
		d.metrics.PredictionDuration.Observe(elapsed.Seconds())
		d.metrics.ProcessTimeGauge.Set(float64(elapsed.Milliseconds()))
	}

	return Result{WindowSeq: window.Seq, Probability: probability, Elapsed: elapsed}
}

func (d *snoreDetector) undetermined(seq uint64, start time.Time, err error) Result {
	elapsed := time.Since(start)
	d.log.Warn("Window evaluation failed, treating as undetermined",
		"window_seq", seq, "error", err)
	if d.metrics != nil {
		d.metrics.PredictionTotal.Inc()
		d.metrics.PredictionErrors.Inc()
	}
	return Result{WindowSeq: seq, Undetermined: true, Elapsed: elapsed}
}

func (d *snoreDetector) Reset() error {
	return d.sn.Reset()
}

func (d *snoreDetector) Close() {
	d.sn.Delete()
}
