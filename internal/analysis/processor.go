package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tphakala/snore-go/internal/actuator"
	"github.com/tphakala/snore-go/internal/alert"
	"github.com/tphakala/snore-go/internal/conf"
	"github.com/tphakala/snore-go/internal/logging"
	"github.com/tphakala/snore-go/internal/myaudio"
	"github.com/tphakala/snore-go/internal/observability"
)

// activationGrace pads the actuation context beyond the pulse duration so
// slow hardware still completes before the context expires.
const activationGrace = 2 * time.Second

// Processor drives the per-window detection path: classifier, alert state
// machine and actuation dispatch. It must see every window exactly once, in
// order, from a single goroutine; only the actuation runs asynchronously.
type Processor struct {
	settings *conf.Settings
	detector Detector
	sm       *alert.StateMachine
	act      actuator.Controller
	metrics  *observability.Metrics

	log          *slog.Logger
	detectionLog *slog.Logger

	// inFlight caps concurrent activations at one; an alert raised while a
	// pulse is still running is recorded but not re-actuated.
	inFlight chan struct{}
	wg       sync.WaitGroup

	now func() time.Time
}

// NewProcessor wires a detector, a fresh alert state machine and an
// actuator together. Metrics may be nil when telemetry is disabled,
// detectionLog may be nil when the detection log is disabled.
func NewProcessor(settings *conf.Settings, detector Detector, act actuator.Controller, m *observability.Metrics, detectionLog *slog.Logger) *Processor {
	return &Processor{
		settings:     settings,
		detector:     detector,
		sm:           alert.New(settings.SnoreNET.Threshold, settings.SnoreNET.MinSnoreCount),
		act:          act,
		metrics:      m,
		log:          logging.Structured().With("service", "processor"),
		detectionLog: detectionLog,
		inFlight:     make(chan struct{}, 1),
		now:          time.Now,
	}
}

// ProcessWindow evaluates one window and applies the alert transition.
// Returns the emitted alert event, if any.
func (p *Processor) ProcessWindow(window myaudio.Window) (alert.Event, bool) {
	res := p.detector.Evaluate(window)

	event, emitted := p.sm.Transition(res.WindowSeq, res.Probability)
	p.reportWindow(&res)

	if emitted {
		switch event.Type {
		case alert.AlertRaised:
			p.log.Info("Snore alert raised",
				"alert_id", event.ID.String(),
				"window_seq", event.WindowSeq,
				"probability", event.Probability,
				"consecutive_hits", event.Hits)
			if p.metrics != nil {
				p.metrics.Detection.AlertsRaisedTotal.Inc()
			}
			p.dispatchActivation(event)
		case alert.AlertCleared:
			p.log.Info("Snore alert cleared",
				"alert_id", event.ID.String(),
				"window_seq", event.WindowSeq,
				"probability", event.Probability)
			if p.metrics != nil {
				p.metrics.Detection.AlertsClearedTotal.Inc()
			}
		}
	}

	if p.metrics != nil {
		p.metrics.Detection.ConsecutiveHitsGauge.Set(float64(p.sm.Hits()))
	}

	return event, emitted
}

// reportWindow writes the per-window status line to the console and, when
// enabled, the detection log.
func (p *Processor) reportWindow(res *Result) {
	status := p.windowStatus(res)
	fmt.Println(p.statusLine(res, status))

	if p.detectionLog != nil {
		p.detectionLog.Info("window",
			"seq", res.WindowSeq,
			"probability", res.Probability,
			"status", status,
			"state", p.sm.State().String(),
			"hits", p.sm.Hits())
	}
}

// windowStatus describes the window outcome after the alert transition.
func (p *Processor) windowStatus(res *Result) string {
	switch {
	case res.Undetermined:
		return "undetermined"
	case p.sm.IsAlerting():
		return "snoring"
	case p.sm.Hits() > 0:
		return "possible snoring"
	default:
		return "quiet"
	}
}

// statusLine renders one console line per window: wall clock time, window
// sequence, status, probability and the consecutive-hit counter against the
// alert minimum.
func (p *Processor) statusLine(res *Result, status string) string {
	line := fmt.Sprintf("[%s] window %d: %s (p=%.2f, hits %d/%d)",
		p.now().Format("15:04:05"), res.WindowSeq, status, res.Probability,
		p.sm.Hits(), p.settings.SnoreNET.MinSnoreCount)
	if p.settings.Realtime.ProcessingTime {
		line += fmt.Sprintf(" [%s]", res.Elapsed)
	}
	return line
}

// dispatchActivation fires the configured pulse without blocking the
// processing flow. At most one activation is in flight; failures are
// reported and counted but never stop the run.
func (p *Processor) dispatchActivation(event alert.Event) {
	select {
	case p.inFlight <- struct{}{}:
	default:
		p.log.Warn("Actuation already in flight, skipping pulse", "alert_id", event.ID.String())
		return
	}

	cmd := actuator.Command{
		Intensity: p.settings.Actuator.Intensity,
		Duration:  time.Duration(p.settings.Actuator.Duration * float64(time.Second)),
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() { <-p.inFlight }()

		ctx, cancel := context.WithTimeout(context.Background(), cmd.Duration+activationGrace)
		defer cancel()

		if p.metrics != nil {
			p.metrics.Detection.ActivationsTotal.Inc()
		}
		if err := p.act.Activate(ctx, cmd); err != nil {
			p.log.Warn("Actuation failed", "alert_id", event.ID.String(), "error", err)
			if p.metrics != nil {
				p.metrics.Detection.ActivationFailuresTotal.Inc()
				if d, ok := p.act.(*actuator.Degrading); ok && d.Degraded() {
					p.metrics.Detection.ActuatorDegradedGauge.Set(1)
				}
			}
		}
	}()
}

// Wait blocks until any in-flight actuation has finished.
func (p *Processor) Wait() {
	p.wg.Wait()
}

// State exposes the alert state machine for status reporting.
func (p *Processor) State() *alert.StateMachine {
	return p.sm
}
