// Package actuator drives the vibration device that delivers the wake-up
// nudge. Backends form a closed set selected once at startup: a Raspberry
// Pi GPIO pin, an Arduino behind a serial port, or a simulated controller
// for development. Repeated hardware failures degrade a run to the
// simulated backend instead of aborting it.
package actuator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tphakala/snore-go/internal/conf"
	"github.com/tphakala/snore-go/internal/errors"
	"github.com/tphakala/snore-go/internal/logging"
)

// maxConsecutiveFailures is the degradation threshold: this many Activate
// failures in a row on a hardware backend swap the run to simulated.
const maxConsecutiveFailures = 3

// Command is a single timed activation pulse. Constructed on an alert
// transition and consumed exactly once.
type Command struct {
	Intensity float64       // 0.0 to 1.0
	Duration  time.Duration // pulse length, must be positive
}

// Validate checks the command ranges.
func (c Command) Validate() error {
	if c.Intensity < 0 || c.Intensity > 1 {
		return errors.Newf("actuation intensity must be between 0 and 1: %f", c.Intensity).
			Component("actuator").
			Category(errors.CategoryValidation).
			Build()
	}
	if c.Duration <= 0 {
		return errors.Newf("actuation duration must be positive: %s", c.Duration).
			Component("actuator").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// Controller is the capability set every backend implements. A Controller
// owns its hardware handle; access is serialized by the Degrading wrapper,
// concurrent Activate calls are never issued.
type Controller interface {
	// Name identifies the backend in logs.
	Name() string
	// HealthCheck reports whether the backend is currently usable.
	HealthCheck() error
	// Activate executes one timed pulse. The context bounds the whole
	// operation; on expiry the backend must leave the hardware idle.
	Activate(ctx context.Context, cmd Command) error
	// Close releases the hardware handle.
	Close() error
}

// New selects a backend per the configured controller type and wraps it in
// the degradation logic. Selection happens at startup only; there is no
// runtime re-probing.
func New(settings *conf.Settings) (*Degrading, error) {
	log := logging.Structured().With("service", "actuator")

	var inner Controller
	var err error

	switch settings.Actuator.Controller {
	case conf.ControllerSimulated:
		inner = NewSimulated()
	case conf.ControllerRaspberryPi:
		inner, err = newGPIO(settings.Actuator.GPIOPin)
	case conf.ControllerArduino:
		inner, err = newSerial(settings.Actuator.SerialPort, settings.Actuator.BaudRate)
	case conf.ControllerAuto:
		inner = autoSelect(settings)
	default:
		return nil, errors.Newf("unknown actuator controller: %s", settings.Actuator.Controller).
			Component("actuator").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if err != nil {
		return nil, err
	}

	log.Info("Actuator controller initialized", "backend", inner.Name())
	return &Degrading{inner: inner, log: log}, nil
}

// autoSelect probes GPIO, then serial, then falls back to simulated.
func autoSelect(settings *conf.Settings) Controller {
	log := logging.Structured().With("service", "actuator")

	if c, err := newGPIO(settings.Actuator.GPIOPin); err == nil {
		return c
	} else if settings.Debug {
		log.Debug("GPIO controller unavailable", "error", err)
	}

	if c, err := newSerial(settings.Actuator.SerialPort, settings.Actuator.BaudRate); err == nil {
		return c
	} else if settings.Debug {
		log.Debug("Serial controller unavailable", "error", err)
	}

	log.Info("No actuator hardware found, using simulated controller")
	return NewSimulated()
}

// Degrading wraps the selected backend with failure accounting. Three
// consecutive Activate failures on a non-simulated backend swap the rest
// of the run to the simulated controller with a persistent warning.
type Degrading struct {
	mu       sync.Mutex
	inner    Controller
	failures int
	degraded bool
	log      interface {
		Warn(msg string, args ...any)
		Error(msg string, args ...any)
	}
}

// NewDegrading wraps an explicit backend, used by tests.
func NewDegrading(inner Controller) *Degrading {
	return &Degrading{inner: inner, log: logging.Structured().With("service", "actuator")}
}

// Name returns the active backend name, suffixed when degraded.
func (d *Degrading) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.degraded {
		return d.inner.Name() + " (degraded)"
	}
	return d.inner.Name()
}

// Degraded reports whether the run has fallen back to simulated.
func (d *Degrading) Degraded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.degraded
}

// HealthCheck delegates to the active backend.
func (d *Degrading) HealthCheck() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inner.HealthCheck()
}

// Activate executes one pulse on the active backend. The mutex serializes
// the hardware handle: at most one activation runs at a time. A failure is
// reported but never aborts the run.
func (d *Degrading) Activate(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.degraded {
		d.log.Warn("Actuator degraded to simulated backend, command not reaching hardware",
			"intensity", cmd.Intensity, "duration", cmd.Duration.String())
	}

	err := d.inner.Activate(ctx, cmd)
	if err == nil {
		d.failures = 0
		return nil
	}

	d.failures++
	if !d.degraded && d.inner.Name() != simulatedName && d.failures >= maxConsecutiveFailures {
		d.log.Error("Actuator failed repeatedly, degrading to simulated backend for the rest of the run",
			"backend", d.inner.Name(), "consecutive_failures", d.failures, "error", err)
		_ = d.inner.Close()
		d.inner = NewSimulated()
		d.degraded = true
		d.failures = 0
	}

	return errors.New(fmt.Errorf("actuation failed: %w", err)).
		Component("actuator").
		Category(errors.CategoryActuator).
		Context("intensity", cmd.Intensity).
		Context("duration_ms", cmd.Duration.Milliseconds()).
		Build()
}

// Close releases the active backend.
func (d *Degrading) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inner.Close()
}
