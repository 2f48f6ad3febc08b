package actuator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingController fails a configurable number of Activate calls before
// succeeding, standing in for flaky hardware.
type failingController struct {
	mu        sync.Mutex
	name      string
	failCount int
	calls     int
	closed    bool
}

func (f *failingController) Name() string      { return f.name }
func (f *failingController) HealthCheck() error { return nil }

func (f *failingController) Activate(_ context.Context, _ Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failCount {
		return errors.New("hardware gone")
	}
	return nil
}

func (f *failingController) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func validCommand() Command {
	return Command{Intensity: 0.8, Duration: 500 * time.Millisecond}
}

func TestCommandValidate(t *testing.T) {
	assert.NoError(t, validCommand().Validate())
	assert.Error(t, Command{Intensity: -0.1, Duration: time.Second}.Validate())
	assert.Error(t, Command{Intensity: 1.1, Duration: time.Second}.Validate())
	assert.Error(t, Command{Intensity: 0.5, Duration: 0}.Validate())
	assert.Error(t, Command{Intensity: 0.5, Duration: -time.Second}.Validate())
}

func TestSimulatedAlwaysSucceeds(t *testing.T) {
	s := NewSimulated()
	require.NoError(t, s.HealthCheck())

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Activate(context.Background(), validCommand()))
	}
	assert.Len(t, s.Commands(), 5)
	assert.NoError(t, s.Close())
}

func TestDegradationAfterThreeConsecutiveFailures(t *testing.T) {
	hw := &failingController{name: "arduino:/dev/ttyUSB0", failCount: 1000}
	d := NewDegrading(hw)

	// First three failures are reported; the third trips degradation.
	for i := 0; i < 3; i++ {
		assert.Error(t, d.Activate(context.Background(), validCommand()))
	}

	assert.True(t, d.Degraded())
	assert.True(t, hw.closed, "degraded hardware backend must be closed")
	assert.Contains(t, d.Name(), "degraded")

	// All subsequent commands are served by the simulated backend and
	// succeed, for the remainder of the run.
	for i := 0; i < 5; i++ {
		assert.NoError(t, d.Activate(context.Background(), validCommand()))
	}
	assert.Equal(t, 3, hw.calls, "hardware must not be touched after degradation")
}

func TestSuccessResetsFailureCount(t *testing.T) {
	// Fail twice, succeed, fail twice more: never degrades because the
	// failures are not consecutive.
	hw := &failingController{name: "arduino:/dev/ttyUSB0", failCount: 2}
	d := NewDegrading(hw)

	assert.Error(t, d.Activate(context.Background(), validCommand()))
	assert.Error(t, d.Activate(context.Background(), validCommand()))
	assert.NoError(t, d.Activate(context.Background(), validCommand()))
	assert.False(t, d.Degraded())

	hw.mu.Lock()
	hw.calls = 0
	hw.failCount = 2
	hw.mu.Unlock()

	assert.Error(t, d.Activate(context.Background(), validCommand()))
	assert.Error(t, d.Activate(context.Background(), validCommand()))
	assert.False(t, d.Degraded())
}

func TestSimulatedBackendNeverDegrades(t *testing.T) {
	// A simulated inner backend cannot fail, but even a hypothetical
	// failing backend named "simulated" must not trip the swap.
	hw := &failingController{name: simulatedName, failCount: 1000}
	d := NewDegrading(hw)

	for i := 0; i < 10; i++ {
		assert.Error(t, d.Activate(context.Background(), validCommand()))
	}
	assert.False(t, d.Degraded())
}

func TestDegradingRejectsInvalidCommand(t *testing.T) {
	hw := &failingController{name: "arduino:/dev/ttyUSB0"}
	d := NewDegrading(hw)

	err := d.Activate(context.Background(), Command{Intensity: 2, Duration: time.Second})
	assert.Error(t, err)
	assert.Zero(t, hw.calls, "invalid commands must not reach the backend")
}

func TestEncodeCommand(t *testing.T) {
	// Firmware line protocol: V,<duration_ms>,<intensity_0-255>\n
	assert.Equal(t, "V,500,204\n", encodeCommand(Command{Intensity: 0.8, Duration: 500 * time.Millisecond}))
	assert.Equal(t, "V,1000,255\n", encodeCommand(Command{Intensity: 1.0, Duration: time.Second}))
	assert.Equal(t, "V,250,0\n", encodeCommand(Command{Intensity: 0, Duration: 250 * time.Millisecond}))
}
