package actuator

import (
	"context"
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/tphakala/snore-go/internal/errors"
)

// serialWriteTimeout bounds a single command write. The port library has no
// native write deadline, so writes run on a goroutine raced against this
// timeout; an expired write counts as an actuation failure.
const serialWriteTimeout = 2 * time.Second

// serialController talks to an Arduino-style vibration driver over a
// serial port. The firmware executes the pulse itself, so a command write
// is the whole activation: `V,<duration_ms>,<intensity_0-255>\n`. `S\n`
// stops any running pulse.
type serialController struct {
	port     serial.Port
	portName string
}

// newSerial opens the configured port. Failure to open is a hard error;
// the auto-select path treats it as "no Arduino here".
func newSerial(portName string, baudRate int) (*serialController, error) {
	mode := &serial.Mode{BaudRate: baudRate}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, errors.New(fmt.Errorf("cannot open serial port %s: %w", portName, err)).
			Component("actuator").
			Category(errors.CategoryActuator).
			Context("port", portName).
			Context("baud_rate", baudRate).
			Build()
	}

	if err := port.SetReadTimeout(time.Second); err != nil {
		_ = port.Close()
		return nil, errors.New(fmt.Errorf("cannot configure serial port %s: %w", portName, err)).
			Component("actuator").
			Category(errors.CategoryActuator).
			Context("port", portName).
			Build()
	}

	return &serialController{port: port, portName: portName}, nil
}

func (s *serialController) Name() string { return "arduino:" + s.portName }

func (s *serialController) HealthCheck() error {
	if s.port == nil {
		return errors.Newf("serial port %s is closed", s.portName).
			Component("actuator").
			Category(errors.CategoryActuator).
			Build()
	}
	return nil
}

// encodeCommand renders the firmware line protocol.
func encodeCommand(cmd Command) string {
	return fmt.Sprintf("V,%d,%d\n", cmd.Duration.Milliseconds(), int(cmd.Intensity*255))
}

// Activate writes the pulse command under a bounded timeout. The firmware
// runs the pulse; the write completing is success.
func (s *serialController) Activate(ctx context.Context, cmd Command) error {
	return s.write(ctx, encodeCommand(cmd))
}

func (s *serialController) write(ctx context.Context, line string) error {
	ctx, cancel := context.WithTimeout(ctx, serialWriteTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := s.port.Write([]byte(line))
		done <- err
	}()

	select {
	case <-ctx.Done():
		return errors.New(fmt.Errorf("serial write on %s did not complete: %w", s.portName, ctx.Err())).
			Component("actuator").
			Category(errors.CategoryTimeout).
			Context("port", s.portName).
			Build()
	case err := <-done:
		if err != nil {
			return errors.New(fmt.Errorf("serial write on %s failed: %w", s.portName, err)).
				Component("actuator").
				Category(errors.CategoryActuator).
				Context("port", s.portName).
				Build()
		}
		return nil
	}
}

// Close sends the stop command so an in-flight pulse does not outlive the
// process, then releases the port.
func (s *serialController) Close() error {
	_ = s.write(context.Background(), "S\n")
	return s.port.Close()
}
