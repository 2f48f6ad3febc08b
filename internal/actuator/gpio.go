package actuator

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/tphakala/snore-go/internal/errors"
)

// pwmPeriod is the software PWM period used to map intensity onto a duty
// cycle. 100 Hz is well above what a vibration motor can mechanically
// follow, so partial intensities feel like weaker vibration rather than
// pulsing.
const pwmPeriod = 10 * time.Millisecond

// gpioController drives a vibration motor attached to a Raspberry Pi GPIO
// pin. Intensity maps to a software PWM duty cycle, duration governs the
// pulse width.
type gpioController struct {
	pin     gpio.PinIO
	pinName string
}

// newGPIO claims the given BCM pin. Failure to claim the pin at startup is
// a hard error; the auto-select path treats it as "no GPIO here".
func newGPIO(pinNum int) (*gpioController, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.New(fmt.Errorf("GPIO host init failed: %w", err)).
			Component("actuator").
			Category(errors.CategoryActuator).
			Build()
	}

	pinName := fmt.Sprintf("GPIO%d", pinNum)
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, errors.Newf("GPIO pin %s cannot be claimed", pinName).
			Component("actuator").
			Category(errors.CategoryActuator).
			Context("pin", pinName).
			Build()
	}

	if err := pin.Out(gpio.Low); err != nil {
		return nil, errors.New(fmt.Errorf("GPIO pin %s cannot be driven: %w", pinName, err)).
			Component("actuator").
			Category(errors.CategoryActuator).
			Context("pin", pinName).
			Build()
	}

	return &gpioController{pin: pin, pinName: pinName}, nil
}

func (g *gpioController) Name() string { return "raspberrypi:" + g.pinName }

func (g *gpioController) HealthCheck() error {
	if err := g.pin.Out(gpio.Low); err != nil {
		return errors.New(fmt.Errorf("GPIO pin %s unavailable: %w", g.pinName, err)).
			Component("actuator").
			Category(errors.CategoryActuator).
			Build()
	}
	return nil
}

// Activate drives the pulse. Full intensity holds the pin high for the
// whole duration; partial intensity runs software PWM. The pin is always
// left low, including on context expiry.
func (g *gpioController) Activate(ctx context.Context, cmd Command) error {
	defer g.pin.Out(gpio.Low) //nolint:errcheck

	deadline := time.Now().Add(cmd.Duration)

	if cmd.Intensity >= 0.99 {
		if err := g.pin.Out(gpio.High); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(deadline)):
			return nil
		}
	}

	onTime := time.Duration(cmd.Intensity * float64(pwmPeriod))
	offTime := pwmPeriod - onTime

	for time.Now().Before(deadline) {
		if onTime > 0 {
			if err := g.pin.Out(gpio.High); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(onTime):
			}
		}
		if err := g.pin.Out(gpio.Low); err != nil {
			return err
		}
		if offTime > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(offTime):
			}
		}
	}
	return nil
}

func (g *gpioController) Close() error {
	if err := g.pin.Out(gpio.Low); err != nil {
		return err
	}
	return g.pin.Halt()
}
