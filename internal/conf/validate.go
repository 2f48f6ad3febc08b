// conf/validate.go

package conf

import (
	"fmt"
	"math"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct. It is called once
// at startup, before any audio or actuator resource is acquired; a failure
// here is fatal.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateSnoreNETSettings(&settings.SnoreNET); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateRealtimeSettings(&settings.Realtime); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateActuatorSettings(&settings.Actuator); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateSnoreNETSettings(s *SnoreNETConfig) error {
	if s.ChunkDuration <= 0 {
		return fmt.Errorf("SnoreNET chunk duration must be greater than 0: %f", s.ChunkDuration)
	}

	if s.Overlap < 0 || s.Overlap >= 1 {
		return fmt.Errorf("SnoreNET overlap value must be at least 0 and below 1: %f", s.Overlap)
	}

	// Reject overlaps whose step would fall below the minimum, the window
	// buffer would otherwise build an unbounded backlog.
	windowSamples := int(s.ChunkDuration * SampleRate)
	stepSamples := windowSamples - int(math.Round(s.Overlap*float64(windowSamples)))
	if stepSamples < MinStepSamples {
		return fmt.Errorf("SnoreNET overlap %f yields a step of %d samples, minimum is %d", s.Overlap, stepSamples, MinStepSamples)
	}

	if s.Threshold < 0 || s.Threshold > 1 {
		return fmt.Errorf("SnoreNET threshold value must be between 0 and 1: %f", s.Threshold)
	}

	if s.Sensitivity < 0 || s.Sensitivity > 1.5 {
		return fmt.Errorf("SnoreNET sensitivity value must be between 0 and 1.5: %f", s.Sensitivity)
	}

	if s.MinSnoreCount < 1 {
		return fmt.Errorf("SnoreNET minimum snore count must be at least 1: %d", s.MinSnoreCount)
	}

	if s.Threads < 0 {
		return fmt.Errorf("SnoreNET threads must be at least 0: %d", s.Threads)
	}

	return nil
}

func validateRealtimeSettings(s *RealtimeSettings) error {
	if s.QueueSize < 1 {
		return fmt.Errorf("realtime queue size must be at least 1: %d", s.QueueSize)
	}
	return nil
}

func validateActuatorSettings(s *ActuatorSettings) error {
	switch s.Controller {
	case ControllerAuto, ControllerRaspberryPi, ControllerArduino, ControllerSimulated:
	default:
		return fmt.Errorf("actuator controller must be one of auto, raspberrypi, arduino or simulated: %s", s.Controller)
	}

	if s.Duration <= 0 {
		return fmt.Errorf("actuator duration must be greater than 0: %f", s.Duration)
	}

	if s.Intensity < 0 || s.Intensity > 1 {
		return fmt.Errorf("actuator intensity must be between 0 and 1: %f", s.Intensity)
	}

	if s.BaudRate <= 0 {
		return fmt.Errorf("actuator baud rate must be greater than 0: %d", s.BaudRate)
	}

	if s.GPIOPin < 0 {
		return fmt.Errorf("actuator GPIO pin must be at least 0: %d", s.GPIOPin)
	}

	return nil
}
