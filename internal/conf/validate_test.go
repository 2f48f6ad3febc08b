package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validSettings returns a Settings struct that passes validation, tests
// mutate single fields from this baseline.
func validSettings() *Settings {
	s := &Settings{}
	s.SnoreNET = SnoreNETConfig{
		ModelPath:     "models/snore_detection_fp32.tflite",
		Threshold:     0.5,
		Sensitivity:   1.0,
		ChunkDuration: 1.0,
		Overlap:       0.5,
		MinSnoreCount: 3,
		Threads:       0,
	}
	s.Realtime.QueueSize = 8
	s.Actuator = ActuatorSettings{
		Controller: ControllerSimulated,
		Duration:   0.5,
		Intensity:  0.8,
		SerialPort: "/dev/ttyUSB0",
		BaudRate:   9600,
		GPIOPin:    18,
	}
	return s
}

func TestValidateSettingsValid(t *testing.T) {
	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSnoreNETSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"zero chunk duration", func(s *Settings) { s.SnoreNET.ChunkDuration = 0 }, true},
		{"negative chunk duration", func(s *Settings) { s.SnoreNET.ChunkDuration = -1 }, true},
		{"negative overlap", func(s *Settings) { s.SnoreNET.Overlap = -0.1 }, true},
		{"overlap of one", func(s *Settings) { s.SnoreNET.Overlap = 1.0 }, true},
		{"overlap rounding step to zero", func(s *Settings) { s.SnoreNET.Overlap = 0.9999 }, true},
		{"zero overlap", func(s *Settings) { s.SnoreNET.Overlap = 0 }, false},
		{"threshold above one", func(s *Settings) { s.SnoreNET.Threshold = 1.1 }, true},
		{"negative threshold", func(s *Settings) { s.SnoreNET.Threshold = -0.1 }, true},
		{"threshold of zero", func(s *Settings) { s.SnoreNET.Threshold = 0 }, false},
		{"zero min snore count", func(s *Settings) { s.SnoreNET.MinSnoreCount = 0 }, true},
		{"min snore count of one", func(s *Settings) { s.SnoreNET.MinSnoreCount = 1 }, false},
		{"negative threads", func(s *Settings) { s.SnoreNET.Threads = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(s)
			err := ValidateSettings(s)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateActuatorSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"unknown controller", func(s *Settings) { s.Actuator.Controller = "teledildonics" }, true},
		{"auto controller", func(s *Settings) { s.Actuator.Controller = ControllerAuto }, false},
		{"raspberrypi controller", func(s *Settings) { s.Actuator.Controller = ControllerRaspberryPi }, false},
		{"arduino controller", func(s *Settings) { s.Actuator.Controller = ControllerArduino }, false},
		{"zero duration", func(s *Settings) { s.Actuator.Duration = 0 }, true},
		{"intensity above one", func(s *Settings) { s.Actuator.Intensity = 1.5 }, true},
		{"zero intensity", func(s *Settings) { s.Actuator.Intensity = 0 }, false},
		{"zero baud rate", func(s *Settings) { s.Actuator.BaudRate = 0 }, true},
		{"negative gpio pin", func(s *Settings) { s.Actuator.GPIOPin = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(s)
			err := ValidateSettings(s)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationErrorCollectsAll(t *testing.T) {
	s := validSettings()
	s.SnoreNET.ChunkDuration = 0
	s.Realtime.QueueSize = 0
	s.Actuator.Duration = 0

	err := ValidateSettings(s)
	require.Error(t, err)

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 3)
}
