// config.go: This file contains the configuration for the snore-go application. It defines the settings struct and functions to load and dump the settings.
package conf

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled bool   // true to enable this log
	Path    string // Path to the log file
	MaxSize int    // Max size in megabytes before rotation
	MaxAge  int    // Max age in days to retain old log files
}

// SnoreNETConfig contains the detection model settings.
type SnoreNETConfig struct {
	ModelPath     string  // path to the TensorFlow Lite model file
	Threshold     float64 // probability threshold for a positive window, 0.0 to 1.0
	Sensitivity   float64 // sigmoid sensitivity applied to raw model output
	ChunkDuration float64 // analysis window length in seconds
	Overlap       float64 // fraction of a window shared with the previous one, 0.0 <= overlap < 1.0
	MinSnoreCount int     // consecutive positive windows required before alerting
	Threads       int     // number of CPU threads for inference, 0 to use optimal count
	UseXNNPACK    bool    // true to use XNNPACK delegate for inference
}

// AudioSettings contains settings for the audio capture source.
type AudioSettings struct {
	Source string // audio source to use for analysis
}

// TelemetrySettings contains settings for the optional Prometheus endpoint.
type TelemetrySettings struct {
	Enabled bool   // true to expose metrics over HTTP
	Listen  string // IP address and port to listen on, e.g. "localhost:8090"
}

// RealtimeSettings contains settings for realtime monitoring.
type RealtimeSettings struct {
	ProcessingTime bool              // true to report processing time for each window
	QueueSize      int               // capacity of the capture hand-off queue in chunks
	Audio          AudioSettings     // audio capture settings
	Log            LogConfig         // detection log settings
	Telemetry      TelemetrySettings // Prometheus telemetry settings
}

// ActuatorSettings contains settings for the vibration actuator.
type ActuatorSettings struct {
	Controller string  // controller type: auto, raspberrypi, arduino or simulated
	Duration   float64 // vibration pulse length in seconds
	Intensity  float64 // vibration intensity, 0.0 to 1.0
	SerialPort string  // serial port for the arduino controller, e.g. /dev/ttyUSB0
	BaudRate   int     // baud rate for the serial port
	GPIOPin    int     // BCM pin number for the raspberrypi controller
}

// InputConfig holds the input source for file analysis mode.
type InputConfig struct {
	Path string // path to audio file
}

// Settings contains all runtime settings, constructed once at startup and
// treated as immutable afterwards.
type Settings struct {
	Debug bool // true to enable debug messages

	Main struct {
		Name string    // name of this node, used in log messages
		Log  LogConfig // main application log settings
	}

	SnoreNET SnoreNETConfig   // snore detection model settings
	Realtime RealtimeSettings // realtime monitoring settings
	Actuator ActuatorSettings // vibration actuator settings
	Input    InputConfig      // file analysis input
}

// Load reads the configuration into a new Settings struct. Defaults are
// applied first, then the optional config file, then environment variables;
// command line flags are bound on top by the cmd package.
func Load() (*Settings, error) {
	settings := &Settings{}

	initViper()

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	return settings, nil
}

// initViper sets up the viper instance: defaults, config file search paths
// and environment variable overrides.
func initViper() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		log.Printf("Error getting default config paths: %v", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("SNORE")
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("Error reading config file: %v", err)
		}
		// Missing config file is fine, defaults and flags cover everything.
	}
}

// GetDefaultConfigPaths returns the directories searched for a config file,
// in priority order: working directory first, then the user config dir.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return paths, fmt.Errorf("error fetching user config directory: %w", err)
	}
	paths = append(paths, filepath.Join(configDir, "snore-go"))

	homeDir, err := os.UserHomeDir()
	if err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "snore-go"))
	}

	return paths, nil
}

// DumpYAML renders the effective settings as YAML, used by the config
// subcommand to show the merged result of defaults, file, env and flags.
func (s *Settings) DumpYAML() (string, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("error marshaling settings to YAML: %w", err)
	}
	return string(out), nil
}
