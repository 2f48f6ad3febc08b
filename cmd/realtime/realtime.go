// Package realtime implements the realtime monitoring subcommand.
package realtime

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/snore-go/internal/analysis"
	"github.com/tphakala/snore-go/internal/conf"
)

// Command creates a new command for realtime snore monitoring.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realtime",
		Short: "Monitor for snoring in realtime",
		Long:  "Continuously capture microphone audio, detect snoring and trigger the vibration actuator.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.RealtimeAnalysis(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the realtime command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.Realtime.Audio.Source, "source", viper.GetString("realtime.audio.source"), "Audio capture source (\"sysdefault\", \"USB Audio\", etc.)")
	cmd.Flags().BoolVar(&settings.Realtime.ProcessingTime, "processingtime", viper.GetBool("realtime.processingtime"), "Report processing time for each window")
	cmd.Flags().IntVar(&settings.Realtime.QueueSize, "queue-size", viper.GetInt("realtime.queuesize"), "Capacity of the capture hand-off queue in chunks")
	cmd.Flags().BoolVar(&settings.Realtime.Log.Enabled, "log", viper.GetBool("realtime.log.enabled"), "Enable the rotating detection log")
	cmd.Flags().StringVar(&settings.Realtime.Log.Path, "logpath", viper.GetString("realtime.log.path"), "Path of the detection log file")
	cmd.Flags().BoolVar(&settings.Realtime.Telemetry.Enabled, "telemetry", viper.GetBool("realtime.telemetry.enabled"), "Enable Prometheus telemetry endpoint")
	cmd.Flags().StringVar(&settings.Realtime.Telemetry.Listen, "listen", viper.GetString("realtime.telemetry.listen"), "Listen address and port of telemetry endpoint")

	cmd.Flags().StringVar(&settings.Actuator.Controller, "vibration-controller", viper.GetString("actuator.controller"), "Vibration controller: auto, raspberrypi, arduino or simulated")
	cmd.Flags().Float64Var(&settings.Actuator.Duration, "vibration-duration", viper.GetFloat64("actuator.duration"), "Vibration pulse length in seconds")
	cmd.Flags().Float64Var(&settings.Actuator.Intensity, "vibration-intensity", viper.GetFloat64("actuator.intensity"), "Vibration intensity, value between 0.0 and 1.0")
	cmd.Flags().StringVar(&settings.Actuator.SerialPort, "serial-port", viper.GetString("actuator.serialport"), "Serial port of the arduino controller")
	cmd.Flags().IntVar(&settings.Actuator.BaudRate, "baudrate", viper.GetInt("actuator.baudrate"), "Baud rate of the serial port")
	cmd.Flags().IntVar(&settings.Actuator.GPIOPin, "gpio-pin", viper.GetInt("actuator.gpiopin"), "BCM pin number of the raspberrypi controller")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	bindings := map[string]string{
		"realtime.audio.source":       "source",
		"realtime.processingtime":     "processingtime",
		"realtime.queuesize":          "queue-size",
		"realtime.log.enabled":        "log",
		"realtime.log.path":           "logpath",
		"realtime.telemetry.enabled":  "telemetry",
		"realtime.telemetry.listen":   "listen",
		"actuator.controller":         "vibration-controller",
		"actuator.duration":           "vibration-duration",
		"actuator.intensity":          "vibration-intensity",
		"actuator.serialport":         "serial-port",
		"actuator.baudrate":           "baudrate",
		"actuator.gpiopin":            "gpio-pin",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}

	return nil
}
