// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "snore-go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "snore-go.log")
	viper.SetDefault("main.log.maxsize", 10)
	viper.SetDefault("main.log.maxage", 30)

	viper.SetDefault("snorenet.modelpath", "models/snore_detection_fp32.tflite")
	viper.SetDefault("snorenet.threshold", 0.5)
	viper.SetDefault("snorenet.sensitivity", 1.0)
	viper.SetDefault("snorenet.chunkduration", 1.0)
	viper.SetDefault("snorenet.overlap", 0.5)
	viper.SetDefault("snorenet.minsnorecount", 3)
	viper.SetDefault("snorenet.threads", 0)
	viper.SetDefault("snorenet.usexnnpack", true)

	viper.SetDefault("realtime.processingtime", false)
	viper.SetDefault("realtime.queuesize", 8)
	viper.SetDefault("realtime.audio.source", "sysdefault")
	viper.SetDefault("realtime.log.enabled", false)
	viper.SetDefault("realtime.log.path", "detections.log")
	viper.SetDefault("realtime.log.maxsize", 10)
	viper.SetDefault("realtime.log.maxage", 30)
	viper.SetDefault("realtime.telemetry.enabled", false)
	viper.SetDefault("realtime.telemetry.listen", "localhost:8090")

	viper.SetDefault("actuator.controller", ControllerAuto)
	viper.SetDefault("actuator.duration", 0.5)
	viper.SetDefault("actuator.intensity", 0.8)
	viper.SetDefault("actuator.serialport", "/dev/ttyUSB0")
	viper.SetDefault("actuator.baudrate", 9600)
	viper.SetDefault("actuator.gpiopin", 18)
}
