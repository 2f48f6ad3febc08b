// conf/consts.go fixed audio format constants
package conf

const (
	// SampleRate is the fixed capture sample rate expected by the snore model.
	SampleRate = 16000

	// BitDepth of capture audio in bits.
	BitDepth = 16

	// NumChannels of capture audio, model is trained on mono audio.
	NumChannels = 1

	// BytesPerSample is the size of a single PCM sample on the wire.
	BytesPerSample = BitDepth / 8

	// MinStepSamples is the smallest accepted analysis step. Overlap values
	// close to 1.0 would otherwise round the step towards zero and stall the
	// window buffer behind an unbounded backlog.
	MinStepSamples = 256
)

// Actuator controller types accepted by the configuration.
const (
	ControllerAuto        = "auto"
	ControllerRaspberryPi = "raspberrypi"
	ControllerArduino     = "arduino"
	ControllerSimulated   = "simulated"
)
