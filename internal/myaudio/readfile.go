// readfile.go: WAV file input for offline analysis mode.
package myaudio

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/snore-go/internal/conf"
	"github.com/tphakala/snore-go/internal/errors"
)

// AudioInfo describes a decoded audio file.
type AudioInfo struct {
	SampleRate   int
	TotalSamples int
	NumChannels  int
	BitDepth     int
}

// GetAudioInfo reads the WAV header of the given file.
func GetAudioInfo(path string) (AudioInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return AudioInfo{}, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			Build()
	}
	defer file.Close() //nolint:errcheck

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()

	if !decoder.IsValidFile() {
		return AudioInfo{}, errors.Newf("%s is not a valid WAV file", path).
			Component("myaudio").
			Category(errors.CategoryFileParsing).
			Build()
	}

	if decoder.BitDepth != 16 && decoder.BitDepth != 24 && decoder.BitDepth != 32 {
		return AudioInfo{}, errors.Newf("unsupported bit depth: %d", decoder.BitDepth).
			Component("myaudio").
			Category(errors.CategoryFileParsing).
			Build()
	}

	if decoder.NumChans != 1 && decoder.NumChans != 2 {
		return AudioInfo{}, errors.Newf("unsupported number of channels: %d", decoder.NumChans).
			Component("myaudio").
			Category(errors.CategoryFileParsing).
			Build()
	}

	fileInfo, err := file.Stat()
	if err != nil {
		return AudioInfo{}, err
	}

	bytesPerSample := int(decoder.BitDepth / 8)
	totalSamples := int(fileInfo.Size()) / bytesPerSample / int(decoder.NumChans)

	return AudioInfo{
		SampleRate:   int(decoder.SampleRate),
		TotalSamples: totalSamples,
		NumChannels:  int(decoder.NumChans),
		BitDepth:     int(decoder.BitDepth),
	}, nil
}

// ReadWAV decodes a WAV file into 16 kHz mono 16-bit PCM ready for the
// window buffer. Stereo input is downmixed by averaging; a sample rate
// other than conf.SampleRate is rejected since the model is rate-specific.
func ReadWAV(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			Build()
	}
	defer file.Close() //nolint:errcheck

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return nil, errors.Newf("%s is not a valid WAV file", path).
			Component("myaudio").
			Category(errors.CategoryFileParsing).
			Build()
	}

	if int(decoder.SampleRate) != conf.SampleRate {
		return nil, errors.Newf("sample rate %d Hz not supported, model requires %d Hz", decoder.SampleRate, conf.SampleRate).
			Component("myaudio").
			Category(errors.CategoryFileParsing).
			Context("file", path).
			Build()
	}

	divisor, err := audioDivisor(int(decoder.BitDepth))
	if err != nil {
		return nil, err
	}

	channels := int(decoder.NumChans)
	buf := &audio.IntBuffer{
		Data:   make([]int, 65536),
		Format: &audio.Format{SampleRate: conf.SampleRate, NumChannels: channels},
	}

	var samples []float32
	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return nil, fmt.Errorf("error decoding %s: %w", path, err)
		}
		if n == 0 {
			break
		}

		data := buf.Data[:n]
		switch channels {
		case 1:
			for _, s := range data {
				samples = append(samples, float32(s)/divisor)
			}
		case 2:
			for i := 0; i+1 < len(data); i += 2 {
				mixed := (float32(data[i]) + float32(data[i+1])) / 2
				samples = append(samples, mixed/divisor)
			}
		default:
			return nil, errors.Newf("unsupported number of channels: %d", channels).
				Component("myaudio").
				Category(errors.CategoryFileParsing).
				Build()
		}
	}

	return Float32ToPCM16(samples), nil
}

func audioDivisor(bitDepth int) (float32, error) {
	switch bitDepth {
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, errors.Newf("unsupported audio file bit depth: %d", bitDepth).
			Component("myaudio").
			Category(errors.CategoryFileParsing).
			Build()
	}
}
