package myaudio

import (
	"encoding/binary"

	"github.com/tphakala/snore-go/internal/errors"
)

// PCM16ToFloat32 converts little-endian signed 16-bit PCM into float32
// samples scaled to [-1, 1), the range the model was trained on.
func PCM16ToFloat32(pcm []byte) ([]float32, error) {
	if len(pcm)%2 != 0 {
		return nil, errors.Newf("invalid PCM data size: %d", len(pcm)).
			Component("myaudio").
			Category(errors.CategoryAudioAnalysis).
			Build()
	}

	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		samples[i] = float32(sample) / 32768.0
	}
	return samples, nil
}

// Float32ToPCM16 converts float32 samples in [-1, 1] back into little-endian
// signed 16-bit PCM, clipping out-of-range values.
func Float32ToPCM16(samples []float32) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := s * 32768.0
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(pcm[i*2:i*2+2], uint16(int16(v)))
	}
	return pcm
}
