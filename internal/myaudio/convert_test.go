package myaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCM16ToFloat32(t *testing.T) {
	pcm := []byte{
		0x00, 0x00, // 0
		0xFF, 0x7F, // 32767
		0x00, 0x80, // -32768
	}

	samples, err := PCM16ToFloat32(pcm)
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Equal(t, float32(0), samples[0])
	assert.InDelta(t, 1.0, samples[1], 1e-4)
	assert.Equal(t, float32(-1.0), samples[2])
}

func TestPCM16ToFloat32OddLength(t *testing.T) {
	_, err := PCM16ToFloat32([]byte{0x01})
	assert.Error(t, err)
}

func TestFloat32ToPCM16Clips(t *testing.T) {
	pcm := Float32ToPCM16([]float32{2.0, -2.0})
	samples, err := PCM16ToFloat32(pcm)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, samples[0], 1e-4)
	assert.Equal(t, float32(-1.0), samples[1])
}

func TestPCMRoundTrip(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 0.25, -0.25}
	out, err := PCM16ToFloat32(Float32ToPCM16(in))
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.InDelta(t, in[i], out[i], 1e-4)
	}
}
