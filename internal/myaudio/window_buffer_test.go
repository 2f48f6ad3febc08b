package myaudio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/snore-go/internal/conf"
)

// markedPCM produces PCM where each 16-bit sample equals its index modulo
// 32768, so tests can verify which samples ended up in which window.
func markedPCM(start, count int) []byte {
	pcm := make([]byte, count*conf.BytesPerSample)
	for i := 0; i < count; i++ {
		binary.LittleEndian.PutUint16(pcm[i*2:i*2+2], uint16((start+i)%32768))
	}
	return pcm
}

func sampleAt(pcm []byte, i int) uint16 {
	return binary.LittleEndian.Uint16(pcm[i*2 : i*2+2])
}

func TestWindowBufferRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		overlap  float64
	}{
		{"zero duration", 0, 0.5},
		{"negative overlap", 1.0, -0.1},
		{"overlap of one", 1.0, 1.0},
		{"overlap above one", 1.0, 1.5},
		{"step below minimum", 1.0, 0.999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWindowBuffer(tt.duration, tt.overlap)
			assert.Error(t, err)
		})
	}
}

func TestWindowBufferHalfOverlap(t *testing.T) {
	// chunk_duration=1.0s, overlap=0.5, sample_rate=16000: each window is
	// 16000 samples and consecutive windows share 8000 samples.
	wb, err := NewWindowBuffer(1.0, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 16000, wb.WindowSamples())
	assert.Equal(t, 8000, wb.StepSamples())

	windows, err := wb.Push(markedPCM(0, 24000))
	require.NoError(t, err)
	require.Len(t, windows, 2)

	first, second := windows[0], windows[1]
	assert.Equal(t, uint64(0), first.Seq)
	assert.Equal(t, uint64(1), second.Seq)
	assert.Len(t, first.PCM, 16000*conf.BytesPerSample)
	assert.Len(t, second.PCM, 16000*conf.BytesPerSample)

	// Second window starts one step (8000 samples) into the stream.
	assert.Equal(t, uint16(0), sampleAt(first.PCM, 0))
	assert.Equal(t, uint16(8000), sampleAt(second.PCM, 0))

	// The shared region is the tail of the first window and head of the second.
	for i := 0; i < 8000; i += 997 {
		assert.Equal(t, sampleAt(first.PCM, 8000+i), sampleAt(second.PCM, i))
	}
}

func TestWindowBufferNoPartialWindows(t *testing.T) {
	wb, err := NewWindowBuffer(1.0, 0.5)
	require.NoError(t, err)

	// Many chunks, total below one window: nothing may be emitted.
	total := 0
	for i := 0; i < 10; i++ {
		windows, err := wb.Push(markedPCM(total, 1500))
		require.NoError(t, err)
		assert.Empty(t, windows)
		total += 1500
	}
	require.Less(t, total, wb.WindowSamples())

	// One more chunk crosses the boundary and emits exactly one window.
	windows, err := wb.Push(markedPCM(total, 1500))
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, uint64(0), windows[0].Seq)
}

func TestWindowBufferSequenceNumbers(t *testing.T) {
	wb, err := NewWindowBuffer(1.0, 0.5)
	require.NoError(t, err)

	var seqs []uint64
	start := 0
	for i := 0; i < 20; i++ {
		windows, err := wb.Push(markedPCM(start, 5000))
		require.NoError(t, err)
		start += 5000
		for _, w := range windows {
			seqs = append(seqs, w.Seq)
		}
	}

	require.NotEmpty(t, seqs)
	for i, seq := range seqs {
		assert.Equal(t, uint64(i), seq, "window sequence numbers must increase by exactly 1")
	}
}

func TestWindowBufferOverlapArithmetic(t *testing.T) {
	// Shared samples must equal round(overlap * window_length) across the
	// overlap range.
	overlaps := []float64{0, 0.1, 0.25, 0.333, 0.5, 0.75, 0.9}
	for _, overlap := range overlaps {
		wb, err := NewWindowBuffer(1.0, overlap)
		require.NoError(t, err)

		window := wb.WindowSamples()
		wantShared := int(float64(window)*overlap + 0.5)
		assert.Equal(t, window-wantShared, wb.StepSamples(), "overlap %f", overlap)

		windows, err := wb.Push(markedPCM(0, window+wb.StepSamples()))
		require.NoError(t, err)
		require.Len(t, windows, 2, "overlap %f", overlap)

		// Verify actual shared content.
		shared := window - wb.StepSamples()
		for i := 0; i < shared; i += 313 {
			assert.Equal(t,
				sampleAt(windows[0].PCM, wb.StepSamples()+i),
				sampleAt(windows[1].PCM, i),
				"overlap %f", overlap)
		}
	}
}

func TestWindowBufferZeroOverlapDisjoint(t *testing.T) {
	wb, err := NewWindowBuffer(1.0, 0)
	require.NoError(t, err)
	require.Equal(t, wb.WindowSamples(), wb.StepSamples())

	windows, err := wb.Push(markedPCM(0, 2*wb.WindowSamples()))
	require.NoError(t, err)
	require.Len(t, windows, 2)

	// Last sample of first window and first sample of second are adjacent.
	assert.Equal(t, uint16(15999), sampleAt(windows[0].PCM, 15999))
	assert.Equal(t, uint16(16000), sampleAt(windows[1].PCM, 0))
}

func TestWindowBufferReset(t *testing.T) {
	wb, err := NewWindowBuffer(1.0, 0.5)
	require.NoError(t, err)

	_, err = wb.Push(markedPCM(0, 20000))
	require.NoError(t, err)

	wb.Reset()

	// After reset a partial buffer emits nothing and numbering restarts.
	windows, err := wb.Push(markedPCM(0, 16000))
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, uint64(0), windows[0].Seq)
}
