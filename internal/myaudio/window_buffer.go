// window_buffer.go: assembly of fixed-size overlapping analysis windows
// from the incoming chunk stream.
package myaudio

import (
	"math"

	"github.com/smallnest/ringbuffer"
	"github.com/tphakala/snore-go/internal/conf"
	"github.com/tphakala/snore-go/internal/errors"
)

// Window is one fixed-duration span of PCM submitted to the classifier.
// Seq increases by exactly one per emitted window; consecutive windows
// share the configured overlap fraction of their samples.
type Window struct {
	Seq uint64
	PCM []byte
}

// WindowBuffer accumulates raw PCM and emits analysis windows of exactly
// windowBytes, advancing stepBytes per window. Partial windows at stream
// start or end are never emitted. Not safe for concurrent use; it lives on
// the processing flow only.
type WindowBuffer struct {
	rb          *ringbuffer.RingBuffer
	pending     []byte
	windowBytes int
	stepBytes   int
	nextSeq     uint64
}

// NewWindowBuffer creates a buffer for windows of chunkDuration seconds
// with the given overlap fraction. The shared region between consecutive
// windows is round(overlap * windowSamples) samples.
func NewWindowBuffer(chunkDuration, overlap float64) (*WindowBuffer, error) {
	if chunkDuration <= 0 {
		return nil, errors.Newf("window duration must be greater than 0: %f", chunkDuration).
			Component("myaudio").
			Category(errors.CategoryValidation).
			Build()
	}
	if overlap < 0 || overlap >= 1 {
		return nil, errors.Newf("overlap must be at least 0 and below 1: %f", overlap).
			Component("myaudio").
			Category(errors.CategoryValidation).
			Build()
	}

	windowSamples := int(chunkDuration * conf.SampleRate)
	overlapSamples := int(math.Round(overlap * float64(windowSamples)))
	stepSamples := windowSamples - overlapSamples
	if stepSamples < conf.MinStepSamples {
		return nil, errors.Newf("overlap %f yields a step of %d samples, minimum is %d", overlap, stepSamples, conf.MinStepSamples).
			Component("myaudio").
			Category(errors.CategoryValidation).
			Build()
	}

	windowBytes := windowSamples * conf.BytesPerSample
	return &WindowBuffer{
		rb:          ringbuffer.New(windowBytes * 4),
		pending:     make([]byte, 0, windowBytes),
		windowBytes: windowBytes,
		stepBytes:   stepSamples * conf.BytesPerSample,
	}, nil
}

// WindowSamples returns the window length in samples.
func (wb *WindowBuffer) WindowSamples() int {
	return wb.windowBytes / conf.BytesPerSample
}

// StepSamples returns the advance per window in samples.
func (wb *WindowBuffer) StepSamples() int {
	return wb.stepBytes / conf.BytesPerSample
}

// Push appends a chunk of PCM and returns zero or more completed windows,
// in strict sequence order. Each returned window owns its backing array.
func (wb *WindowBuffer) Push(chunk []byte) ([]Window, error) {
	if len(chunk) == 0 {
		return nil, nil
	}
	if wb.rb.Free() < len(chunk) {
		// Cannot happen while the caller drains every Push; a chunk larger
		// than the staging ring is a configuration problem.
		return nil, errors.Newf("chunk of %d bytes exceeds %d bytes of staging space", len(chunk), wb.rb.Free()).
			Component("myaudio").
			Category(errors.CategoryBuffer).
			Build()
	}
	if _, err := wb.rb.Write(chunk); err != nil {
		return nil, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryBuffer).
			Build()
	}

	var windows []Window
	for {
		// Top the pending buffer up to a full window.
		if need := wb.windowBytes - len(wb.pending); need > 0 {
			avail := wb.rb.Length()
			if avail == 0 {
				break
			}
			take := min(need, avail)
			buf := make([]byte, take)
			if _, err := wb.rb.Read(buf); err != nil {
				return windows, errors.New(err).
					Component("myaudio").
					Category(errors.CategoryBuffer).
					Build()
			}
			wb.pending = append(wb.pending, buf...)
			if len(wb.pending) < wb.windowBytes {
				break
			}
		}

		pcm := make([]byte, wb.windowBytes)
		copy(pcm, wb.pending)
		windows = append(windows, Window{Seq: wb.nextSeq, PCM: pcm})
		wb.nextSeq++

		// Discard one step, retain the overlap for the next window.
		remaining := copy(wb.pending, wb.pending[wb.stepBytes:])
		wb.pending = wb.pending[:remaining]
	}

	return windows, nil
}

// Reset discards all buffered samples and restarts sequence numbering.
// Used on explicit restart only.
func (wb *WindowBuffer) Reset() {
	wb.rb.Reset()
	wb.pending = wb.pending[:0]
	wb.nextSeq = 0
}
