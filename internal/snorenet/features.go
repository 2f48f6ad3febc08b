package snorenet

import (
	"math"

	"github.com/tphakala/snore-go/internal/conf"
	"github.com/tphakala/snore-go/internal/errors"
)

// ExtractFeatures converts an analysis window into the fixed-length numeric
// vector the model consumes. The exact representation is owned by the
// training subsystem; this inference-time routine mirrors its normalization
// step: zero-mean, unit-variance scaling over the window. The model's first
// layers perform the spectral transform internally.
func (sn *SnoreNET) ExtractFeatures(window []float32) ([]float32, error) {
	expected := int(sn.Settings.SnoreNET.ChunkDuration * conf.SampleRate)
	if len(window) != expected {
		return nil, errors.Newf("malformed analysis window: %d samples, expected %d", len(window), expected).
			Component("snorenet").
			Category(errors.CategoryAudioAnalysis).
			Build()
	}

	var sum float64
	for _, s := range window {
		sum += float64(s)
	}
	mean := sum / float64(len(window))

	var variance float64
	for _, s := range window {
		d := float64(s) - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(window)))

	features := make([]float32, len(window))
	if std > 0 {
		for i, s := range window {
			features[i] = float32((float64(s) - mean) / std)
		}
	} else {
		// Silent window, pass through unscaled.
		copy(features, window)
	}

	return features, nil
}
