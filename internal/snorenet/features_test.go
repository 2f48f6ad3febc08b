package snorenet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/snore-go/internal/conf"
)

func testInstance(t *testing.T) *SnoreNET {
	t.Helper()
	settings := &conf.Settings{}
	settings.SnoreNET.ChunkDuration = 1.0
	settings.SnoreNET.Sensitivity = 1.0
	return &SnoreNET{Settings: settings}
}

func TestExtractFeaturesNormalizes(t *testing.T) {
	sn := testInstance(t)

	window := make([]float32, conf.SampleRate)
	for i := range window {
		window[i] = float32(i%100) / 100.0
	}

	features, err := sn.ExtractFeatures(window)
	require.NoError(t, err)
	require.Len(t, features, len(window))

	var sum, sumSq float64
	for _, f := range features {
		sum += float64(f)
		sumSq += float64(f) * float64(f)
	}
	mean := sum / float64(len(features))
	std := math.Sqrt(sumSq/float64(len(features)) - mean*mean)

	assert.InDelta(t, 0.0, mean, 1e-3)
	assert.InDelta(t, 1.0, std, 1e-3)
}

func TestExtractFeaturesSilentWindow(t *testing.T) {
	sn := testInstance(t)

	window := make([]float32, conf.SampleRate)
	features, err := sn.ExtractFeatures(window)
	require.NoError(t, err)

	// Zero variance must not divide by zero, silence passes through.
	for _, f := range features {
		assert.Zero(t, f)
	}
}

func TestExtractFeaturesRejectsWrongLength(t *testing.T) {
	sn := testInstance(t)

	_, err := sn.ExtractFeatures(make([]float32, conf.SampleRate-1))
	assert.Error(t, err)

	_, err = sn.ExtractFeatures(nil)
	assert.Error(t, err)
}

func TestCustomSigmoid(t *testing.T) {
	// Sensitivity 1.0 round-trips the logit, so the sigmoid is close to
	// identity on (0, 1).
	assert.InDelta(t, 0.5, customSigmoid(0.5, 1.0), 1e-9)
	assert.InDelta(t, 0.9, customSigmoid(0.9, 1.0), 1e-9)
	assert.InDelta(t, 0.1, customSigmoid(0.1, 1.0), 1e-9)

	// Higher sensitivity sharpens the curve away from 0.5.
	assert.Greater(t, customSigmoid(0.9, 1.5), customSigmoid(0.9, 1.0))
	assert.Less(t, customSigmoid(0.1, 1.5), customSigmoid(0.1, 1.0))
}

func TestClampProbability(t *testing.T) {
	assert.Equal(t, float32(0), clampProbability(-0.5))
	assert.Equal(t, float32(1), clampProbability(1.5))
	assert.Equal(t, float32(0.25), clampProbability(0.25))
}
