package snorenet

import (
	"math"

	tflite "github.com/tphakala/go-tflite"
	"github.com/tphakala/snore-go/internal/errors"
)

// Predict performs inference on a feature vector and returns the snore
// probability in [0, 1].
//
// The model was trained with label 0 = snore and label 1 = non-snore, so
// the raw output approaches 0 for snoring; the result is inverted here so
// callers always see "probability of snoring".
func (sn *SnoreNET) Predict(features []float32) (float32, error) {
	// The interpreter is single-flight; detection is intentionally not
	// parallelized across windows so results stay in sequence order.
	sn.mu.Lock()
	defer sn.mu.Unlock()

	inputTensor := sn.Interpreter.GetInputTensor(0)
	if inputTensor == nil {
		return 0, errors.Newf("cannot get input tensor").
			Component("snorenet").
			Category(errors.CategoryAudioAnalysis).
			Build()
	}

	input := inputTensor.Float32s()
	if len(input) != len(features) {
		return 0, errors.Newf("feature vector length %d does not match model input %d", len(features), len(input)).
			Component("snorenet").
			Category(errors.CategoryAudioAnalysis).
			Build()
	}
	copy(input, features)

	if status := sn.Interpreter.Invoke(); status != tflite.OK {
		return 0, errors.Newf("tensor invoke failed: %v", status).
			Component("snorenet").
			Category(errors.CategoryAudioAnalysis).
			Build()
	}

	outputTensor := sn.Interpreter.GetOutputTensor(0)
	if outputTensor == nil {
		return 0, errors.Newf("cannot get output tensor").
			Component("snorenet").
			Category(errors.CategoryAudioAnalysis).
			Build()
	}

	out := outputTensor.Float32s()
	if len(out) == 0 {
		return 0, errors.Newf("empty output tensor").
			Component("snorenet").
			Category(errors.CategoryAudioAnalysis).
			Build()
	}

	raw := float64(out[0])
	confidence := customSigmoid(raw, sn.Settings.SnoreNET.Sensitivity)

	// Invert: model output near 0 means snore.
	probability := float32(1.0 - confidence)
	return clampProbability(probability), nil
}

// customSigmoid applies a sigmoid function with sensitivity adjustment to a
// value. Sensitivity 1.0 is the plain logistic function.
func customSigmoid(x, sensitivity float64) float64 {
	return 1.0 / (1.0 + math.Exp(-sensitivity*logit(x)))
}

// logit maps a probability-like model output back onto the real line so the
// sensitivity-adjusted sigmoid can reshape it. Out-of-range values are
// clamped to keep the math finite.
func logit(p float64) float64 {
	const eps = 1e-7
	if p < eps {
		p = eps
	}
	if p > 1-eps {
		p = 1 - eps
	}
	return math.Log(p / (1 - p))
}

func clampProbability(p float32) float32 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
