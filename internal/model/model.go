// Package model wraps the trained classifier artifact behind a capability
// interface. Every model must classify; probability estimation is optional
// and its absence or failure never fails a request.
package model

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Model is the required capability: classify one feature vector into the
// binary label {0,1}.
type Model interface {
	Predict(features []float64) (int, error)
}

// ProbabilityEstimator is the optional capability: class probabilities for
// one feature vector, [p0, p1].
type ProbabilityEstimator interface {
	PredictProba(features []float64) ([]float64, error)
}

// PredictionResult is the outcome of a single inference. Probability is the
// positive-class probability and is nil when the model lacks or fails
// probability estimation.
type PredictionResult struct {
	Label       int
	Probability *float64
}

// Engine invokes the model for a single request. Classification failures
// surface as errors; probability failures degrade to a classification-only
// result with a warning.
type Engine struct {
	model Model
}

func NewEngine(m Model) *Engine {
	return &Engine{model: m}
}

// Predict classifies the vector and, when the model supports it, attaches
// the positive-class probability.
func (e *Engine) Predict(vec []float64) (PredictionResult, error) {
	label, err := e.model.Predict(vec)
	if err != nil {
		return PredictionResult{}, fmt.Errorf("model predict: %w", err)
	}
	res := PredictionResult{Label: label}

	if pe, ok := e.model.(ProbabilityEstimator); ok {
		probs, err := pe.PredictProba(vec)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("predict_proba failed, serving classification only")
		case len(probs) != 2:
			log.Warn().Int("classes", len(probs)).Msg("predict_proba returned unexpected shape, serving classification only")
		default:
			p := probs[1]
			res.Probability = &p
		}
	}
	return res, nil
}
