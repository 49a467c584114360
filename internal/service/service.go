// Package service wires the per-request pipeline: validate, build the
// feature vector, scale, drift-test, infer, record, present. The Service is
// constructed once at startup from components that are immutable afterwards
// and is shared by every request goroutine; the only mutable state it
// touches are the atomic Prometheus counters behind the Recorder.
package service

import (
	"fmt"

	"driftserve/internal/drift"
	"driftserve/internal/model"
	"driftserve/internal/present"
	"driftserve/internal/scale"
	"driftserve/internal/schema"

	"github.com/rs/zerolog/log"
)

// Recorder is what the pipeline needs from the observability layer.
type Recorder interface {
	RecordPrediction()
	RecordDrift(isDrift bool)
}

// InferenceError wraps a classifier failure. The HTTP layer maps it to a
// 400 with the underlying cause; it is never retried.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %v", e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// Service is the immutable request-handling context.
type Service struct {
	scaler   *scale.Scaler
	detector *drift.Detector
	engine   *model.Engine
	recorder Recorder
}

func New(scaler *scale.Scaler, detector *drift.Detector, engine *model.Engine, recorder Recorder) *Service {
	return &Service{
		scaler:   scaler,
		detector: detector,
		engine:   engine,
		recorder: recorder,
	}
}

// Handle runs one request through the full pipeline. The returned error is
// either a *schema.ValidationError or an *InferenceError; drift anomalies
// never fail the request, they degrade it to a prediction without a drift
// report.
func (s *Service) Handle(form map[string]string) (present.View, error) {
	p, err := schema.Validate(form)
	if err != nil {
		return present.View{}, err
	}
	vec := p.Vector()

	scaled, err := s.scaler.Transform(vec)
	if err != nil {
		// Schema/scaler width mismatch is a deployment bug, not user input.
		return present.View{}, &InferenceError{Err: err}
	}

	rep, err := s.detector.Test(scaled)
	if err != nil {
		// Drift detection is best-effort; log with enough context to
		// reconstruct the request and keep serving.
		log.Error().
			Err(err).
			Floats64("scaled", scaled).
			Msg("drift test failed, serving prediction without drift report")
		rep = nil
	} else {
		log.Info().
			Bool("is_drift", rep.IsDrift).
			Float64("alpha", rep.Alpha).
			Floats64("p_values", rep.PValues).
			Msg("drift check")
	}

	// The model is trained on raw feature values; scaling feeds only the
	// drift test.
	res, err := s.engine.Predict(vec)
	if err != nil {
		log.Error().
			Err(err).
			Floats64("features", vec).
			Msg("classification failed")
		return present.View{}, &InferenceError{Err: err}
	}

	s.recorder.RecordPrediction()
	isDrift := rep != nil && rep.IsDrift
	if isDrift {
		log.Warn().
			Floats64("p_values", rep.PValues).
			Msg("drift detected")
	}
	s.recorder.RecordDrift(isDrift)

	return present.Render(res, rep, p), nil
}
