package metrics

// Recorder is the narrow facade the request pipeline records through, so
// the pipeline depends on two operations instead of the prometheus types.
type Recorder struct {
	m *Metrics
}

func NewRecorder(m *Metrics) *Recorder {
	return &Recorder{m: m}
}

// RecordPrediction increments the prediction counter. Called exactly once
// per successful classification, never on validation failures.
func (r *Recorder) RecordPrediction() {
	r.m.PredictionCount.Inc()
}

// RecordDrift increments the drift counter iff the request's aggregate
// drift flag is set.
func (r *Recorder) RecordDrift(isDrift bool) {
	if isDrift {
		r.m.DriftCount.Inc()
	}
}
