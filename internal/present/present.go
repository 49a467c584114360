// Package present renders prediction and drift results into display values.
// Formatting only: nothing here touches counters or control flow.
package present

import (
	"fmt"

	"driftserve/internal/drift"
	"driftserve/internal/model"
	"driftserve/internal/schema"
)

// Row is one line of the drift table.
type Row struct {
	Feature string // technical name
	Label   string // human-friendly label
	Hint    string
	PValue  string // 3 decimal places
	Flagged bool
}

// DriftView is the rendered drift report.
type DriftView struct {
	IsDrift         bool
	Alpha           string
	Rows            []Row
	FlaggedFeatures []string
}

// View is the full rendered result for one request.
type View struct {
	PredictionLabel    string
	PredictionSentence string
	Probability        string // positive-class percentage, 2 d.p.; empty when unavailable
	Drift              *DriftView
	ErrorText          string
}

var (
	sexNames      = map[int]string{0: "Male", 1: "Female"}
	embarkedNames = map[int]string{0: "Cherbourg", 1: "Queenstown", 2: "Southampton"}
	titleNames    = map[int]string{0: "Mr", 1: "Miss", 2: "Mrs", 3: "Master", 4: "Rare"}
	pclassNames   = map[int]string{1: "First", 2: "Second", 3: "Third"}
)

// Render assembles the view for a successful request. A nil drift report
// (drift computation anomaly) yields a view with no drift section.
func Render(res model.PredictionResult, rep *drift.Report, p schema.Passenger) View {
	v := View{
		PredictionLabel:    outcomeLabel(res.Label),
		PredictionSentence: Sentence(p),
	}
	if res.Probability != nil {
		v.Probability = fmt.Sprintf("%.2f", *res.Probability*100)
	}
	if rep != nil {
		v.Drift = renderDrift(rep)
	}
	return v
}

func outcomeLabel(label int) string {
	if label == 1 {
		return "SURVIVED"
	}
	return "DID NOT SURVIVE"
}

// Sentence composes the natural-language summary of the passenger record.
func Sentence(p schema.Passenger) string {
	hasCabin := "without a cabin"
	if p.HasCabin == 1 {
		hasCabin = "with a cabin"
	}
	alone := "travelling with others"
	if p.Isalone == 1 {
		alone = "travelling alone"
	}
	return fmt.Sprintf(
		"A %s aged %d in %s, paying fare %d, embarked at %s, title %s, family size %d, %s, %s.",
		lookup(sexNames, p.Sex, "Person"),
		p.Age,
		lookup(pclassNames, p.Pclass, fmt.Sprintf("class %d", p.Pclass)),
		p.Fare,
		lookup(embarkedNames, p.Embarked, "Unknown"),
		lookup(titleNames, p.Title, "Unknown"),
		p.Familysize,
		hasCabin,
		alone,
	)
}

func renderDrift(rep *drift.Report) *DriftView {
	dv := &DriftView{
		IsDrift: rep.IsDrift,
		Alpha:   fmt.Sprintf("%.2f", rep.Alpha),
		Rows:    make([]Row, 0, len(rep.PValues)),
	}
	for j, pv := range rep.PValues {
		name := schema.FeatureNames[j]
		label := schema.Labels[name]
		row := Row{
			Feature: name,
			Label:   label.Name,
			Hint:    label.Hint,
			PValue:  fmt.Sprintf("%.3f", pv),
			Flagged: rep.Flagged[j],
		}
		dv.Rows = append(dv.Rows, row)
		if row.Flagged {
			dv.FlaggedFeatures = append(dv.FlaggedFeatures, label.Name)
		}
	}
	return dv
}

func lookup(m map[int]string, key int, fallback string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}
