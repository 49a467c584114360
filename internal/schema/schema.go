// Package schema defines the fixed feature layout shared by every stage of
// the inference pipeline: reference fitting, scaling, drift testing, and
// model inference all consume the same ordered feature list. A mismatch in
// order silently corrupts results, so the order lives here and nowhere else.
package schema

// FeatureNames is the canonical column order: nine raw passenger fields
// followed by the two server-computed interaction features.
var FeatureNames = []string{
	"Age",
	"Fare",
	"Pclass",
	"Sex",
	"Embarked",
	"Familysize",
	"Isalone",
	"HasCabin",
	"Title",
	"Pclass_Fare",
	"Age_Fare",
}

// NumFeatures is the width of every feature vector and reference row.
var NumFeatures = len(FeatureNames)

// Label carries the human-friendly name and optional hint shown in the
// drift table.
type Label struct {
	Name string
	Hint string
}

// Labels maps technical feature names to display labels.
var Labels = map[string]Label{
	"Age":         {Name: "Age of Passenger"},
	"Fare":        {Name: "Ticket Fare", Hint: "Price paid for the ticket"},
	"Pclass":      {Name: "Passenger Class", Hint: "1 = First, 2 = Second, 3 = Third"},
	"Sex":         {Name: "Sex", Hint: "0 = Male, 1 = Female"},
	"Embarked":    {Name: "Port of Embarkation", Hint: "0 = Cherbourg, 1 = Queenstown, 2 = Southampton"},
	"Familysize":  {Name: "Family Size", Hint: "Siblings/Spouses + Parents/Children + 1"},
	"Isalone":     {Name: "Is Alone", Hint: "1 = Yes, 0 = No"},
	"HasCabin":    {Name: "Has Cabin", Hint: "1 = Yes, 0 = No"},
	"Title":       {Name: "Passenger Title", Hint: "Mr / Miss / Mrs / Master / Rare"},
	"Pclass_Fare": {Name: "Passenger Class × Fare", Hint: "Interaction: class multiplied by fare"},
	"Age_Fare":    {Name: "Age × Fare", Hint: "Interaction: age multiplied by fare"},
}
