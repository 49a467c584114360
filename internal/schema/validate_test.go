package schema

import (
	"errors"
	"strings"
	"testing"
)

func validForm() map[string]string {
	return map[string]string{
		"Age":        "29",
		"Fare":       "72",
		"Pclass":     "1",
		"Sex":        "0",
		"Embarked":   "0",
		"Familysize": "1",
		"Isalone":    "1",
		"HasCabin":   "1",
		"Title":      "0",
	}
}

func TestValidate_Scenario(t *testing.T) {
	t.Parallel()

	p, err := Validate(validForm())
	if err != nil {
		t.Fatalf("Validate returned error for valid form: %v", err)
	}

	vec := p.Vector()
	if len(vec) != NumFeatures {
		t.Fatalf("expected vector of %d features, got %d", NumFeatures, len(vec))
	}
	if vec[9] != 72 { // Pclass_Fare = 1 * 72
		t.Errorf("expected Pclass_Fare 72, got %f", vec[9])
	}
	if vec[10] != 2088 { // Age_Fare = 29 * 72
		t.Errorf("expected Age_Fare 2088, got %f", vec[10])
	}
}

func TestValidate_Bounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		field    string
		value    string
		wantErr  bool
		errorHas string
	}{
		{name: "age lower bound", field: "Age", value: "0"},
		{name: "age upper bound", field: "Age", value: "120"},
		{name: "age above range", field: "Age", value: "121", wantErr: true, errorHas: "Age out of valid range"},
		{name: "age below range", field: "Age", value: "-1", wantErr: true, errorHas: "Age out of valid range"},
		{name: "fare lower bound", field: "Fare", value: "0"},
		{name: "fare upper bound", field: "Fare", value: "10000"},
		{name: "fare above range", field: "Fare", value: "10001", wantErr: true, errorHas: "Fare out of valid range"},
		{name: "fare way above range", field: "Fare", value: "50000", wantErr: true, errorHas: "Fare out of valid range"},
		{name: "pclass one", field: "Pclass", value: "1"},
		{name: "pclass three", field: "Pclass", value: "3"},
		{name: "pclass four", field: "Pclass", value: "4", wantErr: true, errorHas: "Pclass must be 1, 2, or 3"},
		{name: "negative family size", field: "Familysize", value: "-2", wantErr: true, errorHas: "Family Size cannot be negative"},
		{name: "age decimal string", field: "Age", value: "29.7"},
		{name: "age not a number", field: "Age", value: "abc", wantErr: true, errorHas: "Age must be a number"},
		{name: "sex not an integer", field: "Sex", value: "1.5", wantErr: true, errorHas: "Sex must be an integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			form[tt.field] = tt.value

			_, err := Validate(form)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s=%s, got none", tt.field, tt.value)
				}
				if !strings.Contains(err.Error(), tt.errorHas) {
					t.Errorf("expected error containing %q, got %q", tt.errorHas, err.Error())
				}
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("expected *ValidationError, got %T", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error for %s=%s: %v", tt.field, tt.value, err)
			}
		})
	}
}

func TestValidate_MissingField(t *testing.T) {
	t.Parallel()

	form := validForm()
	delete(form, "Embarked")

	_, err := Validate(form)
	if err == nil {
		t.Fatal("expected error for missing Embarked")
	}
	if !strings.Contains(err.Error(), "Embarked is required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_FloatCoercionTruncates(t *testing.T) {
	t.Parallel()

	form := validForm()
	form["Age"] = "29.9"
	form["Fare"] = "72.4"

	p, err := Validate(form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Age != 29 {
		t.Errorf("expected Age truncated to 29, got %d", p.Age)
	}
	if p.Fare != 72 {
		t.Errorf("expected Fare truncated to 72, got %d", p.Fare)
	}
}
