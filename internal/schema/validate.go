package schema

import (
	"fmt"
	"math"
	"strconv"
)

// ValidationError reports a request field that failed coercion or bounds.
// It never reaches drift testing or inference; the HTTP layer maps it to a
// 400 response.
type ValidationError struct {
	Field string
	Cause string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Cause)
}

// Validate coerces and bounds-checks the raw form fields and returns the
// validated Passenger. Field rules:
//
//	Age        float→int  0–120 inclusive
//	Fare       float→int  0–10000 inclusive
//	Pclass     int        one of {1,2,3}
//	Sex        int        unconstrained (0/1 expected)
//	Embarked   int        unconstrained (0/1/2 expected)
//	Familysize float→int  >= 0
//	Isalone    int        unconstrained (0/1 expected)
//	HasCabin   int        unconstrained (0/1 expected)
//	Title      int        unconstrained (0–4 expected)
func Validate(form map[string]string) (Passenger, error) {
	var p Passenger
	var err error

	if p.Age, err = floatField(form, "Age"); err != nil {
		return Passenger{}, err
	}
	if p.Age < 0 || p.Age > 120 {
		return Passenger{}, &ValidationError{Field: "Age", Cause: "Age out of valid range (0-120)"}
	}

	if p.Fare, err = floatField(form, "Fare"); err != nil {
		return Passenger{}, err
	}
	if p.Fare < 0 || p.Fare > 10000 {
		return Passenger{}, &ValidationError{Field: "Fare", Cause: "Fare out of valid range (0-10000)"}
	}

	if p.Pclass, err = intField(form, "Pclass"); err != nil {
		return Passenger{}, err
	}
	if p.Pclass != 1 && p.Pclass != 2 && p.Pclass != 3 {
		return Passenger{}, &ValidationError{Field: "Pclass", Cause: "Pclass must be 1, 2, or 3"}
	}

	if p.Sex, err = intField(form, "Sex"); err != nil {
		return Passenger{}, err
	}
	if p.Embarked, err = intField(form, "Embarked"); err != nil {
		return Passenger{}, err
	}

	if p.Familysize, err = floatField(form, "Familysize"); err != nil {
		return Passenger{}, err
	}
	if p.Familysize < 0 {
		return Passenger{}, &ValidationError{Field: "Familysize", Cause: "Family Size cannot be negative"}
	}

	if p.Isalone, err = intField(form, "Isalone"); err != nil {
		return Passenger{}, err
	}
	if p.HasCabin, err = intField(form, "HasCabin"); err != nil {
		return Passenger{}, err
	}
	if p.Title, err = intField(form, "Title"); err != nil {
		return Passenger{}, err
	}

	return p, nil
}

// floatField parses a decimal string and truncates it to an int, matching
// the float→int coercion the model was trained with.
func floatField(form map[string]string, name string) (int, error) {
	raw, ok := form[name]
	if !ok || raw == "" {
		return 0, &ValidationError{Field: name, Cause: fmt.Sprintf("%s is required", name)}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ValidationError{Field: name, Cause: fmt.Sprintf("%s must be a number", name)}
	}
	return int(f), nil
}

func intField(form map[string]string, name string) (int, error) {
	raw, ok := form[name]
	if !ok || raw == "" {
		return 0, &ValidationError{Field: name, Cause: fmt.Sprintf("%s is required", name)}
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: name, Cause: fmt.Sprintf("%s must be an integer", name)}
	}
	return i, nil
}
