package schema

// Passenger holds the validated raw request fields. The two interaction
// features are not stored here; Vector recomputes them so they can never
// disagree with the raw fields they derive from.
type Passenger struct {
	Age        int
	Fare       int
	Pclass     int
	Sex        int
	Embarked   int
	Familysize int
	Isalone    int
	HasCabin   int
	Title      int
}

// Vector returns the unscaled feature row in FeatureNames order, with
// Pclass_Fare and Age_Fare computed server-side.
func (p Passenger) Vector() []float64 {
	return []float64{
		float64(p.Age),
		float64(p.Fare),
		float64(p.Pclass),
		float64(p.Sex),
		float64(p.Embarked),
		float64(p.Familysize),
		float64(p.Isalone),
		float64(p.HasCabin),
		float64(p.Title),
		float64(p.Pclass * p.Fare),
		float64(p.Age * p.Fare),
	}
}
