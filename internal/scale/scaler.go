// Package scale implements the per-feature standardization transform fitted
// on the reference population. The same fitted transform scales both the
// reference sample and every incoming request; using two different
// transforms would invalidate the drift test's statistical premise.
package scale

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scaler holds the fitted per-feature (mean, scale) pairs. Immutable after
// Fit; shared across request goroutines without locking.
type Scaler struct {
	mean  []float64
	scale []float64
}

// Fit computes the per-feature mean and population standard deviation from
// the raw reference table. Columns with zero variance get scale 1 so the
// transform never divides by zero.
func Fit(table [][]float64, cols int) (*Scaler, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("scale: cannot fit on an empty table")
	}
	for i, row := range table {
		if len(row) != cols {
			return nil, fmt.Errorf("scale: row %d has %d columns, want %d", i, len(row), cols)
		}
	}

	s := &Scaler{
		mean:  make([]float64, cols),
		scale: make([]float64, cols),
	}
	col := make([]float64, len(table))
	for j := 0; j < cols; j++ {
		for i, row := range table {
			col[i] = row[j]
		}
		s.mean[j] = stat.Mean(col, nil)
		sd := stat.PopStdDev(col, nil)
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		s.scale[j] = sd
	}
	return s, nil
}

// Transform standardizes a single raw feature row.
func (s *Scaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.mean) {
		return nil, fmt.Errorf("scale: vector has %d features, scaler fitted on %d", len(row), len(s.mean))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.mean[j]) / s.scale[j]
	}
	return out, nil
}

// TransformTable standardizes every row of a table fitted with the same
// column count. Used once, to produce the scaled reference sample.
func (s *Scaler) TransformTable(table [][]float64) ([][]float64, error) {
	out := make([][]float64, len(table))
	for i, row := range table {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

// Mean returns a copy of the fitted per-feature means.
func (s *Scaler) Mean() []float64 {
	out := make([]float64, len(s.mean))
	copy(out, s.mean)
	return out
}

// Scale returns a copy of the fitted per-feature standard deviations.
func (s *Scaler) Scale() []float64 {
	out := make([]float64, len(s.scale))
	copy(out, s.scale)
	return out
}

// NumFeatures returns the column count the scaler was fitted on.
func (s *Scaler) NumFeatures() int {
	return len(s.mean)
}
