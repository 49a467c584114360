// Package drift implements per-feature Kolmogorov–Smirnov drift testing of
// incoming scaled feature vectors against a fixed scaled reference sample.
// The detector is constructed once at startup and is read-only afterwards:
// testing never updates the reference, so concurrent requests share it
// without locking.
package drift

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog/log"
)

// Alpha is the fixed per-feature significance level: a feature's test
// rejects the null hypothesis (population unchanged) when its p-value falls
// below Alpha.
const Alpha = 0.05

// Report is the per-request drift result. Derived fresh per request and
// read-only once produced.
type Report struct {
	PValues []float64 // per-feature p-value in [0,1], FeatureNames order
	Flagged []bool    // PValues[i] < Alpha
	IsDrift bool      // true iff at least one feature rejects
	Alpha   float64
}

// Detector holds the sorted scaled reference columns. Each feature is
// tested independently; no multiple-comparisons correction is applied, so
// with 11 features at alpha=0.05 the aggregate false-positive rate under a
// stable population exceeds 5%. That matches the reference behaviour and is
// a documented property, not a bug.
type Detector struct {
	names   []string
	refCols [][]float64 // per feature, ascending
}

// NewDetector builds a detector from the scaled reference sample. The
// sample needs at least 2 rows per column or the K-S test is degenerate, so
// a smaller reference is rejected here rather than producing an undefined
// p-value later.
func NewDetector(ref [][]float64, names []string) (*Detector, error) {
	if len(ref) < 2 {
		return nil, fmt.Errorf("drift: reference sample has %d rows, need at least 2", len(ref))
	}
	for i, row := range ref {
		if len(row) != len(names) {
			return nil, fmt.Errorf("drift: reference row %d has %d columns, want %d", i, len(row), len(names))
		}
	}

	d := &Detector{
		names:   names,
		refCols: make([][]float64, len(names)),
	}
	for j := range names {
		col := make([]float64, len(ref))
		for i, row := range ref {
			col[i] = row[j]
		}
		sort.Float64s(col)
		d.refCols[j] = col

		// Per-column diagnostics so a misbehaving baseline can be
		// reconstructed from the logs.
		median, _ := stats.Median(col)
		iqr, _ := stats.InterQuartileRange(col)
		log.Debug().
			Str("feature", names[j]).
			Int("rows", len(col)).
			Float64("median", median).
			Float64("iqr", iqr).
			Msg("drift reference column ready")
	}

	log.Info().
		Int("rows", len(ref)).
		Int("features", len(names)).
		Float64("alpha", Alpha).
		Msg("drift detector initialized")
	return d, nil
}

// Test runs the per-feature two-sample K-S test of one scaled vector
// against the reference baseline. The reference is never mutated.
func (d *Detector) Test(scaled []float64) (*Report, error) {
	if len(scaled) != len(d.names) {
		return nil, fmt.Errorf("drift: vector has %d features, detector holds %d", len(scaled), len(d.names))
	}

	rep := &Report{
		PValues: make([]float64, len(scaled)),
		Flagged: make([]bool, len(scaled)),
		Alpha:   Alpha,
	}
	for j, x := range scaled {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("drift: feature %s has non-finite scaled value %f", d.names[j], x)
		}
		p := ksPValue(d.refCols[j], x)
		if math.IsNaN(p) {
			return nil, fmt.Errorf("drift: degenerate p-value for feature %s", d.names[j])
		}
		rep.PValues[j] = p
		if p < Alpha {
			rep.Flagged[j] = true
			rep.IsDrift = true
		}
	}
	return rep, nil
}

// FeatureNames returns the feature order the detector was built with.
func (d *Detector) FeatureNames() []string {
	return d.names
}

// exactThreshold is the reference size above which the asymptotic
// Kolmogorov distribution replaces the exact null distribution, mirroring
// the auto mode of the usual two-sample K-S implementations.
const exactThreshold = 10000

// ksPValue runs the two-sample K-S test of a single observation against a
// sorted reference column. The second sample's empirical CDF is the step
// function jumping from 0 to 1 at x, so the K-S statistic reduces to
//
//	D = max(F_ref(x^-), 1 - F_ref(x))
//
// Under the null the observation's rank among the reference values is
// uniform on {0..n}, which gives the exact p-value directly: the fraction
// of ranks whose statistic is at least as extreme as the observed one.
func ksPValue(sortedRef []float64, x float64) float64 {
	n := len(sortedRef)
	below := sort.SearchFloat64s(sortedRef, x) // count of ref values < x
	atOrBelow := sort.Search(n, func(i int) bool { return sortedRef[i] > x })

	fn := float64(n)
	d := math.Max(float64(below)/fn, 1-float64(atOrBelow)/fn)

	if n > exactThreshold {
		en := math.Sqrt(fn * 1 / (fn + 1))
		// Small-sample correction from Numerical Recipes.
		lambda := (en + 0.12 + 0.11/en) * d
		return kolmogorovQ(lambda)
	}

	extreme := 0
	for r := 0; r <= n; r++ {
		rd := math.Max(float64(r)/fn, 1-float64(r)/fn)
		if rd >= d-1e-12 {
			extreme++
		}
	}
	return float64(extreme) / (fn + 1)
}

// kolmogorovQ evaluates the survival function of the Kolmogorov
// distribution, Q(lambda) = 2 * sum_{j>=1} (-1)^(j-1) exp(-2 j^2 lambda^2).
func kolmogorovQ(lambda float64) float64 {
	if lambda <= 0 {
		return 1
	}
	var sum float64
	sign := 1.0
	for j := 1; j <= 100; j++ {
		term := math.Exp(-2 * float64(j*j) * lambda * lambda)
		sum += sign * term
		if term < 1e-12 {
			break
		}
		sign = -sign
	}
	p := 2 * sum
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
