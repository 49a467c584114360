package drift

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evenRef builds a reference of rows whose columns are evenly spaced over
// [-2, 2], a stand-in for a standardized population.
func evenRef(rows, cols int) [][]float64 {
	ref := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		v := -2 + 4*float64(i)/float64(rows-1)
		row := make([]float64, cols)
		for j := range row {
			row[j] = v
		}
		ref[i] = row
	}
	return ref
}

func TestNewDetector_RejectsDegenerateReference(t *testing.T) {
	t.Parallel()

	_, err := NewDetector(nil, []string{"a"})
	assert.Error(t, err)

	_, err = NewDetector([][]float64{{0.1}}, []string{"a"})
	assert.Error(t, err, "single-row reference is degenerate")

	_, err = NewDetector([][]float64{{0.1, 0.2}, {0.3}}, []string{"a", "b"})
	assert.Error(t, err, "ragged reference must be rejected")
}

func TestTest_ReportShape(t *testing.T) {
	t.Parallel()

	names := []string{"a", "b", "c"}
	det, err := NewDetector(evenRef(100, 3), names)
	require.NoError(t, err)

	rep, err := det.Test([]float64{0, 0.5, -1.2})
	require.NoError(t, err)

	assert.Len(t, rep.PValues, len(names))
	assert.Len(t, rep.Flagged, len(names))
	assert.Equal(t, Alpha, rep.Alpha)
	for j, p := range rep.PValues {
		assert.GreaterOrEqual(t, p, 0.0, "feature %d", j)
		assert.LessOrEqual(t, p, 1.0, "feature %d", j)
	}
}

func TestTest_InDistributionDoesNotFlag(t *testing.T) {
	t.Parallel()

	det, err := NewDetector(evenRef(200, 2), []string{"a", "b"})
	require.NoError(t, err)

	rep, err := det.Test([]float64{0.1, -0.3})
	require.NoError(t, err)

	assert.False(t, rep.IsDrift)
	for j, p := range rep.PValues {
		assert.GreaterOrEqual(t, p, Alpha, "feature %d should not reject", j)
		assert.False(t, rep.Flagged[j])
	}
}

func TestTest_OutlierFlagsOnlyThatFeature(t *testing.T) {
	t.Parallel()

	det, err := NewDetector(evenRef(200, 2), []string{"a", "b"})
	require.NoError(t, err)

	// Feature b sits far outside the reference range.
	rep, err := det.Test([]float64{0.0, 50.0})
	require.NoError(t, err)

	assert.True(t, rep.IsDrift)
	assert.False(t, rep.Flagged[0])
	assert.True(t, rep.Flagged[1])
	assert.Less(t, rep.PValues[1], Alpha)
	// IsDrift iff at least one flag, both directions.
	any := rep.Flagged[0] || rep.Flagged[1]
	assert.Equal(t, any, rep.IsDrift)
}

func TestTest_InputErrors(t *testing.T) {
	t.Parallel()

	det, err := NewDetector(evenRef(50, 2), []string{"a", "b"})
	require.NoError(t, err)

	_, err = det.Test([]float64{1.0})
	assert.Error(t, err, "wrong width")

	_, err = det.Test([]float64{math.NaN(), 0})
	assert.Error(t, err, "NaN scaled value")

	_, err = det.Test([]float64{0, math.Inf(1)})
	assert.Error(t, err, "infinite scaled value")
}

func TestTest_DoesNotMutateReference(t *testing.T) {
	t.Parallel()

	det, err := NewDetector(evenRef(100, 1), []string{"a"})
	require.NoError(t, err)

	before := make([]float64, len(det.refCols[0]))
	copy(before, det.refCols[0])

	for i := 0; i < 10; i++ {
		_, err := det.Test([]float64{float64(i) * 3})
		require.NoError(t, err)
	}
	assert.Equal(t, before, det.refCols[0])
}

func TestKSPValue(t *testing.T) {
	t.Parallel()

	ref := make([]float64, 100)
	for i := range ref {
		ref[i] = float64(i) // sorted 0..99
	}

	tests := []struct {
		name  string
		x     float64
		check func(t *testing.T, p float64)
	}{
		{
			name: "median value has p near 1",
			x:    49.5,
			check: func(t *testing.T, p float64) {
				assert.InDelta(t, 1.0, p, 0.05)
			},
		},
		{
			name: "below all reference values",
			x:    -10,
			check: func(t *testing.T, p float64) {
				// D = 1; exactly two of the n+1 ranks are that extreme.
				assert.InDelta(t, 2.0/101.0, p, 1e-12)
			},
		},
		{
			name: "above all reference values",
			x:    1e6,
			check: func(t *testing.T, p float64) {
				assert.InDelta(t, 2.0/101.0, p, 1e-12)
				assert.Less(t, p, Alpha)
			},
		},
		{
			name: "lower quartile is unremarkable",
			x:    24.5,
			check: func(t *testing.T, p float64) {
				assert.Greater(t, p, Alpha)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ksPValue(ref, tt.x))
		})
	}
}

func TestKolmogorovQ(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, kolmogorovQ(0))
	assert.Equal(t, 1.0, kolmogorovQ(-1))

	// Known value: Q(1.36) is approximately 0.05 (the classic critical
	// point of the Kolmogorov distribution).
	assert.InDelta(t, 0.05, kolmogorovQ(1.36), 0.003)

	// Monotonically decreasing.
	prev := 1.0
	for _, l := range []float64{0.2, 0.5, 0.8, 1.1, 1.5, 2.0, 3.0} {
		q := kolmogorovQ(l)
		assert.LessOrEqual(t, q, prev, "lambda=%f", l)
		prev = q
	}
}
