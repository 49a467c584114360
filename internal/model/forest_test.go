package model

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testForest is a two-tree stump ensemble over 2 features:
// tree 0 splits on feature 0 at 0.5, tree 1 splits on feature 1 at 10.
func testForest() *Forest {
	return &Forest{
		NumFeatures: 2,
		NumClasses:  2,
		Trees: []Tree{
			{Nodes: []Node{
				{Feature: 0, Threshold: 0.5, Left: 1, Right: 2},
				{Feature: -1, Counts: []float64{9, 1}},  // left leaf: mostly class 0
				{Feature: -1, Counts: []float64{2, 18}}, // right leaf: mostly class 1
			}},
			{Nodes: []Node{
				{Feature: 1, Threshold: 10, Left: 1, Right: 2},
				{Feature: -1, Counts: []float64{3, 1}},
				{Feature: -1, Counts: []float64{1, 3}},
			}},
		},
	}
}

func TestForest_PredictProba(t *testing.T) {
	t.Parallel()

	f := testForest()

	// Both trees route right: tree 0 gives 0.9 for class 1, tree 1 gives
	// 0.75; average is 0.825.
	probs, err := f.PredictProba([]float64{1, 20})
	require.NoError(t, err)
	require.Len(t, probs, 2)
	assert.InDelta(t, 0.825, probs[1], 1e-9)
	assert.InDelta(t, 1.0, probs[0]+probs[1], 1e-9)

	label, err := f.Predict([]float64{1, 20})
	require.NoError(t, err)
	assert.Equal(t, 1, label)

	// Both trees route left: average class-1 probability is
	// (0.1 + 0.25) / 2 = 0.175.
	probs, err = f.PredictProba([]float64{0, 5})
	require.NoError(t, err)
	assert.InDelta(t, 0.175, probs[1], 1e-9)

	label, err = f.Predict([]float64{0, 5})
	require.NoError(t, err)
	assert.Equal(t, 0, label)
}

func TestForest_PredictErrors(t *testing.T) {
	t.Parallel()

	f := testForest()

	_, err := f.Predict([]float64{1})
	assert.Error(t, err, "wrong feature count")

	_, err = f.Predict([]float64{math.NaN(), 1})
	assert.Error(t, err, "NaN feature")

	_, err = f.PredictProba([]float64{math.Inf(-1), 1})
	assert.Error(t, err, "infinite feature")
}

func TestLoadForest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "forest.json")
	data, err := json.Marshal(testForest())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	f, err := LoadForest(path)
	require.NoError(t, err)
	assert.Len(t, f.Trees, 2)

	label, err := f.Predict([]float64{1, 20})
	require.NoError(t, err)
	assert.Equal(t, 1, label)
}

func TestLoadForest_Invalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	write := func(name string, f *Forest) string {
		path := filepath.Join(dir, name)
		data, err := json.Marshal(f)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, data, 0o600))
		return path
	}

	_, err := LoadForest(filepath.Join(dir, "missing.json"))
	assert.Error(t, err, "missing artifact")

	empty := &Forest{NumFeatures: 2, NumClasses: 2}
	_, err = LoadForest(write("empty.json", empty))
	assert.Error(t, err, "forest with no trees")

	badFeature := testForest()
	badFeature.Trees[0].Nodes[0].Feature = 7
	_, err = LoadForest(write("badfeature.json", badFeature))
	assert.Error(t, err, "split feature outside schema")

	badCounts := testForest()
	badCounts.Trees[1].Nodes[1].Counts = []float64{1}
	_, err = LoadForest(write("badcounts.json", badCounts))
	assert.Error(t, err, "leaf with wrong class count")

	// Cyclic links would make walk spin forever, so they must be rejected
	// at load time: children have to come strictly after their parent.
	selfLoop := testForest()
	selfLoop.Trees[0].Nodes[0].Left = 0
	_, err = LoadForest(write("selfloop.json", selfLoop))
	assert.Error(t, err, "node pointing at itself")

	backEdge := &Forest{
		NumFeatures: 2,
		NumClasses:  2,
		Trees: []Tree{
			{Nodes: []Node{
				{Feature: 0, Threshold: 0.5, Left: 1, Right: 2},
				{Feature: 1, Threshold: 1, Left: 0, Right: 2},
				{Feature: -1, Counts: []float64{1, 1}},
			}},
		},
	}
	_, err = LoadForest(write("backedge.json", backEdge))
	assert.Error(t, err, "node pointing back at an ancestor")
}

func TestEngine_ProbabilityOptional(t *testing.T) {
	t.Parallel()

	// Forest supports PredictProba: probability attached.
	e := NewEngine(testForest())
	res, err := e.Predict([]float64{1, 20})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Label)
	require.NotNil(t, res.Probability)
	assert.InDelta(t, 0.825, *res.Probability, 1e-9)

	// Classifier without the probability capability: label only.
	e = NewEngine(classifierOnly{})
	res, err = e.Predict([]float64{1, 20})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Label)
	assert.Nil(t, res.Probability)

	// Probability failure degrades, never fails the request.
	e = NewEngine(flakyProba{})
	res, err = e.Predict([]float64{1, 20})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Label)
	assert.Nil(t, res.Probability)
}

type classifierOnly struct{}

func (classifierOnly) Predict([]float64) (int, error) { return 1, nil }

type flakyProba struct{}

func (flakyProba) Predict([]float64) (int, error) { return 0, nil }
func (flakyProba) PredictProba([]float64) ([]float64, error) {
	return nil, assert.AnError
}
