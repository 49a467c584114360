package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/rs/zerolog/log"
)

// Node is one decision node in a serialized tree. Feature == -1 marks a
// leaf, in which case Counts holds the per-class training sample counts at
// that leaf.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Counts    []float64 `json:"counts,omitempty"`
}

// Tree is one decision tree, nodes stored flat with index links, root at 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Forest is the tree-ensemble classifier artifact, loaded once from disk at
// startup and read-only afterwards. Predict averages the leaf class
// distributions across trees and takes the argmax, which also gives
// PredictProba for free.
type Forest struct {
	NumFeatures int    `json:"num_features"`
	NumClasses  int    `json:"num_classes"`
	Trees       []Tree `json:"trees"`
}

// LoadForest reads and validates the JSON forest artifact. Validation
// failures here are fatal at startup, never per-request.
func LoadForest(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact %s: %w", path, err)
	}
	var f Forest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse model artifact %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	log.Info().
		Str("model_path", path).
		Int("trees", len(f.Trees)).
		Int("num_features", f.NumFeatures).
		Msg("model artifact loaded")
	return &f, nil
}

func (f *Forest) validate() error {
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	if f.NumFeatures <= 0 {
		return fmt.Errorf("forest declares %d features", f.NumFeatures)
	}
	if f.NumClasses != 2 {
		return fmt.Errorf("forest declares %d classes, want 2", f.NumClasses)
	}
	for ti, t := range f.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for ni, n := range t.Nodes {
			if n.Feature == -1 {
				if len(n.Counts) != f.NumClasses {
					return fmt.Errorf("tree %d leaf %d has %d class counts, want %d", ti, ni, len(n.Counts), f.NumClasses)
				}
				continue
			}
			if n.Feature < 0 || n.Feature >= f.NumFeatures {
				return fmt.Errorf("tree %d node %d splits on feature %d, schema has %d", ti, ni, n.Feature, f.NumFeatures)
			}
			if math.IsNaN(n.Threshold) || math.IsInf(n.Threshold, 0) {
				return fmt.Errorf("tree %d node %d has non-finite threshold", ti, ni)
			}
			if n.Left < 0 || n.Left >= len(t.Nodes) || n.Right < 0 || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d has child index out of range", ti, ni)
			}
			// Children must come strictly after their parent in the flat
			// layout, which rules out cycles and guarantees walk terminates.
			if n.Left <= ni || n.Right <= ni {
				return fmt.Errorf("tree %d node %d has child index %d not after parent", ti, ni, min(n.Left, n.Right))
			}
		}
	}
	return nil
}

// Predict implements Model: argmax of the averaged class distribution.
func (f *Forest) Predict(features []float64) (int, error) {
	probs, err := f.PredictProba(features)
	if err != nil {
		return 0, err
	}
	if probs[1] > probs[0] {
		return 1, nil
	}
	return 0, nil
}

// PredictProba implements ProbabilityEstimator: per-class probabilities
// averaged over each tree's leaf distribution.
func (f *Forest) PredictProba(features []float64) ([]float64, error) {
	if len(features) != f.NumFeatures {
		return nil, fmt.Errorf("vector has %d features, model expects %d", len(features), f.NumFeatures)
	}
	for i, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("feature %d is non-finite: %f", i, v)
		}
	}

	avg := make([]float64, f.NumClasses)
	for _, t := range f.Trees {
		leaf := t.walk(features)
		total := 0.0
		for _, c := range leaf.Counts {
			total += c
		}
		if total == 0 {
			continue
		}
		for c, cnt := range leaf.Counts {
			avg[c] += cnt / total
		}
	}
	for c := range avg {
		avg[c] /= float64(len(f.Trees))
	}
	return avg, nil
}

func (t *Tree) walk(features []float64) *Node {
	idx := 0
	for {
		n := &t.Nodes[idx]
		if n.Feature == -1 {
			return n
		}
		if features[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
}
