// Package baseline captures the reference population the drift detector
// tests against. It runs exactly once, before the service accepts traffic:
// the full historical feature population is pulled from the feature store,
// the standardization transform is fitted on it, and the same transform
// produces the scaled reference sample. Any failure here is fatal at
// startup; the service cannot serve correct drift tests without a baseline.
package baseline

import (
	"context"
	"fmt"

	"driftserve/internal/scale"
	"driftserve/internal/schema"
	"driftserve/internal/store"

	"github.com/rs/zerolog/log"
)

// Builder assembles the reference table from the feature store.
type Builder struct {
	store store.FeatureStore
}

func NewBuilder(fs store.FeatureStore) *Builder {
	return &Builder{store: fs}
}

// Build fetches every entity's feature dict in one batch call, fits the
// scaling transform on the raw table, and returns the transform together
// with the scaled reference sample.
func (b *Builder) Build(ctx context.Context) (*scale.Scaler, [][]float64, error) {
	ids, err := b.store.GetAllEntityIDs(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("baseline: list entities: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil, fmt.Errorf("baseline: feature store returned no entities")
	}

	features, err := b.store.GetBatchFeatures(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("baseline: batch fetch: %w", err)
	}

	table := make([][]float64, 0, len(ids))
	for _, id := range ids {
		dict, ok := features[id]
		if !ok {
			return nil, nil, fmt.Errorf("baseline: entity %s listed but absent from batch result", id)
		}
		row := make([]float64, schema.NumFeatures)
		for j, name := range schema.FeatureNames {
			v, ok := dict[name]
			if !ok {
				return nil, nil, fmt.Errorf("baseline: entity %s is missing feature %s", id, name)
			}
			row[j] = v
		}
		table = append(table, row)
	}

	scaler, err := scale.Fit(table, schema.NumFeatures)
	if err != nil {
		return nil, nil, fmt.Errorf("baseline: fit scaler: %w", err)
	}
	ref, err := scaler.TransformTable(table)
	if err != nil {
		return nil, nil, fmt.Errorf("baseline: scale reference: %w", err)
	}

	log.Info().
		Int("entities", len(ref)).
		Int("features", schema.NumFeatures).
		Msg("reference baseline captured")
	return scaler, ref, nil
}
