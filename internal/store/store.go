// Package store provides clients for the persistent key-value feature
// store. The store itself is an external collaborator; this service only
// consumes it through the get-all-ids / get-batch / get-single contract,
// and only at startup to capture the reference population.
//
// Three interchangeable backends are provided: Redis (the canonical
// deployment), an embedded BoltDB file for development and air-gapped
// setups, and a remote HTTP client for deployments where the store sits
// behind a service.
package store

import "context"

// FeatureStore is the read contract consumed by the baseline builder.
type FeatureStore interface {
	// GetAllEntityIDs returns every entity identifier currently known to
	// the store.
	GetAllEntityIDs(ctx context.Context) ([]string, error)
	// GetBatchFeatures returns the feature dict of each requested entity,
	// keyed by entity id. Entities missing from the store are absent from
	// the result rather than an error.
	GetBatchFeatures(ctx context.Context, ids []string) (map[string]map[string]float64, error)
	// GetFeatures returns one entity's feature dict, or nil when the
	// entity is unknown.
	GetFeatures(ctx context.Context, id string) (map[string]float64, error)
}

// Writer is the write side of the store boundary, used by the seeding tool
// rather than the serving path.
type Writer interface {
	PutFeatures(ctx context.Context, id string, features map[string]float64) error
}
