package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const featuresBucket = "features"

// BoltStore is an embedded feature store backed by a single BoltDB file.
// It serves development and air-gapped deployments where no Redis is
// available, and is the default target of the seeding tool.
type BoltStore struct {
	db *bbolt.DB
}

// NewBolt opens (or creates) the feature database under dataPath.
func NewBolt(dataPath string) (*BoltStore, error) {
	dbPath := filepath.Join(dataPath, "driftserve-features.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open feature database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(featuresBucket)); err != nil {
			return fmt.Errorf("create features bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) GetAllEntityIDs(_ context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(featuresBucket))
		return b.ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bolt scan: %w", err)
	}
	return ids, nil
}

func (s *BoltStore) GetBatchFeatures(ctx context.Context, ids []string) (map[string]map[string]float64, error) {
	out := make(map[string]map[string]float64, len(ids))
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(featuresBucket))
		for _, id := range ids {
			data := b.Get([]byte(id))
			if data == nil {
				continue
			}
			var features map[string]float64
			if err := json.Unmarshal(data, &features); err != nil {
				return fmt.Errorf("decode features for entity %s: %w", id, err)
			}
			out[id] = features
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltStore) GetFeatures(_ context.Context, id string) (map[string]float64, error) {
	var features map[string]float64
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(featuresBucket))
		data := b.Get([]byte(id))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &features)
	})
	if err != nil {
		return nil, fmt.Errorf("bolt get %s: %w", id, err)
	}
	return features, nil
}

func (s *BoltStore) PutFeatures(_ context.Context, id string, features map[string]float64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(featuresBucket))

		data, err := json.Marshal(features)
		if err != nil {
			return fmt.Errorf("marshal features for entity %s: %w", id, err)
		}
		return b.Put([]byte(id), data)
	})
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
