package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Feature dicts are stored as JSON strings under entity:<id>:features.
const (
	keyPrefix = "entity:"
	keySuffix = ":features"
)

// RedisStore is the canonical feature-store client.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(addr, password string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Ping verifies connectivity so an unreachable store fails at startup
// instead of during baseline capture.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *RedisStore) GetAllEntityIDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, keyPrefix+"*"+keySuffix, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id := strings.TrimSuffix(strings.TrimPrefix(key, keyPrefix), keySuffix)
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) GetBatchFeatures(ctx context.Context, ids []string) (map[string]map[string]float64, error) {
	if len(ids) == 0 {
		return map[string]map[string]float64{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = featureKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	out := make(map[string]map[string]float64, len(ids))
	for i, v := range values {
		if v == nil {
			continue
		}
		raw, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("redis: unexpected value type %T for entity %s", v, ids[i])
		}
		var features map[string]float64
		if err := json.Unmarshal([]byte(raw), &features); err != nil {
			return nil, fmt.Errorf("redis: decode features for entity %s: %w", ids[i], err)
		}
		out[ids[i]] = features
	}
	return out, nil
}

func (s *RedisStore) GetFeatures(ctx context.Context, id string) (map[string]float64, error) {
	raw, err := s.client.Get(ctx, featureKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	var features map[string]float64
	if err := json.Unmarshal([]byte(raw), &features); err != nil {
		return nil, fmt.Errorf("redis: decode features for entity %s: %w", id, err)
	}
	return features, nil
}

func (s *RedisStore) PutFeatures(ctx context.Context, id string, features map[string]float64) error {
	data, err := json.Marshal(features)
	if err != nil {
		return fmt.Errorf("redis: encode features for entity %s: %w", id, err)
	}
	if err := s.client.Set(ctx, featureKey(id), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func featureKey(id string) string {
	return keyPrefix + id + keySuffix
}
