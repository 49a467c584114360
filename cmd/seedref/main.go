// seedref loads a JSON file of historical entities into the feature store
// so a fresh deployment has a reference population to fit against.
//
// Input format: {"<entity_id>": {"<feature>": <value>, ...}, ...}
// Every entity must carry all schema features; partial dicts are rejected
// before anything is written, since a partial baseline would poison drift
// testing.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"sort"

	"driftserve/internal/cfg"
	"driftserve/internal/schema"
	"driftserve/internal/store"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	input := flag.String("input", "", "path to JSON file of entity feature dicts")
	flag.Parse()
	if *input == "" {
		log.Fatal().Msg("-input is required")
	}

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatal().Err(err).Str("input", *input).Msg("read input failed")
	}
	var entities map[string]map[string]float64
	if err := json.Unmarshal(data, &entities); err != nil {
		log.Fatal().Err(err).Msg("parse input failed")
	}
	if len(entities) == 0 {
		log.Fatal().Msg("input contains no entities")
	}

	for id, features := range entities {
		for _, name := range schema.FeatureNames {
			if _, ok := features[name]; !ok {
				log.Fatal().Str("entity", id).Str("feature", name).Msg("entity is missing a required feature, nothing written")
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.StoreTimeout)
	defer cancel()

	w, closeStore, err := openWriter(ctx, c)
	if err != nil {
		log.Fatal().Err(err).Msg("feature store unavailable")
	}
	defer closeStore()

	// Deterministic write order makes reruns and failures easier to reason
	// about.
	ids := make([]string, 0, len(entities))
	for id := range entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := w.PutFeatures(ctx, id, entities[id]); err != nil {
			log.Fatal().Err(err).Str("entity", id).Msg("write failed")
		}
	}
	log.Info().Int("entities", len(ids)).Msg("feature store seeded")
}

func openWriter(ctx context.Context, c cfg.Settings) (store.Writer, func(), error) {
	switch {
	case c.FeatureStoreURL != "":
		return store.NewHTTP(c.FeatureStoreURL, c.StoreTimeout), func() {}, nil
	case c.DataPath != "":
		bs, err := store.NewBolt(c.DataPath)
		if err != nil {
			return nil, nil, err
		}
		return bs, func() { bs.Close() }, nil
	default:
		rs := store.NewRedis(c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			return nil, nil, err
		}
		return rs, func() { rs.Close() }, nil
	}
}
