package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"driftserve/internal/baseline"
	"driftserve/internal/cfg"
	"driftserve/internal/drift"
	"driftserve/internal/metrics"
	"driftserve/internal/model"
	"driftserve/internal/schema"
	"driftserve/internal/server"
	"driftserve/internal/service"
	"driftserve/internal/store"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

func main() {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fs, closeStore, err := openFeatureStore(ctx, c)
	if err != nil {
		log.Fatal().Err(err).Msg("feature store unavailable")
	}
	defer closeStore()

	// Blocking initialization barrier: no traffic is accepted until the
	// baseline, detector, and model are all in place.
	baselineCtx, baselineCancel := context.WithTimeout(ctx, c.StoreTimeout)
	scaler, ref, err := baseline.NewBuilder(fs).Build(baselineCtx)
	baselineCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("reference baseline capture failed")
	}

	detector, err := drift.NewDetector(ref, schema.FeatureNames)
	if err != nil {
		log.Fatal().Err(err).Msg("drift detector construction failed")
	}

	forest, err := model.LoadForest(c.ModelPath)
	if err != nil {
		log.Fatal().Err(err).Msg("model load failed")
	}

	m := metrics.New()
	svc := service.New(scaler, detector, model.NewEngine(forest), metrics.NewRecorder(m))
	srv := server.New(svc, prometheus.DefaultGatherer, c.Port)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server failed")
			cancel()
		}
	}()

	waitForShutdown(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown server")
	}
}

// openFeatureStore picks the configured backend: remote HTTP store, then
// embedded Bolt, then Redis.
func openFeatureStore(ctx context.Context, c cfg.Settings) (store.FeatureStore, func(), error) {
	switch {
	case c.FeatureStoreURL != "":
		log.Info().Str("url", c.FeatureStoreURL).Msg("using remote feature store")
		return store.NewHTTP(c.FeatureStoreURL, c.StoreTimeout), func() {}, nil
	case c.DataPath != "":
		log.Info().Str("data_path", c.DataPath).Msg("using embedded feature store")
		bs, err := store.NewBolt(c.DataPath)
		if err != nil {
			return nil, nil, err
		}
		return bs, func() { bs.Close() }, nil
	default:
		log.Info().Str("addr", c.RedisAddr).Msg("using redis feature store")
		rs := store.NewRedis(c.RedisAddr, c.RedisPassword, c.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, c.StoreTimeout)
		defer cancel()
		if err := rs.Ping(pingCtx); err != nil {
			rs.Close()
			return nil, nil, err
		}
		return rs, func() { rs.Close() }, nil
	}
}

// waitForShutdown blocks until a termination signal or context cancellation.
func waitForShutdown(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}
	log.Info().Msg("shutting down gracefully...")
}
