package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/crunchbase-client/internal/config"
	"github.com/Sternrassler/crunchbase-client/internal/snapshot"
	"github.com/Sternrassler/crunchbase-client/pkg/cache"
	"github.com/Sternrassler/crunchbase-client/pkg/client"
	"github.com/Sternrassler/crunchbase-client/pkg/crunchbase"
	"github.com/Sternrassler/crunchbase-client/pkg/logging"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadProxyConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})
	logger := logging.NewLogger(logging.ComponentProxy)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := cache.NewMemory()

	// Optional Redis snapshot
	var (
		redisClient *redis.Client
		snap        *snapshot.Store
	)
	if cfg.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisURL,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("redis", cfg.RedisURL).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("redis", cfg.RedisURL).Msg("Connected to Redis")

		snap = snapshot.New(redisClient, snapshot.WithTTL(cfg.SnapshotTTL))
		n, err := snap.Load(ctx, store)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to load cache snapshot")
		} else {
			logger.Info().Int("entries", n).Msg("Cache snapshot loaded")
		}
	}

	api, err := crunchbase.New(crunchbase.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Version: cfg.Version,
		Client: client.Config{
			Cache:     store,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.RequestTimeout,
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create CrunchBase client")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newServer(api, redisClient).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("base_url", cfg.BaseURL).
			Str("user_agent", cfg.UserAgent).
			Msg("Starting CrunchBase proxy")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}

	if snap != nil {
		if err := snap.Save(shutdownCtx, store.Entries()); err != nil {
			logger.Error().Err(err).Msg("Failed to save cache snapshot")
		} else {
			logger.Info().Int("entries", store.Len()).Msg("Cache snapshot saved")
		}
	}
}
