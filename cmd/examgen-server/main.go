// Command examgen-server exposes the question generators as HTTP tool calls.
//
// Configuration comes from EXAMGEN_* environment variables (see
// internal/config).
//
//	POST /tool    execute a tool call
//	GET  /schema  tool schema for agent registration
//	GET  /health  health check
//	GET  /metrics Prometheus metrics
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/njchilds90/examgen/internal/cache"
	"github.com/njchilds90/examgen/internal/config"
	"github.com/njchilds90/examgen/internal/generator"
	"github.com/njchilds90/examgen/internal/sampler"
	"github.com/njchilds90/examgen/internal/tangent"
	"github.com/njchilds90/examgen/internal/tool"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	store, closeStore, err := openStore(context.Background(), cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.CacheBackend).Msg("failed to open enumeration cache")
	}
	defer closeStore()

	var src sampler.Source = sampler.Default()
	if cfg.SamplerSeed != 0 {
		src = sampler.NewLockedSource(sampler.NewSource(cfg.SamplerSeed))
	}

	scanner := tangent.NewScanner(tangent.DefaultLattice(), tangent.DefaultFilter(), store, logger)
	go warmScanner(scanner, logger)
	svc := generator.NewService(src, logger,
		generator.WithMaxAttempts(cfg.SamplerMaxAttempts),
		generator.WithScanner(scanner),
	)
	handler, err := tool.NewHandler(svc, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to compile tool schemas")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    tool.MaxBodyBytes,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	})
	app.Use(recover.New())
	tool.Register(app, handler)

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("cache", cfg.CacheBackend).Msg("examgen server listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

// openStore builds the configured cache backend and a matching close
// function.
func openStore(ctx context.Context, cfg config.Config) (cache.Store, func(), error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		client, err := cache.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedisStore(client, cfg.CacheTTL), func() { _ = client.Close() }, nil
	case config.CacheSQLite:
		store, err := cache.OpenSQLite(cfg.SQLitePath)
		return store, func() {}, err
	case config.CachePostgres:
		store, err := cache.OpenPostgres(cfg.DatabaseURL)
		return store, func() {}, err
	case config.CacheMemory:
		return cache.NewMemoryStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
}

// warmScanner loads the tangent candidates before the first request needs
// them.
func warmScanner(scanner *tangent.Scanner, logger zerolog.Logger) {
	start := time.Now()
	if err := scanner.Warm(context.Background()); err != nil {
		logger.Error().Err(err).Msg("failed to warm tangent scanner")
		return
	}
	logger.Info().Dur("elapsed", time.Since(start)).Msg("tangent scanner ready")
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
