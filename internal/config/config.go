// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cache backends.
const (
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CacheSQLite   = "sqlite"
	CachePostgres = "postgres"
)

// Config holds runtime configuration values for the generator service.
type Config struct {
	AppName  string `validate:"required"`
	AppEnv   string `validate:"required,oneof=development test production"`
	AppPort  string `validate:"required"`
	LogLevel string `validate:"required,oneof=trace debug info warn error"`

	// SamplerSeed makes generation reproducible when non-zero.
	SamplerSeed        uint64
	SamplerMaxAttempts int `validate:"gte=0"`

	CacheBackend string        `validate:"required,oneof=memory redis sqlite postgres"`
	CacheTTL     time.Duration `validate:"gte=0"`
	RedisURL     string        `validate:"required_if=CacheBackend redis"`
	SQLitePath   string        `validate:"required_if=CacheBackend sqlite"`
	DatabaseURL  string        `validate:"required_if=CacheBackend postgres"`
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}
	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads EXAMGEN_* environment variables, after loading .env when
// present, and validates the result.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EXAMGEN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "examgen")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("sampler.seed", 0)
	v.SetDefault("sampler.max_attempts", 0)
	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("sqlite.path", "examgen-cache.db")

	ttl, err := time.ParseDuration(v.GetString("cache.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid cache ttl: %w", err)
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             strings.ToLower(v.GetString("app.env")),
		AppPort:            v.GetString("app.port"),
		LogLevel:           strings.ToLower(v.GetString("log.level")),
		SamplerSeed:        v.GetUint64("sampler.seed"),
		SamplerMaxAttempts: v.GetInt("sampler.max_attempts"),
		CacheBackend:       strings.ToLower(v.GetString("cache.backend")),
		CacheTTL:           ttl,
		RedisURL:           v.GetString("redis.url"),
		SQLitePath:         v.GetString("sqlite.path"),
		DatabaseURL:        v.GetString("database.url"),
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
