// Package config loads runtime settings from PARLEY_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config is the process configuration, read from PARLEY_* environment
// variables.
type Config struct {
	Env        string `env:"PARLEY_ENV" envDefault:"dev"`
	LogLevel   string `env:"PARLEY_LOG_LEVEL"`
	ContentDir string `env:"PARLEY_CONTENT_DIR" envDefault:"content"`

	Store         string        `env:"PARLEY_STORE" envDefault:"memory"`
	RedisAddr     string        `env:"PARLEY_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"PARLEY_REDIS_PASSWORD"`
	RedisDB       int           `env:"PARLEY_REDIS_DB" envDefault:"0"`
	RedisTTL      time.Duration `env:"PARLEY_REDIS_TTL" envDefault:"0s"`
	SQLitePath    string        `env:"PARLEY_SQLITE_PATH" envDefault:"data/parley.db"`

	// NATSURL enables event publishing when set.
	NATSURL string `env:"PARLEY_NATS_URL"`

	IdleTimeout time.Duration `env:"PARLEY_SESSION_IDLE_TIMEOUT" envDefault:"5m"`
	Seed        int64         `env:"PARLEY_SEED" envDefault:"0"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	switch cfg.Store {
	case StoreMemory, StoreRedis, StoreSQLite:
	default:
		return Config{}, fmt.Errorf("PARLEY_STORE must be one of memory, redis, sqlite, got %q", cfg.Store)
	}
	if cfg.Store == StoreSQLite && strings.TrimSpace(cfg.SQLitePath) == "" {
		return Config{}, fmt.Errorf("PARLEY_SQLITE_PATH must not be empty")
	}
	if cfg.RedisTTL < 0 {
		return Config{}, fmt.Errorf("PARLEY_REDIS_TTL must be >= 0")
	}
	if cfg.IdleTimeout < 0 {
		return Config{}, fmt.Errorf("PARLEY_SESSION_IDLE_TIMEOUT must be >= 0")
	}
	return cfg, nil
}
