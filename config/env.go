// Package config loads process configuration from the environment and builds
// the logger.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"

	"github.com/soulteary/redis-lock/client"
	"github.com/soulteary/redis-lock/lock"
)

// Config is the environment surface of the locker.
type Config struct {
	RedisURL         string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	RedisPoolSize    int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	RedisPoolTimeout time.Duration `envconfig:"REDIS_POOL_TIMEOUT" default:"4s"`

	LockTTL        time.Duration `envconfig:"LOCK_TTL" default:"5s"`
	LockRetryCount int           `envconfig:"LOCK_RETRY_COUNT" default:"25"`
	LockKeyPrefix  string        `envconfig:"LOCK_KEY_PREFIX"`

	LogLevel zapcore.Level `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads Config from the environment, applying defaults for unset variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the locker cannot work with.
func (c Config) Validate() error {
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.RedisPoolSize < 1 {
		return fmt.Errorf("REDIS_POOL_SIZE must be positive, got %d", c.RedisPoolSize)
	}
	if c.LockTTL < time.Millisecond {
		return fmt.Errorf("LOCK_TTL must be at least 1ms, got %s", c.LockTTL)
	}
	if c.LockRetryCount < 1 {
		return fmt.Errorf("LOCK_RETRY_COUNT must be positive, got %d", c.LockRetryCount)
	}
	return nil
}

// Client returns the store connection settings.
func (c Config) Client() client.Config {
	return client.DefaultConfig().
		WithURL(c.RedisURL).
		WithPoolSize(c.RedisPoolSize).
		WithPoolTimeout(c.RedisPoolTimeout)
}

// Lock returns the locker defaults.
func (c Config) Lock() lock.Config {
	return lock.DefaultConfig().
		WithTTL(c.LockTTL).
		WithRetryCount(c.LockRetryCount).
		WithKeyPrefix(c.LockKeyPrefix)
}
