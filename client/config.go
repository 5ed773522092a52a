package client

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config describes how to reach the lock store and how to size its
// connection pool. URL, when set, takes precedence over Addr, Password and DB.
type Config struct {
	// URL is a redis:// or rediss:// connection URL (e.g., "redis://localhost:6379/0")
	URL string

	// Addr is the Redis server address (e.g., "localhost:6379")
	Addr string

	// Password is the Redis password (empty if no password)
	Password string

	// DB is the Redis database number (default: 0)
	DB int

	// PoolSize is the maximum number of socket connections (default: 10)
	PoolSize int

	// MinIdleConns is the minimum number of idle connections (default: 0)
	MinIdleConns int

	// DialTimeout is the timeout for establishing connections (default: 5s)
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads (default: 3s)
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes (default: 3s)
	WriteTimeout time.Duration

	// MaxRetries is the number of client-level retries per command (default: 0).
	// Lock attempts are already retried by the locker.
	MaxRetries int

	// PoolTimeout is how long a caller waits to check a connection out of a
	// busy pool (default: 4s)
	PoolTimeout time.Duration

	// Dialer overrides how connections are opened, mainly for tests
	Dialer func(ctx context.Context, network, addr string) (net.Conn, error)
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	}
}

// WithURL sets the connection URL
func (c Config) WithURL(url string) Config {
	c.URL = url
	return c
}

// WithAddr sets the Redis server address
func (c Config) WithAddr(addr string) Config {
	c.Addr = addr
	return c
}

// WithPassword sets the Redis password
func (c Config) WithPassword(password string) Config {
	c.Password = password
	return c
}

// WithPoolSize sets the connection pool size
func (c Config) WithPoolSize(size int) Config {
	c.PoolSize = size
	return c
}

// WithPoolTimeout sets the pool checkout timeout
func (c Config) WithPoolTimeout(timeout time.Duration) Config {
	c.PoolTimeout = timeout
	return c
}

// WithDialTimeout sets the dial timeout
func (c Config) WithDialTimeout(timeout time.Duration) Config {
	c.DialTimeout = timeout
	return c
}

// WithDialer sets a custom dialer
func (c Config) WithDialer(dialer func(ctx context.Context, network, addr string) (net.Conn, error)) Config {
	c.Dialer = dialer
	return c
}

// Options converts the config into go-redis options
func (c Config) Options() (*redis.Options, error) {
	var opts *redis.Options
	if c.URL != "" {
		parsed, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		if c.Addr == "" {
			return nil, fmt.Errorf("redis address is required")
		}
		opts = &redis.Options{
			Addr:     c.Addr,
			Password: c.Password,
			DB:       c.DB,
		}
	}

	if c.PoolSize < 0 {
		return nil, fmt.Errorf("pool size must not be negative")
	}

	opts.PoolSize = c.PoolSize
	opts.MinIdleConns = c.MinIdleConns
	opts.PoolTimeout = c.PoolTimeout
	opts.DialTimeout = c.DialTimeout
	opts.ReadTimeout = c.ReadTimeout
	opts.WriteTimeout = c.WriteTimeout
	opts.MaxRetries = c.MaxRetries
	if c.MaxRetries == 0 {
		// go-redis treats 0 as "use the default of 3"
		opts.MaxRetries = -1
	}
	if c.Dialer != nil {
		opts.Dialer = c.Dialer
	}
	return opts, nil
}
