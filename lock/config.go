package lock

import (
	"time"

	"go.uber.org/zap"

	"github.com/soulteary/redis-lock/metrics"
)

const (
	// DefaultTTL is the default lock expiry (5 seconds)
	DefaultTTL = 5 * time.Second

	// DefaultRetryCount is the default number of acquisition attempts
	DefaultRetryCount = 25
)

// Config holds locker-wide defaults. Every field can be overridden per call.
type Config struct {
	// TTL is how long the store keeps an unreleased lock
	TTL time.Duration

	// RetryCount bounds the number of acquisition attempts
	RetryCount int

	// KeyPrefix is prepended to every resource key
	KeyPrefix string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		TTL:        DefaultTTL,
		RetryCount: DefaultRetryCount,
	}
}

// WithTTL sets the default TTL
func (c Config) WithTTL(ttl time.Duration) Config {
	c.TTL = ttl
	return c
}

// WithRetryCount sets the default retry count
func (c Config) WithRetryCount(n int) Config {
	c.RetryCount = n
	return c
}

// WithKeyPrefix sets the key prefix
func (c Config) WithKeyPrefix(prefix string) Config {
	c.KeyPrefix = prefix
	return c
}

// Option configures a Locker.
type Option func(*Locker)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Locker) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Locker) {
		l.metrics = m
	}
}

type callOptions struct {
	ttl        time.Duration
	retryCount int
}

// CallOption overrides a locker default for one call.
type CallOption func(*callOptions)

// WithTTL overrides the TTL for one call.
func WithTTL(ttl time.Duration) CallOption {
	return func(o *callOptions) {
		o.ttl = ttl
	}
}

// WithRetryCount overrides the retry count for one call.
func WithRetryCount(n int) CallOption {
	return func(o *callOptions) {
		o.retryCount = n
	}
}
