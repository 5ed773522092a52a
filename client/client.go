package client

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewClient creates a pooled Redis client with the given configuration and
// verifies the connection
func NewClient(cfg Config) (*redis.Client, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// NewClientWithURL creates a client for url with the default pool settings
func NewClientWithURL(url string) (*redis.Client, error) {
	return NewClient(DefaultConfig().WithURL(url))
}

// Ping tests the connection to Redis
func Ping(ctx context.Context, client redis.UniversalClient) error {
	if client == nil {
		return fmt.Errorf("redis client is nil")
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

// Close closes the Redis client connection
func Close(client redis.UniversalClient) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
