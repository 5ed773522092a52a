package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soulteary/redis-lock/utils"
)

// releaseScript deletes KEYS[1] only while it still holds ARGV[1], so an entry
// that expired and was re-acquired by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// fatalPrefixes are server replies that no amount of retrying will change.
var fatalPrefixes = []string{"NOAUTH", "WRONGPASS", "NOPERM"}

// RedisStore implements Store against a Redis-compatible server.
type RedisStore struct {
	client  redis.UniversalClient
	timeout time.Duration
}

// NewRedisStore wraps client. Every store call is bounded by
// utils.DefaultOperationTimeout.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return NewRedisStoreWithTimeout(client, utils.DefaultOperationTimeout)
}

// NewRedisStoreWithTimeout wraps client with a custom per-operation timeout.
func NewRedisStoreWithTimeout(client redis.UniversalClient, timeout time.Duration) *RedisStore {
	if timeout <= 0 {
		timeout = utils.DefaultOperationTimeout
	}
	return &RedisStore{client: client, timeout: timeout}
}

// SetIfAbsent issues SET key value NX PX ttl.
func (s *RedisStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if s.client == nil {
		return false, fmt.Errorf("%w: redis client is nil", ErrMisconfigured)
	}
	ms := ttl.Milliseconds()
	if ms < 1 {
		return false, ErrInvalidTTL
	}

	opCtx, cancel := utils.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.client.Do(opCtx, "set", key, value, "nx", "px", ms).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, classify("failed to set lock", err)
	}
	return true, nil
}

// DeleteIfEqual runs the compare-and-delete script for key.
func (s *RedisStore) DeleteIfEqual(ctx context.Context, key, value string) (int64, error) {
	if s.client == nil {
		return 0, fmt.Errorf("%w: redis client is nil", ErrMisconfigured)
	}

	opCtx, cancel := utils.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := releaseScript.Run(opCtx, s.client, []string{key}, value).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, classify("failed to release lock", err)
	}
	return n, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func classify(msg string, err error) error {
	for _, prefix := range fatalPrefixes {
		if redis.HasErrorPrefix(err, prefix) {
			return fmt.Errorf("%s: %w: %w", msg, ErrMisconfigured, err)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
