// Package store defines the two atomic primitives the locker needs from a
// key-value store and provides a Redis adapter plus an in-memory fake.
package store

import (
	"context"
	"errors"
	"time"
)

// Store is the capability set consumed by lock.Locker.
// Connection pooling is entirely the adapter's concern.
type Store interface {
	// SetIfAbsent sets key to value with the given expiry only if key does not
	// exist. It reports whether the key was newly set.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// DeleteIfEqual removes key only if its current value equals value, as one
	// indivisible operation. It returns the number of removed keys (0 or 1).
	DeleteIfEqual(ctx context.Context, key, value string) (int64, error)
}

var (
	// ErrMisconfigured marks errors that retrying cannot fix, such as a missing
	// client or rejected credentials.
	ErrMisconfigured = errors.New("store misconfigured")
	// ErrInvalidTTL is returned when an expiry below one millisecond is requested.
	ErrInvalidTTL = errors.New("ttl must be at least one millisecond")
)

// IsFatal reports whether err should abort a retry loop instead of counting as
// a failed attempt. Timeouts and connection errors are not fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrMisconfigured) || errors.Is(err, ErrInvalidTTL)
}
