package lock

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soulteary/redis-lock/utils"
)

// Handle identifies one acquisition attempt. It is immutable and only lives
// for the duration of a WithLock call.
type Handle struct {
	resource   string
	key        string
	token      string
	ttl        time.Duration
	retryCount int
}

// Resource returns the caller-supplied resource name.
func (h Handle) Resource() string { return h.resource }

// Key returns the store key, including any configured prefix.
func (h Handle) Key() string { return h.key }

// Token returns the ownership token written to the store.
func (h Handle) Token() string { return h.token }

// TTL returns the lock expiry.
func (h Handle) TTL() time.Duration { return h.ttl }

// RetryCount returns the acquisition attempt budget.
func (h Handle) RetryCount() int { return h.retryCount }

// NewHandle builds a handle for resource with a fresh token, applying the
// locker defaults and then opts.
func (l *Locker) NewHandle(resource string, opts ...CallOption) (Handle, error) {
	if resource == "" {
		return Handle{}, ErrEmptyResource
	}

	o := callOptions{ttl: l.cfg.TTL, retryCount: l.cfg.RetryCount}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ttl < time.Millisecond {
		return Handle{}, ErrInvalidTTL
	}
	if o.retryCount < 1 {
		return Handle{}, ErrInvalidRetryCount
	}

	token, err := generateToken()
	if err != nil {
		return Handle{}, err
	}

	return Handle{
		resource:   resource,
		key:        utils.BuildKey(l.cfg.KeyPrefix, resource),
		token:      token,
		ttl:        o.ttl,
		retryCount: o.retryCount,
	}, nil
}

// generateToken returns a random UUIDv4 read from crypto/rand.
func generateToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return id.String(), nil
}
