package lock

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	"go.uber.org/zap"

	"github.com/soulteary/redis-lock/client"
	"github.com/soulteary/redis-lock/metrics"
	"github.com/soulteary/redis-lock/store"
	"github.com/soulteary/redis-lock/utils"
)

// errContended is the per-attempt signal that someone else holds the key.
var errContended = errors.New("resource is locked")

// Locker acquires and releases locks through a Store. It is safe for
// concurrent use.
type Locker struct {
	store   store.Store
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	closer  io.Closer
}

// New creates a Locker on top of s. Zero fields in cfg fall back to the
// defaults.
func New(s store.Store, cfg Config, opts ...Option) *Locker {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.RetryCount == 0 {
		cfg.RetryCount = DefaultRetryCount
	}
	l := &Locker{
		store:  s,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open connects to the store described by clientCfg and returns a Locker
// that owns the connection pool. Call Close when done.
func Open(clientCfg client.Config, cfg Config, opts ...Option) (*Locker, error) {
	rdb, err := client.NewClient(clientCfg)
	if err != nil {
		return nil, err
	}
	rs := store.NewRedisStore(rdb)
	l := New(rs, cfg, opts...)
	l.closer = rs
	return l, nil
}

// Close releases the connection pool created by Open. It is a no-op for
// lockers built with New.
func (l *Locker) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Config returns the locker defaults.
func (l *Locker) Config() Config {
	return l.cfg
}

// AcquireWithRetry tries to set the handle's key up to RetryCount times,
// sleeping a jittered delay between attempts. Store errors count as failed
// attempts unless store.IsFatal reports them as fatal or ctx is done, in
// which case they are returned as is.
func (l *Locker) AcquireWithRetry(ctx context.Context, h Handle) (bool, error) {
	sched := NewRetryScheduler(h.ttl, h.retryCount)
	r := retrier.New(sched.Backoff(), attemptClassifier{ctx: ctx})

	attempt := 0
	err := r.RunCtx(ctx, func(ctx context.Context) error {
		attempt++
		ok, err := l.store.SetIfAbsent(ctx, h.key, h.token, h.ttl)
		l.metrics.ObserveAttempt(err)
		if err != nil {
			l.logger.Debug("lock attempt failed",
				zap.String("resource", h.resource),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		if !ok {
			return errContended
		}
		return nil
	})

	switch {
	case err == nil:
		l.metrics.ObserveAcquired(true)
		l.logger.Debug("lock acquired", zap.String("resource", h.resource), zap.Int("attempts", attempt))
		return true, nil
	case ctx.Err() != nil:
		return false, ctx.Err()
	case store.IsFatal(err):
		l.logger.Error("lock store rejected acquisition", zap.String("resource", h.resource), zap.Error(err))
		return false, err
	default:
		l.metrics.ObserveAcquired(false)
		l.logger.Debug("lock retries exhausted",
			zap.String("resource", h.resource),
			zap.Int("attempts", attempt),
			zap.NamedError("last_error", err))
		return false, nil
	}
}

// Release deletes the handle's key if it still holds the handle's token and
// reports whether it did. Errors are logged and swallowed: the TTL removes
// the key eventually. Release keeps working after ctx is cancelled.
func (l *Locker) Release(ctx context.Context, h Handle) bool {
	relCtx, cancel := utils.Detached(ctx)
	defer cancel()

	n, err := l.store.DeleteIfEqual(relCtx, h.key, h.token)
	l.metrics.ObserveRelease(err)
	if err != nil {
		l.logger.Warn("lock release failed", zap.String("resource", h.resource), zap.Error(err))
		return false
	}
	return n > 0
}

// WithLock acquires resource, calls fn with the outcome and releases the lock
// afterwards, whatever fn does. fn runs exactly once unless acquisition
// fails with an error. The returned error is fn's, or the acquisition error.
func (l *Locker) WithLock(ctx context.Context, resource string, fn func(ctx context.Context, locked bool) error, opts ...CallOption) (bool, error) {
	h, err := l.NewHandle(resource, opts...)
	if err != nil {
		return false, err
	}
	return l.run(ctx, h, fn)
}

// WithLockOrFail is the strict form of WithLock: fn only runs while the lock
// is held, and an *AcquisitionError is returned when it could not be taken.
func (l *Locker) WithLockOrFail(ctx context.Context, resource string, fn func(ctx context.Context) error, opts ...CallOption) error {
	_, err := WithLockResult(ctx, l, resource, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, opts...)
	return err
}

// WithLockResult is WithLockOrFail for callbacks that produce a value.
func WithLockResult[T any](ctx context.Context, l *Locker, resource string, fn func(ctx context.Context) (T, error), opts ...CallOption) (T, error) {
	var result T
	locked, err := l.WithLock(ctx, resource, func(ctx context.Context, locked bool) error {
		if !locked {
			return nil
		}
		var err error
		result, err = fn(ctx)
		return err
	}, opts...)
	if err != nil {
		return result, err
	}
	if !locked {
		return result, &AcquisitionError{Resource: resource}
	}
	return result, nil
}

// run holds the single release for h. The deferred call also covers panics in fn.
func (l *Locker) run(ctx context.Context, h Handle, fn func(ctx context.Context, locked bool) error) (locked bool, err error) {
	var acquiredAt time.Time
	defer func() {
		l.Release(ctx, h)
		if locked {
			l.metrics.ObserveHold(time.Since(acquiredAt))
		}
	}()

	locked, err = l.AcquireWithRetry(ctx, h)
	if err != nil {
		return false, err
	}
	acquiredAt = time.Now()
	return locked, fn(ctx, locked)
}

type attemptClassifier struct {
	ctx context.Context
}

func (c attemptClassifier) Classify(err error) retrier.Action {
	switch {
	case err == nil:
		return retrier.Succeed
	case c.ctx.Err() != nil, store.IsFatal(err):
		return retrier.Fail
	default:
		return retrier.Retry
	}
}
