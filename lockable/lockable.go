// Package lockable composes a lock with a unit of work: acquire the lock,
// open a transaction, reload state, then run the work.
package lockable

import (
	"context"

	"github.com/soulteary/redis-lock/lock"
	"github.com/soulteary/redis-lock/utils"
)

// Locker is the strict lock capability Exclusively needs. *lock.Locker
// satisfies it.
type Locker interface {
	WithLockOrFail(ctx context.Context, resource string, fn func(ctx context.Context) error, opts ...lock.CallOption) error
}

// TxFunc runs fn inside a transaction and returns fn's error, or the error
// of committing.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// ReloadFunc refreshes state that may have changed while waiting for the lock.
type ReloadFunc func(ctx context.Context) error

type options struct {
	tx       TxFunc
	reload   ReloadFunc
	lockOpts []lock.CallOption
}

// Option configures Exclusively.
type Option func(*options)

// WithTransaction wraps the reload and the work in tx.
func WithTransaction(tx TxFunc) Option {
	return func(o *options) {
		o.tx = tx
	}
}

// WithReload runs reload before the work, inside the transaction if any.
func WithReload(reload ReloadFunc) Option {
	return func(o *options) {
		o.reload = reload
	}
}

// WithoutReload drops a reload set by an earlier option.
func WithoutReload() Option {
	return func(o *options) {
		o.reload = nil
	}
}

// WithLockOptions forwards per-call TTL and retry overrides to the locker.
func WithLockOptions(opts ...lock.CallOption) Option {
	return func(o *options) {
		o.lockOpts = append(o.lockOpts, opts...)
	}
}

// Key names the lock for one operation on one entity, as "<owner>-<id>-<name>".
func Key(owner string, id any, name string) string {
	return utils.JoinKey("-", owner, id, name)
}

// Exclusively runs work while holding the lock on key. It fails with a
// *lock.AcquisitionError if the lock cannot be obtained, in which case
// neither the transaction nor work is started.
func Exclusively(ctx context.Context, l Locker, key string, work func(ctx context.Context) error, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	body := func(ctx context.Context) error {
		if o.reload != nil {
			if err := o.reload(ctx); err != nil {
				return err
			}
		}
		return work(ctx)
	}

	return l.WithLockOrFail(ctx, key, func(ctx context.Context) error {
		if o.tx != nil {
			return o.tx(ctx, body)
		}
		return body(ctx)
	}, o.lockOpts...)
}
