package lock

import (
	"errors"
	"fmt"

	"github.com/soulteary/redis-lock/store"
)

var (
	// ErrNotAcquired indicates the retry budget ran out while the resource was held elsewhere.
	ErrNotAcquired = errors.New("lock not acquired")
	// ErrEmptyResource indicates an empty resource key.
	ErrEmptyResource = errors.New("resource key is empty")
	// ErrInvalidTTL indicates a TTL below one millisecond.
	ErrInvalidTTL = store.ErrInvalidTTL
	// ErrInvalidRetryCount indicates a retry count below one.
	ErrInvalidRetryCount = errors.New("retry count must be positive")
)

// AcquisitionError is returned by the strict entry points when the lock for
// Resource could not be obtained. It matches ErrNotAcquired.
type AcquisitionError struct {
	Resource string
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("could not acquire lock for %s", e.Resource)
}

func (e *AcquisitionError) Is(target error) bool {
	return target == ErrNotAcquired
}
