package utils

import (
	"context"
	"time"
)

const (
	// DefaultOperationTimeout is the default timeout for a single store round trip (5 seconds)
	DefaultOperationTimeout = 5 * time.Second
)

// WithTimeout creates a context with the given timeout
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

// Detached returns a context that keeps ctx's values but survives its
// cancellation, bounded by DefaultOperationTimeout. Cleanup paths use it so a
// cancelled caller still gets its lock released.
func Detached(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return WithTimeout(context.WithoutCancel(ctx), DefaultOperationTimeout)
}
