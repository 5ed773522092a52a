package utils

import (
	"context"
	"testing"
	"time"
)

type ctxKey struct{}

func TestWithTimeout(t *testing.T) {
	t.Run("creates context with timeout", func(t *testing.T) {
		ctx, cancel := WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		select {
		case <-ctx.Done():
		case <-time.After(500 * time.Millisecond):
			t.Fatal("context should have timed out")
		}
	})

	t.Run("handles nil context", func(t *testing.T) {
		//nolint:staticcheck // SA1012: intentionally passing nil to test nil handling
		ctx, cancel := WithTimeout(nil, 50*time.Millisecond)
		defer cancel()

		if ctx == nil {
			t.Fatal("context should not be nil (should use Background)")
		}
		<-ctx.Done()
	})

	t.Run("parent cancellation propagates", func(t *testing.T) {
		parent, parentCancel := context.WithCancel(context.Background())
		ctx, cancel := WithTimeout(parent, time.Minute)
		defer cancel()

		parentCancel()
		select {
		case <-ctx.Done():
		case <-time.After(100 * time.Millisecond):
			t.Fatal("context should follow its parent")
		}
	})
}

func TestDetached(t *testing.T) {
	t.Run("survives parent cancellation", func(t *testing.T) {
		parent, parentCancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "v"))
		parentCancel()

		ctx, cancel := Detached(parent)
		defer cancel()

		if err := ctx.Err(); err != nil {
			t.Fatalf("detached context err = %v, want nil", err)
		}
		if got := ctx.Value(ctxKey{}); got != "v" {
			t.Errorf("detached context value = %v, want %q", got, "v")
		}
	})

	t.Run("has default deadline", func(t *testing.T) {
		ctx, cancel := Detached(context.Background())
		defer cancel()

		deadline, ok := ctx.Deadline()
		if !ok {
			t.Fatal("detached context should carry a deadline")
		}
		if remaining := time.Until(deadline); remaining > DefaultOperationTimeout || remaining < DefaultOperationTimeout-time.Second {
			t.Errorf("remaining = %v, want about %v", remaining, DefaultOperationTimeout)
		}
	})

	t.Run("handles nil context", func(t *testing.T) {
		//nolint:staticcheck // SA1012: intentionally passing nil to test nil handling
		ctx, cancel := Detached(nil)
		defer cancel()
		if ctx == nil {
			t.Fatal("context should not be nil")
		}
	})
}
