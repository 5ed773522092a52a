package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStore_SetIfAbsent(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	ok, err := m.SetIfAbsent(ctx, "k", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.SetIfAbsent(ctx, "k", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	v, live := m.Get("k")
	assert.True(t, live)
	assert.Equal(t, "a", v)
	assert.Equal(t, 2, m.SetCalls())
}

func TestMemoryStore_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	m := NewMemoryStore()
	m.SetClock(clock.Now)
	ctx := context.Background()

	ok, err := m.SetIfAbsent(ctx, "k", "a", 500*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	clock.Advance(499 * time.Millisecond)
	ok, _ = m.SetIfAbsent(ctx, "k", "b", time.Second)
	assert.False(t, ok, "still held one millisecond before expiry")

	clock.Advance(time.Millisecond)
	ok, _ = m.SetIfAbsent(ctx, "k", "b", time.Second)
	assert.True(t, ok, "free exactly at expiry")
}

func TestMemoryStore_DeleteIfEqual(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	_, _ = m.SetIfAbsent(ctx, "k", "mine", time.Minute)

	n, err := m.DeleteIfEqual(ctx, "k", "theirs")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = m.DeleteIfEqual(ctx, "k", "mine")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, live := m.Get("k")
	assert.False(t, live)
	assert.Equal(t, 2, m.DeleteCalls())
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	m := NewMemoryStore()
	m.SetClock(clock.Now)
	ctx := context.Background()

	_, _ = m.SetIfAbsent(ctx, "k", "mine", time.Second)
	clock.Advance(time.Second)

	n, err := m.DeleteIfEqual(ctx, "k", "mine")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "expired entries are already gone")
}

func TestMemoryStore_Failure(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("connection refused")

	m.SetFailure(boom)
	_, err := m.SetIfAbsent(ctx, "k", "v", time.Second)
	assert.ErrorIs(t, err, boom)
	_, err = m.DeleteIfEqual(ctx, "k", "v")
	assert.ErrorIs(t, err, boom)

	m.SetFailure(nil)
	ok, err := m.SetIfAbsent(ctx, "k", "v", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_InvalidInput(t *testing.T) {
	m := NewMemoryStore()

	_, err := m.SetIfAbsent(context.Background(), "k", "v", 0)
	assert.ErrorIs(t, err, ErrInvalidTTL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.SetIfAbsent(ctx, "k", "v", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = m.DeleteIfEqual(ctx, "k", "v")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_ConcurrentSetIfAbsent(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := m.SetIfAbsent(ctx, "k", "v", time.Minute)
			if err == nil && ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(errors.New("i/o timeout")))
	assert.False(t, IsFatal(context.DeadlineExceeded))
	assert.True(t, IsFatal(ErrMisconfigured))
	assert.True(t, IsFatal(ErrInvalidTTL))
}
