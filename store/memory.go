package store

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-process Store with the same semantics as RedisStore,
// including expiry. It is meant for tests and single-process use.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time

	failWith error
	sets     int
	deletes  int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// SetFailure makes every subsequent call return err. Pass nil to recover.
func (m *MemoryStore) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// SetClock replaces the time source used for expiry.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// SetCalls returns how many SetIfAbsent calls were made.
func (m *MemoryStore) SetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

// DeleteCalls returns how many DeleteIfEqual calls were made.
func (m *MemoryStore) DeleteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deletes
}

// Get returns the live value stored under key.
func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	return e.value, ok
}

// SetIfAbsent stores value under key for ttl unless a live entry exists.
func (m *MemoryStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if ttl < time.Millisecond {
		return false, ErrInvalidTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.failWith != nil {
		return false, m.failWith
	}
	if _, ok := m.live(key); ok {
		return false, nil
	}
	// Truncate like PX does.
	ttl = ttl.Truncate(time.Millisecond)
	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	return true, nil
}

// DeleteIfEqual removes key if it is live and holds value.
func (m *MemoryStore) DeleteIfEqual(ctx context.Context, key, value string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.failWith != nil {
		return 0, m.failWith
	}
	e, ok := m.live(key)
	if !ok || e.value != value {
		return 0, nil
	}
	delete(m.entries, key)
	return 1, nil
}

// live must be called with mu held. Expired entries are dropped lazily.
func (m *MemoryStore) live(key string) (memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}
