package cache

import (
	"context"
	"sync"
	"time"

	"github.com/germani/backend/internal/domain/shared"
)

// MemoryIdempotencyStore implements IdempotencyStore with an in-process
// map. Suitable for single-instance deployments and tests; entries are
// swept lazily on access.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewMemoryIdempotencyStore creates a new in-memory idempotency store
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		entries: make(map[string]time.Time),
	}
}

// MarkProcessed marks a request key as processed with a TTL, returning
// true only when the key was not yet present
func (s *MemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if expiry, ok := s.entries[key]; ok && expiry.After(now) {
		return false, nil
	}
	s.entries[key] = now.Add(ttl)
	s.sweep(now)
	return true, nil
}

// IsProcessed checks if a request key has already been processed
func (s *MemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.entries[key]
	return ok && expiry.After(time.Now()), nil
}

// Close releases the store's entries
func (s *MemoryIdempotencyStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]time.Time)
	return nil
}

// sweep removes expired entries; callers must hold the lock
func (s *MemoryIdempotencyStore) sweep(now time.Time) {
	for key, expiry := range s.entries {
		if expiry.Before(now) {
			delete(s.entries, key)
		}
	}
}

var _ shared.IdempotencyStore = (*MemoryIdempotencyStore)(nil)
