// Package idempotency reserves client-supplied idempotency keys so a retried
// mutation is applied at most once.
package idempotency

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a reserved key blocks replays.
const DefaultTTL = 24 * time.Hour

// Store reserves keys. Reserve reports false when the key is already held.
type Store interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Key builds the storage key for a caller's request.
func Key(caller, procedure, id string) string {
	return strings.Join([]string{caller, procedure, id}, "|")
}

// MemoryStore keeps reservations in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	keys map[string]time.Time
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string]time.Time), now: time.Now}
}

// Reserve implements Store. Expired reservations are replaced.
func (s *MemoryStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if exp, ok := s.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.keys[key] = now.Add(ttl)
	return true, nil
}

// Release implements Store.
func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}
