package decisioncache

import (
	"context"
	"sync"
	"time"

	"github.com/AzielCF/az-digest/domains/gating"
)

// MemoryStore is an in-memory implementation of gating.DecisionCache.
// Used as fallback when Valkey is not enabled.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]*gating.CacheEntry
	stop      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates a new in-memory decision cache.
func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		entries: make(map[string]*gating.CacheEntry),
		stop:    make(chan struct{}),
	}
	go store.cleanupLoop()
	return store
}

// Close stops the background cleanup goroutine. The store remains usable.
func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
	})
}

func (s *MemoryStore) Get(ctx context.Context, fingerprint string) (*gating.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[fingerprint]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, nil
	}
	return entry, nil
}

func (s *MemoryStore) Save(ctx context.Context, fingerprint string, entry *gating.CacheEntry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ExpiresAt = time.Now().Add(ttl)
	s.entries[fingerprint] = entry
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, fingerprint)
	return nil
}

// Cleanup drops expired entries. Also runs periodically in the background.
func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, entry := range s.entries {
		if now.After(entry.ExpiresAt) {
			delete(s.entries, key)
		}
	}
	return nil
}

// Len reports the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = s.Cleanup(context.Background())
		case <-s.stop:
			return
		}
	}
}
