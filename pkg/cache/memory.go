package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Expired entries read as misses and
// are only removed by Sweep.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist or entry is expired.
func (s *MemoryStore) Get(_ context.Context, key Key) (*Entry, error) {
	s.mu.RLock()
	entry, ok := s.entries[key.String()]
	now := s.now()
	s.mu.RUnlock()

	if !ok || entry.ExpiredAt(now) {
		CacheMisses.WithLabelValues(layerMemory).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(layerMemory).Inc()
	return entry, nil
}

// Set stores entry under key, replacing any previous entry.
func (s *MemoryStore) Set(_ context.Context, key Key, entry *Entry) error {
	if entry == nil {
		CacheErrors.WithLabelValues("set").Inc()
		return ErrInvalidEntry
	}

	s.mu.Lock()
	s.entries[key.String()] = entry
	n := len(s.entries)
	s.mu.Unlock()

	CacheEntries.WithLabelValues(layerMemory).Set(float64(n))
	return nil
}

// Delete removes a cache entry.
func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	delete(s.entries, key.String())
	n := len(s.entries)
	s.mu.Unlock()

	CacheEntries.WithLabelValues(layerMemory).Set(float64(n))
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	now := s.now()
	removed := 0
	for k, entry := range s.entries {
		if entry.ExpiredAt(now) {
			delete(s.entries, k)
			removed++
		}
	}
	n := len(s.entries)
	s.mu.Unlock()

	if removed > 0 {
		CacheEvictions.WithLabelValues(layerMemory).Add(float64(removed))
	}
	CacheEntries.WithLabelValues(layerMemory).Set(float64(n))
	return removed
}

// StartSweeper runs Sweep every interval until ctx is done or the returned
// stop function is called. A non-positive interval disables sweeping.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) (stop func()) {
	if interval <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// SetClock replaces the time source (for testing).
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
