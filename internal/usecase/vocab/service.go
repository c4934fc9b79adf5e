// Package vocab maintains a lazily-populated cache of the catalog's
// categorical vocabulary. A stale cache is acceptable; correctness never
// depends on freshness.
package vocab

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Service serves vehicle type values from an in-process cache.
type Service struct {
	repo    Repository
	refresh time.Duration
	now     func() time.Time

	mu        sync.RWMutex
	types     []string
	fetchedAt time.Time
}

// New creates a vocabulary service. refresh bounds cache staleness;
// zero disables time-based refresh entirely.
func New(repo Repository, refresh time.Duration) *Service {
	return &Service{repo: repo, refresh: refresh, now: time.Now}
}

// VehicleTypes returns the cached vocabulary, loading it on first use or
// after the refresh interval has elapsed. On refresh failure a previously
// cached value is served instead of the error.
func (s *Service) VehicleTypes(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	cached, fresh := s.snapshot()
	s.mu.RUnlock()

	if cached != nil && fresh {
		return cached, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited.
	if cached, fresh := s.snapshot(); cached != nil && fresh {
		return cached, nil
	}

	types, err := s.repo.VehicleTypes(ctx)
	if err != nil {
		if s.types != nil {
			return cloneStrings(s.types), nil
		}
		return nil, fmt.Errorf("load vehicle types: %w", err)
	}

	s.types = types
	s.fetchedAt = s.now()
	return cloneStrings(s.types), nil
}

// Invalidate drops the cached vocabulary, forcing a reload on next use.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.types = nil
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}

// snapshot must be called with at least a read lock held.
func (s *Service) snapshot() ([]string, bool) {
	if s.types == nil {
		return nil, false
	}
	fresh := s.refresh <= 0 || s.now().Sub(s.fetchedAt) < s.refresh
	return cloneStrings(s.types), fresh
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
