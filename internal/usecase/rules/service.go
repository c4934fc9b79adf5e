// Package rules serves graded confidence thresholds for intent
// interpretation from a lazily-populated cache.
package rules

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
)

// Service resolves effective thresholds from stored rules over defaults.
type Service struct {
	repo    Repository
	refresh time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu        sync.RWMutex
	cached    *intent.Thresholds
	fetchedAt time.Time
}

// New creates a rules service. refresh bounds cache staleness;
// zero disables time-based refresh.
func New(repo Repository, refresh time.Duration, logger *zap.Logger) *Service {
	return &Service{repo: repo, refresh: refresh, logger: logger, now: time.Now}
}

// Thresholds returns the effective cutoffs. Stored rules override defaults
// per name; a load failure degrades to defaults rather than failing the
// request.
func (s *Service) Thresholds(ctx context.Context) intent.Thresholds {
	s.mu.RLock()
	if s.cached != nil && s.fresh() {
		t := *s.cached
		s.mu.RUnlock()
		return t
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.fresh() {
		return *s.cached
	}

	t := intent.DefaultThresholds()

	stored, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load intent rules, using defaults", zap.Error(err))
		if s.cached != nil {
			return *s.cached
		}
		return t
	}

	if r, ok := stored[intent.RuleExplicitMention]; ok && r.Threshold > 0 {
		t.Explicit = r.Threshold
	}
	if r, ok := stored[intent.RuleWeakMention]; ok && r.Threshold > 0 {
		t.Weak = r.Threshold
	}
	if r, ok := stored[intent.RuleNegation]; ok && r.Threshold > 0 {
		t.Negation = r.Threshold
	}

	s.cached = &t
	s.fetchedAt = s.now()
	return t
}

// Invalidate drops the cached thresholds, forcing a reload on next use.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}

// fresh must be called with at least a read lock held.
func (s *Service) fresh() bool {
	return s.refresh <= 0 || s.now().Sub(s.fetchedAt) < s.refresh
}
