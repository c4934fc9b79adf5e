// Package rank turns a blended vector and an Intent into the final
// ordered candidate list with explanations.
package rank

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/vehicle"
	"github.com/taimoorKVD/car-recommendation-apis/internal/usecase/explain"
)

// Soft-preference score boosts, applied additively.
const (
	boostTypeMatch           = 0.15
	boostFamilyFriendlyMatch = 0.05
)

// Service ranks retrieval candidates against an intent.
type Service struct {
	retriever Retriever
	poolSize  int
	limit     int
	logger    *zap.Logger
}

// New creates a ranking service. poolSize is the retrieval pool,
// limit the maximum number of returned candidates.
func New(retriever Retriever, poolSize, limit int, logger *zap.Logger) *Service {
	return &Service{retriever: retriever, poolSize: poolSize, limit: limit, logger: logger}
}

// Rank retrieves the candidate pool for the blended vector, applies
// hard filters, soft boosts and objectives in that order, truncates,
// and attaches explanations computed over the final set.
func (s *Service) Rank(
	ctx context.Context, blended []float32, in intent.Intent,
) ([]vehicle.Candidate, error) {
	pool, err := s.retriever.SearchKNN(ctx, blended, s.poolSize)
	if err != nil {
		return nil, fmt.Errorf("retrieve candidate pool: %w", err)
	}

	candidates := applyHardFilters(pool, in, s.logger)
	applyBoosts(candidates, in)

	// Boosts may reorder within the similarity ranking.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	// An objective overrides the similarity order entirely.
	if obj, ok := in.Objective("price"); ok {
		sort.SliceStable(candidates, func(i, j int) bool {
			if obj.Direction == intent.Desc {
				return candidates[i].Price > candidates[j].Price
			}
			return candidates[i].Price < candidates[j].Price
		})
	}

	if len(candidates) > s.limit {
		candidates = candidates[:s.limit]
	}

	for i := range candidates {
		candidates[i].Explanation = explain.Explain(candidates[i], in, candidates)
	}
	return candidates, nil
}

// applyHardFilters narrows the pool by hard includes first, then drops
// excluded values from what remains. A value in both sets therefore
// yields an empty result for that type, which is logged rather than
// silently ignored.
func applyHardFilters(pool []vehicle.Candidate, in intent.Intent, logger *zap.Logger) []vehicle.Candidate {
	include := in.IncludedValues(intent.FieldType)
	exclude := in.ExcludedValues(intent.FieldType)

	out := make([]vehicle.Candidate, 0, len(pool))
	for _, c := range pool {
		if len(include) > 0 && !matchesAny(c.Type, include) {
			continue
		}
		if matchesAny(c.Type, exclude) {
			continue
		}
		out = append(out, c)
	}

	if len(out) == 0 && len(pool) > 0 && overlaps(include, exclude) {
		logger.Warn("Hard include and exclude overlap, result is empty",
			zap.Strings("include", include), zap.Strings("exclude", exclude))
	}
	return out
}

func applyBoosts(candidates []vehicle.Candidate, in intent.Intent) {
	for i := range candidates {
		c := &candidates[i]
		if in.Soft.Type != "" && strings.EqualFold(c.Type, in.Soft.Type) {
			c.Score += boostTypeMatch
		}
		if in.Soft.FamilyFriendly != nil && c.FamilyFriendly == *in.Soft.FamilyFriendly {
			c.Score += boostFamilyFriendlyMatch
		}
	}
}

func matchesAny(typ string, values []string) bool {
	for _, v := range values {
		if strings.EqualFold(typ, v) {
			return true
		}
	}
	return false
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		if matchesAny(x, b) {
			return true
		}
	}
	return false
}
