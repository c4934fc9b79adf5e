package rules

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
)

// store is the consumer interface for intent rules (ISP).
type store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo reads intent rules from a single Redis hash, one JSON rule per field.
type Repo struct {
	store store
}

// New creates a rules repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Load returns all stored rules keyed by rule name. An absent hash
// yields an empty map; the caller falls back to compiled defaults.
func (r *Repo) Load(ctx context.Context) (map[string]intent.Rule, error) {
	m, err := r.store.HGetAll(ctx, rulesKey())
	if err != nil {
		return nil, fmt.Errorf("hgetall intent rules: %w", err)
	}

	out := make(map[string]intent.Rule, len(m))
	for name, raw := range m {
		var rule intent.Rule
		if err := json.Unmarshal([]byte(raw), &rule); err != nil {
			return nil, fmt.Errorf("unmarshal rule %q: %w", name, err)
		}
		out[name] = rule
	}
	return out, nil
}

func rulesKey() string {
	return domain.KeyPrefix + "intent_rules"
}
