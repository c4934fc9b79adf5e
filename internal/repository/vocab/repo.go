package vocab

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
)

// store is the consumer interface for vocabulary derivation (ISP).
type store interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// Repo derives the domain vocabulary from the vehicle catalog: the set
// of distinct vehicle types currently indexed.
type Repo struct {
	store store
}

// New creates a vocabulary repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// VehicleTypes returns the distinct vehicle types in the catalog,
// sorted for a stable order.
func (r *Repo) VehicleTypes(ctx context.Context) ([]string, error) {
	pattern := domain.KeyPrefix + domain.VehicleCollection + ":*"
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan vehicles: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall vehicles: %w", err)
	}

	seen := make(map[string]struct{})
	var types []string
	for _, m := range hashes {
		t := strings.TrimSpace(m["type"])
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}

	sort.Strings(types)
	return types, nil
}
