package rules

import (
	"context"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
)

// Repository defines the storage contract for intent rules.
type Repository interface {
	Load(ctx context.Context) (map[string]intent.Rule, error)
}
