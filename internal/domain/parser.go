package domain

import (
	"context"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
)

// IntentParser extracts structured purchase intent from a free-text query.
// vehicleTypes is the catalog vocabulary the parser may ground type values in.
type IntentParser interface {
	Parse(ctx context.Context, query string, vehicleTypes []string) (intent.RawIntent, error)
}
