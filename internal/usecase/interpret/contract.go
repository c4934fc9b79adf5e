package interpret

import (
	"context"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
)

// Parser defines the external semantic parser contract.
type Parser interface {
	Parse(ctx context.Context, query string, vehicleTypes []string) (intent.RawIntent, error)
}

// VocabProvider serves the current categorical vocabulary.
type VocabProvider interface {
	VehicleTypes(ctx context.Context) ([]string, error)
}

// RulesProvider serves the graded confidence thresholds.
type RulesProvider interface {
	Thresholds(ctx context.Context) intent.Thresholds
}
