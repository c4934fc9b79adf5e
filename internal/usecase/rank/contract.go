package rank

import (
	"context"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/vehicle"
)

// Retriever defines the nearest-neighbor retrieval contract.
type Retriever interface {
	SearchKNN(ctx context.Context, vector []float32, limit int) ([]vehicle.Candidate, error)
}
