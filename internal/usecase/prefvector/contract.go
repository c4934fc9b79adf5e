package prefvector

import (
	"context"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/event"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/vehicle"
)

// VectorRepository defines the storage contract for user preference vectors.
type VectorRepository interface {
	Get(ctx context.Context, userID int64) ([]float32, error)
	Set(ctx context.Context, userID int64, vec []float32) error
}

// EventRepository lists a user's recorded events for offline rebuilds.
type EventRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]event.Event, error)
}

// VehicleReader resolves catalog text for click and book events during
// a rebuild.
type VehicleReader interface {
	Get(ctx context.Context, id string) (vehicle.Vehicle, error)
}
