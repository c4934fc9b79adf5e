package events

import (
	"context"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/event"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/vehicle"
)

// Repository persists interaction events.
type Repository interface {
	Record(ctx context.Context, ev event.Event) (string, error)
}

// VehicleReader resolves a vehicle so click and book events can learn
// from its catalog text.
type VehicleReader interface {
	Get(ctx context.Context, id string) (vehicle.Vehicle, error)
}

// PrefUpdater folds an event into the user's preference vector.
type PrefUpdater interface {
	Update(ctx context.Context, userID int64, eventText string, weight float64) error
}
