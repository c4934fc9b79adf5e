package recommend

import (
	"context"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/event"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/vehicle"
	"github.com/taimoorKVD/car-recommendation-apis/internal/usecase/clarify"
	"github.com/taimoorKVD/car-recommendation-apis/internal/usecase/interpret"
)

// Interpreter turns a free-text query into an intent verdict.
type Interpreter interface {
	Interpret(ctx context.Context, query string) (interpret.Result, error)
}

// Clarifier manages the clarification session round-trip.
type Clarifier interface {
	Open(ctx context.Context, userID int64, sessionID string, in intent.Intent, originalQuery string) error
	Answer(ctx context.Context, userID int64, sessionID, answer string) (clarify.Resolution, error)
}

// Ranker produces the ordered, explained candidate list.
type Ranker interface {
	Rank(ctx context.Context, blended []float32, in intent.Intent) ([]vehicle.Candidate, error)
}

// UserVectors reads stored preference vectors.
type UserVectors interface {
	Get(ctx context.Context, userID int64) ([]float32, error)
}

// VocabProvider serves the categorical vocabulary for option rendering.
type VocabProvider interface {
	VehicleTypes(ctx context.Context) ([]string, error)
}

// EventRecorder persists interaction events.
type EventRecorder interface {
	Record(ctx context.Context, ev event.Event) (string, error)
}

// PrefUpdater folds an event into the user's preference vector.
type PrefUpdater interface {
	Update(ctx context.Context, userID int64, eventText string, weight float64) error
}
