package clarify

import (
	"context"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/session"
)

// Repository defines the storage contract for clarification sessions.
type Repository interface {
	FindPending(ctx context.Context, userID int64, sessionID string) (session.Session, error)
	CreatePending(ctx context.Context, userID int64, sessionID string, in intent.Intent, originalQuery string) error
	Resolve(ctx context.Context, s session.Session, merged intent.Intent) error
}

// VocabProvider serves the current categorical vocabulary for answer matching.
type VocabProvider interface {
	VehicleTypes(ctx context.Context) ([]string, error)
}
