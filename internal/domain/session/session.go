package session

import "github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"

// Status is the lifecycle state of a clarification session.
type Status string

const (
	// StatusPending means the session awaits a clarification answer.
	StatusPending Status = "pending"
	// StatusResolved means the answer was merged. Terminal.
	StatusResolved Status = "resolved"
)

// Session holds a partially-resolved intent across one clarification
// round-trip, keyed by (UserID, SessionID). At most one pending session
// may exist per key.
type Session struct {
	UserID        int64
	SessionID     string
	Status        Status
	Intent        intent.Intent
	OriginalQuery string
	CreatedAt     int64 // unix millis
	ResolvedAt    int64 // unix millis, zero while pending
}
