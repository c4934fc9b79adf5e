package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
	domses "github.com/taimoorKVD/car-recommendation-apis/internal/domain/session"
)

// store is the consumer interface for clarification sessions (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetCond(ctx context.Context, key, condField, condValue string, fields map[string]string) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Repo persists clarification sessions keyed by (userID, sessionID).
type Repo struct {
	store store
	ttl   time.Duration
	now   func() time.Time
}

// New creates a session repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now}
}

// WithTTL makes pending sessions expire after ttl. Zero disables expiry.
func (r *Repo) WithTTL(ttl time.Duration) *Repo {
	r.ttl = ttl
	return r
}

// WithClock overrides the clock, for tests.
func (r *Repo) WithClock(now func() time.Time) *Repo {
	r.now = now
	return r
}

// FindPending returns the pending session for the key.
// Returns domain.ErrSessionNotFound when no session exists or the
// session at the key is already resolved.
func (r *Repo) FindPending(ctx context.Context, userID int64, sessionID string) (domses.Session, error) {
	m, err := r.store.HGetAll(ctx, sessionKey(userID, sessionID))
	if err != nil {
		return domses.Session{}, fmt.Errorf("hgetall session: %w", err)
	}
	if len(m) == 0 || m["status"] != string(domses.StatusPending) {
		return domses.Session{}, domain.ErrSessionNotFound
	}

	s, err := sessionFromHash(userID, sessionID, m)
	if err != nil {
		return domses.Session{}, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return s, nil
}

// CreatePending stores a new pending session. An existing key, pending
// or resolved, is never overwritten: resolved sessions do not
// transition back, and restarting requires a fresh sessionID.
func (r *Repo) CreatePending(
	ctx context.Context, userID int64, sessionID string, in intent.Intent, originalQuery string,
) error {
	key := sessionKey(userID, sessionID)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check session exists: %w", err)
	}
	if exists {
		return fmt.Errorf("session %s already exists: %w", sessionID, domain.ErrInvalidInput)
	}

	s := domses.Session{
		UserID:        userID,
		SessionID:     sessionID,
		Status:        domses.StatusPending,
		Intent:        in,
		OriginalQuery: originalQuery,
		CreatedAt:     r.now().UnixMilli(),
	}
	fields, err := sessionToHash(s)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset session %s: %w", sessionID, err)
	}
	if r.ttl > 0 {
		if err := r.store.Expire(ctx, key, r.ttl); err != nil {
			return fmt.Errorf("expire session %s: %w", sessionID, err)
		}
	}
	return nil
}

// Resolve transitions a session pending→resolved, storing the merged
// intent. The write is gated on the current status so concurrent
// answers cannot both succeed; the loser gets ErrSessionNotFound.
func (r *Repo) Resolve(ctx context.Context, s domses.Session, merged intent.Intent) error {
	intentJSON, err := marshalIntent(merged)
	if err != nil {
		return err
	}

	ok, err := r.store.HSetCond(ctx,
		sessionKey(s.UserID, s.SessionID),
		"status", string(domses.StatusPending),
		map[string]string{
			"status":      string(domses.StatusResolved),
			"intent_json": intentJSON,
			"resolved_at": strconv.FormatInt(r.now().UnixMilli(), 10),
		},
	)
	if err != nil {
		return fmt.Errorf("resolve session %s: %w", s.SessionID, err)
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

func sessionKey(userID int64, sessionID string) string {
	return fmt.Sprintf("%ssession:%d:%s", domain.KeyPrefix, userID, sessionID)
}
