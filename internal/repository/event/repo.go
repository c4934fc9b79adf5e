package event

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
	domevent "github.com/taimoorKVD/car-recommendation-apis/internal/domain/event"
)

// store is the consumer interface for event records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// Repo appends user event records, one hash per event.
type Repo struct {
	store store
	now   func() time.Time
}

// New creates an event repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now}
}

// WithClock overrides the clock, for tests.
func (r *Repo) WithClock(now func() time.Time) *Repo {
	r.now = now
	return r
}

// Record persists an event and returns its assigned id.
func (r *Repo) Record(ctx context.Context, ev domevent.Event) (string, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt == 0 {
		ev.CreatedAt = r.now().UnixMilli()
	}

	fields := map[string]string{
		"user_id":    strconv.FormatInt(ev.UserID, 10),
		"event_type": string(ev.Type),
		"query":      ev.Query,
		"car_id":     ev.CarID,
		"weight":     strconv.FormatFloat(ev.Weight, 'f', -1, 64),
		"created_at": strconv.FormatInt(ev.CreatedAt, 10),
	}
	if err := r.store.HSet(ctx, eventKey(ev.UserID, ev.ID), fields); err != nil {
		return "", fmt.Errorf("hset event %s: %w", ev.ID, err)
	}
	return ev.ID, nil
}

// ListByUser returns all recorded events for a user, oldest first.
// Used only by the offline preference-vector rebuild.
func (r *Repo) ListByUser(ctx context.Context, userID int64) ([]domevent.Event, error) {
	pattern := fmt.Sprintf("%sevent:%d:*", domain.KeyPrefix, userID)
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall events: %w", err)
	}

	events := make([]domevent.Event, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		weight, _ := strconv.ParseFloat(m["weight"], 64)
		createdAt, _ := strconv.ParseInt(m["created_at"], 10, 64)
		events = append(events, domevent.Event{
			ID:        idFromKey(keys[i]),
			UserID:    userID,
			Type:      domevent.Type(m["event_type"]),
			Query:     m["query"],
			CarID:     m["car_id"],
			Weight:    weight,
			CreatedAt: createdAt,
		})
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt < events[j].CreatedAt
	})
	return events, nil
}

func eventKey(userID int64, id string) string {
	return fmt.Sprintf("%sevent:%d:%s", domain.KeyPrefix, userID, id)
}

func idFromKey(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == ':' {
			return key[i+1:]
		}
	}
	return key
}
