// Package prefvector evolves per-user preference vectors from weighted
// interaction events. The serving path applies an O(1) decay-and-add
// update; a full replay rebuild exists for offline reconciliation only.
package prefvector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/event"
)

// Service maintains user preference vectors.
type Service struct {
	vectors  VectorRepository
	events   EventRepository
	vehicles VehicleReader
	embed    domain.Embedder
	decay    float64
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New creates a preference vector service. decay is the exponential
// decay constant applied to the existing vector on each update.
func New(
	vectors VectorRepository,
	events EventRepository,
	embed domain.Embedder,
	decay float64,
	logger *zap.Logger,
) *Service {
	return &Service{
		vectors: vectors,
		events:  events,
		embed:   embed,
		decay:   decay,
		logger:  logger,
		locks:   make(map[int64]*sync.Mutex),
	}
}

// WithVehicles lets Rebuild resolve catalog text for click and book
// events. Without it those events are skipped during replay.
func (s *Service) WithVehicles(vehicles VehicleReader) *Service {
	s.vehicles = vehicles
	return s
}

// Update folds one event into the user's preference vector:
// v' = decay*v + weight*embed(text). A missing stored vector is cold
// start, not an error. Empty event text is a no-op. Updates for the
// same user are serialized to avoid lost read-modify-writes.
func (s *Service) Update(ctx context.Context, userID int64, eventText string, weight float64) error {
	if eventText == "" || weight <= 0 {
		return nil
	}

	result, err := s.embed.Embed(ctx, eventText)
	if err != nil {
		return fmt.Errorf("embed event text: %w", err)
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.vectors.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get user vector: %w", err)
		}
		existing = nil
	}

	updated := decayAndAdd(existing, result.Embedding, s.decay, weight)

	if err := s.vectors.Set(ctx, userID, updated); err != nil {
		return fmt.Errorf("set user vector: %w", err)
	}
	return nil
}

// Rebuild replays the user's full event history in chronological order
// and writes back a unit-normalized vector. Must not run in the
// request-serving path.
func (s *Service) Rebuild(ctx context.Context, userID int64) error {
	events, err := s.events.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	var acc []float32
	for _, ev := range events {
		if ev.Weight <= 0 {
			continue
		}
		text, err := s.eventText(ctx, ev)
		if err != nil {
			return err
		}
		if text == "" {
			continue
		}
		result, err := s.embed.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embed event %s: %w", ev.ID, err)
		}
		acc = decayAndAdd(acc, result.Embedding, s.decay, ev.Weight)
	}

	if acc == nil {
		s.logger.Info("No qualifying events, rebuild skipped", zap.Int64("user_id", userID))
		return nil
	}

	normalize(acc)

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.vectors.Set(ctx, userID, acc); err != nil {
		return fmt.Errorf("set user vector: %w", err)
	}
	return nil
}

// eventText resolves what a replayed event learns from: catalog text
// for click and book events, the query text otherwise. A vanished
// vehicle is skipped, not fatal.
func (s *Service) eventText(ctx context.Context, ev event.Event) (string, error) {
	if ev.CarID != "" && s.vehicles != nil {
		v, err := s.vehicles.Get(ctx, ev.CarID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Warn("Vehicle missing during rebuild, event skipped",
					zap.String("event_id", ev.ID), zap.String("car_id", ev.CarID))
				return "", nil
			}
			return "", fmt.Errorf("resolve vehicle %s: %w", ev.CarID, err)
		}
		return v.EmbeddingText(), nil
	}
	return ev.Query, nil
}

// decayAndAdd returns decay*existing + weight*embedding. A nil existing
// vector contributes nothing, so the first event seeds the vector.
func decayAndAdd(existing, embedding []float32, decay, weight float64) []float32 {
	out := make([]float32, len(embedding))
	for i := range embedding {
		var prev float64
		if i < len(existing) {
			prev = float64(existing[i])
		}
		out[i] = float32(decay*prev + weight*float64(embedding[i]))
	}
	return out
}

// normalize scales v to unit length in place. A zero vector is left as is.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

func (s *Service) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[userID]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[userID] = l
	return l
}
