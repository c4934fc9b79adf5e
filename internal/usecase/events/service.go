// Package events ingests user interaction events and feeds them into
// preference learning.
package events

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/event"
	"github.com/taimoorKVD/car-recommendation-apis/internal/metrics"
)

// Service records events and updates preference vectors.
type Service struct {
	repo     Repository
	vehicles VehicleReader
	prefs    PrefUpdater
	logger   *zap.Logger
}

// New creates an events service.
func New(repo Repository, vehicles VehicleReader, prefs PrefUpdater, logger *zap.Logger) *Service {
	return &Service{repo: repo, vehicles: vehicles, prefs: prefs, logger: logger}
}

// Record validates and persists one event, then folds it into the
// user's preference vector. Search events learn from the query text;
// click and book events learn from the referenced vehicle's catalog
// text.
func (s *Service) Record(
	ctx context.Context, userID int64, evType event.Type, query, carID string,
) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}
	if !evType.Valid() {
		return "", fmt.Errorf("unknown event type %q: %w", evType, domain.ErrInvalidInput)
	}

	learnText := strings.TrimSpace(query)

	if evType == event.TypeClick || evType == event.TypeBook {
		if carID == "" {
			return "", fmt.Errorf("%s event requires a car id: %w", evType, domain.ErrInvalidInput)
		}
		v, err := s.vehicles.Get(ctx, carID)
		if err != nil {
			return "", fmt.Errorf("resolve vehicle %s: %w", carID, err)
		}
		learnText = v.EmbeddingText()
	} else if learnText == "" {
		return "", fmt.Errorf("search event requires a query: %w", domain.ErrInvalidInput)
	}

	id, err := s.repo.Record(ctx, event.Event{
		UserID: userID,
		Type:   evType,
		Query:  query,
		CarID:  carID,
		Weight: evType.Weight(),
	})
	if err != nil {
		return "", fmt.Errorf("record event: %w", err)
	}
	metrics.EventsRecordedTotal.WithLabelValues(string(evType)).Inc()

	if err := s.prefs.Update(ctx, userID, learnText, evType.Weight()); err != nil {
		s.logger.Warn("Failed to update preference vector from event",
			zap.Int64("user_id", userID), zap.String("event_id", id), zap.Error(err))
	}

	return id, nil
}
