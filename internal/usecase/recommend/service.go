// Package recommend orchestrates one recommendation call: interpret,
// clarify if needed, blend, rank, explain, and record the interaction.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/event"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/vehicle"
	"github.com/taimoorKVD/car-recommendation-apis/internal/metrics"
	"github.com/taimoorKVD/car-recommendation-apis/internal/usecase/blend"
)

// Request is one recommendation call.
type Request struct {
	UserID              int64
	Query               string
	SessionID           string
	ClarificationAnswer string
}

// ClarificationRequest asks the user to resolve an ambiguous dimension.
type ClarificationRequest struct {
	Dimension string   `json:"dimension"`
	Question  string   `json:"question"`
	Options   []string `json:"options"`
}

// Result is either a ranked candidate list or a clarification prompt,
// never both.
type Result struct {
	Candidates    []vehicle.Candidate
	Clarification *ClarificationRequest
}

// Service orchestrates the recommendation pipeline.
type Service struct {
	interpreter Interpreter
	clarifier   Clarifier
	ranker      Ranker
	embedder    domain.Embedder
	userVecs    UserVectors
	vocab       VocabProvider
	events      EventRecorder
	prefs       PrefUpdater
	logger      *zap.Logger
}

// New creates a recommendation service.
func New(
	interpreter Interpreter,
	clarifier Clarifier,
	ranker Ranker,
	embedder domain.Embedder,
	userVecs UserVectors,
	vocab VocabProvider,
	events EventRecorder,
	prefs PrefUpdater,
	logger *zap.Logger,
) *Service {
	return &Service{
		interpreter: interpreter,
		clarifier:   clarifier,
		ranker:      ranker,
		embedder:    embedder,
		userVecs:    userVecs,
		vocab:       vocab,
		events:      events,
		prefs:       prefs,
		logger:      logger,
	}
}

// Recommend runs one recommendation call. Structural input errors are
// rejected before any external call is made.
func (s *Service) Recommend(ctx context.Context, req Request) (Result, error) {
	if err := validate(req); err != nil {
		return Result{}, err
	}

	var in intent.Intent
	var query string

	if req.ClarificationAnswer != "" {
		res, err := s.clarifier.Answer(ctx, req.UserID, req.SessionID, req.ClarificationAnswer)
		if err != nil {
			return Result{}, err
		}
		// Ranking re-runs against the query that opened the session,
		// not any new query text.
		in = res.Intent
		query = res.OriginalQuery
	} else {
		verdict, err := s.interpreter.Interpret(ctx, req.Query)
		if err != nil {
			return Result{}, err
		}
		if verdict.NeedsClarification {
			return s.requestClarification(ctx, req, verdict.Intent, verdict.Reason)
		}
		in = verdict.Intent
		query = req.Query
	}

	candidates, err := s.rankQuery(ctx, req.UserID, query, in)
	if err != nil {
		return Result{}, err
	}

	s.recordSearch(ctx, req.UserID, query)

	return Result{Candidates: candidates}, nil
}

func validate(req Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}
	if req.ClarificationAnswer != "" {
		if req.SessionID == "" {
			return fmt.Errorf("clarification answer requires a session id: %w", domain.ErrInvalidInput)
		}
		return nil
	}
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("query is required: %w", domain.ErrInvalidInput)
	}
	return nil
}

// rankQuery embeds the query, blends with the stored user vector and
// delegates to the ranker. User-vector retrieval failure is cold start,
// not an error.
func (s *Service) rankQuery(
	ctx context.Context, userID int64, query string, in intent.Intent,
) ([]vehicle.Candidate, error) {
	embResult, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	userVec, err := s.userVecs.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("User vector retrieval failed, treating as cold start",
				zap.Int64("user_id", userID), zap.Error(err))
		}
		userVec = nil
	}

	blended := blend.Blend(userVec, embResult.Embedding)

	candidates, err := s.ranker.Rank(ctx, blended, in)
	if err != nil {
		return nil, fmt.Errorf("rank candidates: %w", err)
	}
	return candidates, nil
}

// requestClarification builds the prompt and, when a session id was
// supplied, persists the pending session so the answer can resume.
func (s *Service) requestClarification(
	ctx context.Context, req Request, partial intent.Intent, reason string,
) (Result, error) {
	vocabTypes, err := s.vocab.VehicleTypes(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load vocabulary: %w", err)
	}

	if req.SessionID != "" {
		if err := s.clarifier.Open(ctx, req.UserID, req.SessionID, partial, req.Query); err != nil {
			return Result{}, err
		}
	}

	options := make([]string, 0, len(vocabTypes)+1)
	for _, v := range vocabTypes {
		options = append(options, v+" only")
	}
	options = append(options, "Any type")

	question := "What type of vehicle are you looking for?"
	if reason != "" {
		question = fmt.Sprintf("What type of vehicle are you looking for? (%s)", reason)
	}

	return Result{Clarification: &ClarificationRequest{
		Dimension: intent.FieldType,
		Question:  question,
		Options:   options,
	}}, nil
}

// recordSearch logs the search event and folds it into the preference
// vector. Failures are logged, never surfaced: the recommendation
// already succeeded.
func (s *Service) recordSearch(ctx context.Context, userID int64, query string) {
	ev := event.Event{
		UserID: userID,
		Type:   event.TypeSearch,
		Query:  query,
		Weight: event.TypeSearch.Weight(),
	}
	if _, err := s.events.Record(ctx, ev); err != nil {
		s.logger.Warn("Failed to record search event",
			zap.Int64("user_id", userID), zap.Error(err))
	} else {
		metrics.EventsRecordedTotal.WithLabelValues(string(event.TypeSearch)).Inc()
	}

	if err := s.prefs.Update(ctx, userID, query, event.TypeSearch.Weight()); err != nil {
		s.logger.Warn("Failed to update preference vector",
			zap.Int64("user_id", userID), zap.Error(err))
	}
}
