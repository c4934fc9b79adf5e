// Package chi exposes the recommendation pipeline over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/event"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/vehicle"
	eventsuc "github.com/taimoorKVD/car-recommendation-apis/internal/usecase/events"
	healthuc "github.com/taimoorKVD/car-recommendation-apis/internal/usecase/health"
	recommenduc "github.com/taimoorKVD/car-recommendation-apis/internal/usecase/recommend"
)

// Error codes returned to clients.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeSessionNotFound  = "session_not_found"
	codeSessionCorrupted = "session_corrupted"
	codeProviderError    = "provider_error"
	codeInternalError    = "internal_error"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the recommendation API.
type Server struct {
	recommend     *recommenduc.Service
	events        *eventsuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	recommend *recommenduc.Service,
	events *eventsuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recommend: recommend,
		events:    events,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, codeSessionNotFound),
		sentinelHandler(domain.ErrSessionCorrupted, http.StatusConflict, codeSessionCorrupted),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrParserProviderError, http.StatusBadGateway, codeProviderError),
	}
	return s
}

// RegisterRoutes mounts all API routes on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/recommend", s.Recommend)
	r.Post("/api/v1/events", s.RecordEvent)
	r.Get("/health", s.Health)
	r.Get("/metrics", s.Metrics)
}

// recommendRequest is the POST /api/v1/recommend body.
type recommendRequest struct {
	UserID              int64  `json:"user_id"`
	Query               string `json:"query,omitempty"`
	SessionID           string `json:"session_id,omitempty"`
	ClarificationAnswer string `json:"clarification_answer,omitempty"`
}

// candidateResponse is one ranked vehicle with its explanation.
type candidateResponse struct {
	ID             string  `json:"id"`
	Brand          string  `json:"brand"`
	Model          string  `json:"model"`
	Type           string  `json:"type"`
	Price          float64 `json:"price"`
	FamilyFriendly bool    `json:"family_friendly"`
	Description    string  `json:"description,omitempty"`
	Score          float64 `json:"score"`
	Explanation    string  `json:"explanation"`
}

// clarificationResponse prompts the user to resolve a dimension.
type clarificationResponse struct {
	Dimension string   `json:"dimension"`
	Question  string   `json:"question"`
	Options   []string `json:"options"`
}

// recommendResponse carries either results or a clarification, never both.
type recommendResponse struct {
	Results       []candidateResponse    `json:"results,omitempty"`
	Clarification *clarificationResponse `json:"clarification,omitempty"`
}

// Recommend handles POST /api/v1/recommend.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.recommend.Recommend(r.Context(), recommenduc.Request{
		UserID:              req.UserID,
		Query:               req.Query,
		SessionID:           req.SessionID,
		ClarificationAnswer: req.ClarificationAnswer,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if result.Clarification != nil {
		writeJSON(w, http.StatusOK, recommendResponse{
			Clarification: &clarificationResponse{
				Dimension: result.Clarification.Dimension,
				Question:  result.Clarification.Question,
				Options:   result.Clarification.Options,
			},
		})
		return
	}

	results := make([]candidateResponse, len(result.Candidates))
	for i, c := range result.Candidates {
		results[i] = candidateToResponse(c)
	}
	writeJSON(w, http.StatusOK, recommendResponse{Results: results})
}

// eventRequest is the POST /api/v1/events body.
type eventRequest struct {
	UserID int64  `json:"user_id"`
	Type   string `json:"type"`
	Query  string `json:"query,omitempty"`
	CarID  string `json:"car_id,omitempty"`
}

// eventResponse confirms a recorded event.
type eventResponse struct {
	EventID string `json:"event_id"`
}

// RecordEvent handles POST /api/v1/events.
func (s *Server) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id, err := s.events.Record(r.Context(), req.UserID, event.Type(req.Type), req.Query, req.CarID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, eventResponse{EventID: id})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func candidateToResponse(c vehicle.Candidate) candidateResponse {
	return candidateResponse{
		ID:             c.ID,
		Brand:          c.Brand,
		Model:          c.Model,
		Type:           c.Type,
		Price:          c.Price,
		FamilyFriendly: c.FamilyFriendly,
		Description:    c.Description,
		Score:          c.Score,
		Explanation:    c.Explanation,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrSessionNotFound,
		domain.ErrSessionCorrupted,
		domain.ErrNotFound,
		domain.ErrEmbeddingProviderError,
		domain.ErrParserProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
