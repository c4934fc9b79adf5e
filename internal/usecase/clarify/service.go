// Package clarify drives the clarification session state machine:
// NONE→PENDING when interpretation is ambiguous, PENDING→RESOLVED when
// the answer is merged. No other transitions exist.
package clarify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
	"github.com/taimoorKVD/car-recommendation-apis/internal/metrics"
)

// Resolution is the outcome of merging a clarification answer.
type Resolution struct {
	Intent        intent.Intent
	OriginalQuery string
}

// Service manages clarification sessions. Answer processing is
// serialized per (userID, sessionID) key; the conditional store write
// backs that up across processes.
type Service struct {
	repo  Repository
	vocab VocabProvider

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a clarification service.
func New(repo Repository, vocab VocabProvider) *Service {
	return &Service{repo: repo, vocab: vocab, locks: make(map[string]*sync.Mutex)}
}

// Open stores a new pending session holding the partial intent and the
// original query.
func (s *Service) Open(
	ctx context.Context, userID int64, sessionID string, in intent.Intent, originalQuery string,
) error {
	if err := s.repo.CreatePending(ctx, userID, sessionID, in, originalQuery); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	metrics.ClarificationsTotal.WithLabelValues("opened").Inc()
	return nil
}

// Answer merges the clarification answer into the stored pending session
// and resolves it. Returns the merged intent together with the original
// query so ranking re-runs against the query that opened the session.
func (s *Service) Answer(
	ctx context.Context, userID int64, sessionID, answer string,
) (Resolution, error) {
	lock := s.keyLock(userID, sessionID)
	lock.Lock()
	defer lock.Unlock()

	ses, err := s.repo.FindPending(ctx, userID, sessionID)
	if err != nil {
		return Resolution{}, fmt.Errorf("find pending session: %w", err)
	}
	if ses.OriginalQuery == "" {
		return Resolution{}, fmt.Errorf("session %s has no stored query: %w",
			sessionID, domain.ErrSessionCorrupted)
	}

	vocabTypes, err := s.vocab.VehicleTypes(ctx)
	if err != nil {
		return Resolution{}, fmt.Errorf("load vocabulary: %w", err)
	}

	merged := MergeAnswer(ses.Intent, answer, vocabTypes)

	if err := s.repo.Resolve(ctx, ses, merged); err != nil {
		return Resolution{}, fmt.Errorf("resolve session: %w", err)
	}
	metrics.ClarificationsTotal.WithLabelValues("resolved").Inc()

	return Resolution{Intent: merged, OriginalQuery: ses.OriginalQuery}, nil
}

// MergeAnswer applies the clarification answer to the stored intent.
// "any type" clears all type constraints; "<value> only" for a
// vocabulary value sets a hard include and drops any soft type
// preference; any other answer is a deliberate no-op.
func MergeAnswer(in intent.Intent, answer string, vocabTypes []string) intent.Intent {
	out := in.Clone()
	norm := strings.ToLower(strings.TrimSpace(answer))

	if norm == "any type" || norm == "any" {
		out.Hard.Include = removeField(out.Hard.Include, intent.FieldType)
		out.Hard.Exclude = removeField(out.Hard.Exclude, intent.FieldType)
		out.Soft.Type = ""
		return out
	}

	value, ok := strings.CutSuffix(norm, " only")
	if !ok {
		return out
	}
	value = strings.TrimSpace(value)

	for _, v := range vocabTypes {
		if strings.EqualFold(v, value) {
			out.Hard.Include = removeField(out.Hard.Include, intent.FieldType)
			out.Hard.Include = append(out.Hard.Include,
				intent.Constraint{Field: intent.FieldType, Value: v})
			out.Soft.Type = ""
			return out
		}
	}
	return out
}

func removeField(cs []intent.Constraint, field string) []intent.Constraint {
	out := cs[:0]
	for _, c := range cs {
		if c.Field != field {
			out = append(out, c)
		}
	}
	return out
}

func (s *Service) keyLock(userID int64, sessionID string) *sync.Mutex {
	key := fmt.Sprintf("%d:%s", userID, sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[key] = l
	return l
}
