// Package interpret turns a free-text query into a structured Intent by
// applying graded confidence rules and vocabulary sanitation to the raw
// parser output.
package interpret

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
)

// Result is the interpreter's verdict on a single query.
type Result struct {
	Intent             intent.Intent
	NeedsClarification bool
	Reason             string
}

// Service interprets free-text queries.
type Service struct {
	parser Parser
	vocab  VocabProvider
	rules  RulesProvider
	logger *zap.Logger
}

// New creates an interpreter service.
func New(parser Parser, vocab VocabProvider, rules RulesProvider, logger *zap.Logger) *Service {
	return &Service{parser: parser, vocab: vocab, rules: rules, logger: logger}
}

// objectiveWhitelist is the fixed set of sortable numeric fields.
var objectiveWhitelist = map[string]bool{"price": true}

// Interpret parses the query and grades the extraction into an Intent.
// Malformed parser output degrades to a clarification request; provider
// and vocabulary failures propagate.
func (s *Service) Interpret(ctx context.Context, query string) (Result, error) {
	vocabTypes, err := s.vocab.VehicleTypes(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load vocabulary: %w", err)
	}

	thresholds := s.rules.Thresholds(ctx)

	raw, err := s.parser.Parse(ctx, query, vocabTypes)
	if err != nil {
		if errors.Is(err, domain.ErrParserOutputInvalid) {
			s.logger.Warn("Parser output invalid, requesting clarification",
				zap.String("query", query), zap.Error(err))
			return Result{
				NeedsClarification: true,
				Reason:             "could not understand the request",
			}, nil
		}
		return Result{}, fmt.Errorf("parse intent: %w", err)
	}

	in, unresolved := s.gradeIntent(raw, vocabTypes, thresholds)

	// Required-dimension rule: an unconstrained primary dimension with more
	// than one vocabulary value needs a follow-up question.
	if !in.HasTypeSignal() && len(vocabTypes) > 1 {
		reason := "vehicle type is ambiguous"
		if unresolved {
			reason = "vehicle type mention was too uncertain"
		}
		return Result{Intent: in, NeedsClarification: true, Reason: reason}, nil
	}

	return Result{Intent: in}, nil
}

// gradeIntent applies thresholds and vocabulary sanitation to the raw
// extraction. The second return reports a below-weak-threshold type
// mention, which contributes to the clarification reason.
func (s *Service) gradeIntent(
	raw intent.RawIntent, vocabTypes []string, t intent.Thresholds,
) (intent.Intent, bool) {
	var in intent.Intent
	var unresolved bool

	if raw.VehicleType != nil {
		value, ok := matchVocab(raw.VehicleType.Value, vocabTypes)
		switch {
		case !ok:
			// Parser noise, discarded silently.
		case raw.VehicleType.Confidence >= t.Explicit:
			in.Hard.Include = append(in.Hard.Include,
				intent.Constraint{Field: intent.FieldType, Value: value})
		case raw.VehicleType.Confidence >= t.Weak:
			in.Soft.Type = value
		default:
			unresolved = true
		}
	}

	for _, neg := range raw.NegatedTypes {
		value, ok := matchVocab(neg.Value, vocabTypes)
		if !ok || neg.Confidence < t.Negation {
			// Low-confidence negations are dropped, not weakened.
			continue
		}
		in.Hard.Exclude = append(in.Hard.Exclude,
			intent.Constraint{Field: intent.FieldType, Value: value})
	}

	if raw.FamilyFriendly != nil {
		v := *raw.FamilyFriendly
		in.Soft.FamilyFriendly = &v
	}

	if m := intent.Mileage(strings.ToLower(strings.TrimSpace(raw.Mileage))); m.Valid() {
		in.Soft.Mileage = m
	}

	for _, obj := range raw.Objectives {
		field := strings.ToLower(strings.TrimSpace(obj.Field))
		dir := intent.Direction(strings.ToLower(strings.TrimSpace(obj.Direction)))
		if !objectiveWhitelist[field] || (dir != intent.Asc && dir != intent.Desc) {
			continue
		}
		in.Objectives = append(in.Objectives, intent.Objective{Field: field, Direction: dir})
	}

	return in, unresolved
}

// matchVocab resolves a parsed value against the vocabulary,
// case-insensitively, returning the canonical stored form.
func matchVocab(value string, vocabTypes []string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	for _, v := range vocabTypes {
		if strings.EqualFold(v, value) {
			return v, true
		}
	}
	return "", false
}
