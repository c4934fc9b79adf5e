package rules

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
)

type mockRepo struct {
	rules map[string]intent.Rule
	err   error
	calls int
}

func (m *mockRepo) Load(_ context.Context) (map[string]intent.Rule, error) {
	m.calls++
	return m.rules, m.err
}

func TestThresholds_Defaults(t *testing.T) {
	svc := New(&mockRepo{rules: map[string]intent.Rule{}}, time.Minute, zap.NewNop())

	got := svc.Thresholds(context.Background())
	want := intent.DefaultThresholds()
	if got != want {
		t.Errorf("expected defaults %+v, got %+v", want, got)
	}
}

func TestThresholds_StoredOverrides(t *testing.T) {
	repo := &mockRepo{rules: map[string]intent.Rule{
		intent.RuleExplicitMention: {Action: "hard_include", Threshold: 0.7},
		intent.RuleNegation:        {Action: "hard_exclude", Threshold: 0.95},
	}}
	svc := New(repo, time.Minute, zap.NewNop())

	got := svc.Thresholds(context.Background())
	if got.Explicit != 0.7 {
		t.Errorf("expected explicit 0.7, got %v", got.Explicit)
	}
	if got.Weak != 0.4 {
		t.Errorf("expected weak default 0.4, got %v", got.Weak)
	}
	if got.Negation != 0.95 {
		t.Errorf("expected negation 0.95, got %v", got.Negation)
	}
}

func TestThresholds_LoadFailureDegradesToDefaults(t *testing.T) {
	svc := New(&mockRepo{err: errors.New("store down")}, time.Minute, zap.NewNop())

	got := svc.Thresholds(context.Background())
	if got != intent.DefaultThresholds() {
		t.Errorf("expected defaults on load failure, got %+v", got)
	}
}

func TestThresholds_Cached(t *testing.T) {
	repo := &mockRepo{rules: map[string]intent.Rule{}}
	svc := New(repo, time.Minute, zap.NewNop())

	svc.Thresholds(context.Background())
	svc.Thresholds(context.Background())

	if repo.calls != 1 {
		t.Errorf("expected 1 repository call, got %d", repo.calls)
	}

	svc.Invalidate()
	svc.Thresholds(context.Background())
	if repo.calls != 2 {
		t.Errorf("expected reload after invalidate, got %d calls", repo.calls)
	}
}
