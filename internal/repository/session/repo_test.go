package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
	domses "github.com/taimoorKVD/car-recommendation-apis/internal/domain/session"
)

func testIntent() intent.Intent {
	return intent.Intent{
		Hard: intent.HardConstraints{
			Include: []intent.Constraint{{Field: "type", Value: "SUV"}},
		},
	}
}

// --- FindPending ---

func TestFindPending_HappyPath(t *testing.T) {
	repo, ms := newTestRepo()
	ctx := context.Background()

	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "carrec:session:42:sess-1" {
			t.Errorf("unexpected key: %s", key)
		}
		return map[string]string{
			"status":         string(domses.StatusPending),
			"intent_json":    `{"hard_constraints":{"include":[{"field":"type","value":"SUV"}],"exclude":null},"soft_preferences":{}}`,
			"original_query": "a car for my family",
			"created_at":     "1700000000000",
		}, nil
	}

	s, err := repo.FindPending(ctx, 42, "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status != domses.StatusPending {
		t.Errorf("status = %s, want pending", s.Status)
	}
	if s.OriginalQuery != "a car for my family" {
		t.Errorf("original query = %q", s.OriginalQuery)
	}
	if len(s.Intent.Hard.Include) != 1 || s.Intent.Hard.Include[0].Value != "SUV" {
		t.Errorf("intent not hydrated: %+v", s.Intent)
	}
}

func TestFindPending_Missing(t *testing.T) {
	repo, ms := newTestRepo()
	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{}, nil
	}

	_, err := repo.FindPending(context.Background(), 42, "sess-1")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestFindPending_AlreadyResolved(t *testing.T) {
	repo, ms := newTestRepo()
	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{"status": string(domses.StatusResolved)}, nil
	}

	_, err := repo.FindPending(context.Background(), 42, "sess-1")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for resolved session, got %v", err)
	}
}

// --- CreatePending ---

func TestCreatePending_HappyPath(t *testing.T) {
	repo, ms := newTestRepo()
	ctx := context.Background()

	var gotFields map[string]string
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		if key != "carrec:session:42:sess-1" {
			t.Errorf("unexpected key: %s", key)
		}
		gotFields = fields
		return nil
	}

	err := repo.CreatePending(ctx, 42, "sess-1", testIntent(), "a car for my family")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFields["status"] != string(domses.StatusPending) {
		t.Errorf("status field = %q", gotFields["status"])
	}
	if gotFields["original_query"] != "a car for my family" {
		t.Errorf("original_query field = %q", gotFields["original_query"])
	}
	if gotFields["created_at"] != "1700000000000" {
		t.Errorf("created_at field = %q", gotFields["created_at"])
	}
}

func TestCreatePending_KeyAlreadyExists(t *testing.T) {
	repo, ms := newTestRepo()
	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }

	err := repo.CreatePending(context.Background(), 42, "sess-1", testIntent(), "q")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreatePending_SetsTTL(t *testing.T) {
	repo, ms := newTestRepo()
	repo = repo.WithTTL(30 * time.Minute)

	var gotTTL time.Duration
	ms.expireFn = func(_ context.Context, key string, ttl time.Duration) error {
		if key != "carrec:session:42:sess-1" {
			t.Errorf("unexpected key: %s", key)
		}
		gotTTL = ttl
		return nil
	}

	if err := repo.CreatePending(context.Background(), 42, "sess-1", testIntent(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTTL != 30*time.Minute {
		t.Errorf("ttl = %v, want 30m", gotTTL)
	}
}

func TestCreatePending_NoTTLByDefault(t *testing.T) {
	repo, ms := newTestRepo()
	ms.expireFn = func(_ context.Context, _ string, _ time.Duration) error {
		t.Fatal("expire must not be called without a configured TTL")
		return nil
	}

	if err := repo.CreatePending(context.Background(), 42, "sess-1", testIntent(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Resolve ---

func TestResolve_GatedOnPendingStatus(t *testing.T) {
	repo, ms := newTestRepo()
	ctx := context.Background()

	ms.hsetCondFn = func(_ context.Context, key, condField, condValue string, fields map[string]string) (bool, error) {
		if key != "carrec:session:42:sess-1" {
			t.Errorf("unexpected key: %s", key)
		}
		if condField != "status" || condValue != string(domses.StatusPending) {
			t.Errorf("guard = %s=%s, want status=pending", condField, condValue)
		}
		if fields["status"] != string(domses.StatusResolved) {
			t.Errorf("status field = %q", fields["status"])
		}
		return true, nil
	}

	s := domses.Session{UserID: 42, SessionID: "sess-1", Status: domses.StatusPending}
	if err := repo.Resolve(ctx, s, testIntent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolve_ConcurrentLoser(t *testing.T) {
	repo, ms := newTestRepo()
	ms.hsetCondFn = func(_ context.Context, _, _, _ string, _ map[string]string) (bool, error) {
		return false, nil
	}

	s := domses.Session{UserID: 42, SessionID: "sess-1", Status: domses.StatusPending}
	err := repo.Resolve(context.Background(), s, testIntent())
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for lost CAS, got %v", err)
	}
}
