package session

import (
	"context"
	"time"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn     func(ctx context.Context, key string, fields map[string]string) error
	hsetCondFn func(ctx context.Context, key, condField, condValue string, fields map[string]string) (bool, error)
	hgetAllFn  func(ctx context.Context, key string) (map[string]string, error)
	existsFn   func(ctx context.Context, key string) (bool, error)
	expireFn   func(ctx context.Context, key string, ttl time.Duration) error
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HSetCond(ctx context.Context, key, condField, condValue string, fields map[string]string) (bool, error) {
	if m.hsetCondFn != nil {
		return m.hsetCondFn(ctx, key, condField, condValue, fields)
	}
	return true, nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if m.expireFn != nil {
		return m.expireFn(ctx, key, ttl)
	}
	return nil
}

func newTestRepo() (*Repo, *mockStore) {
	ms := &mockStore{}
	repo := New(ms).WithClock(func() time.Time {
		return time.UnixMilli(1700000000000)
	})
	return repo, ms
}
