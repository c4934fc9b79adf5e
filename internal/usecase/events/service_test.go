package events

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/event"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/vehicle"
)

type mockRepo struct {
	recorded []event.Event
	err      error
}

func (m *mockRepo) Record(_ context.Context, ev event.Event) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.recorded = append(m.recorded, ev)
	return "ev-1", nil
}

type mockVehicles struct {
	v   vehicle.Vehicle
	err error
}

func (m *mockVehicles) Get(_ context.Context, _ string) (vehicle.Vehicle, error) {
	return m.v, m.err
}

type mockPrefs struct {
	texts   []string
	weights []float64
	err     error
}

func (m *mockPrefs) Update(_ context.Context, _ int64, text string, weight float64) error {
	m.texts = append(m.texts, text)
	m.weights = append(m.weights, weight)
	return m.err
}

func newService(repo *mockRepo, vehicles *mockVehicles, prefs *mockPrefs) *Service {
	return New(repo, vehicles, prefs, zap.NewNop())
}

func TestRecord_SearchLearnsFromQuery(t *testing.T) {
	repo := &mockRepo{}
	prefs := &mockPrefs{}
	svc := newService(repo, &mockVehicles{}, prefs)

	id, err := svc.Record(context.Background(), 7, event.TypeSearch, "family SUV", "")
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if id != "ev-1" {
		t.Errorf("unexpected id: %q", id)
	}
	if len(repo.recorded) != 1 || repo.recorded[0].Weight != 1 {
		t.Errorf("unexpected recorded event: %+v", repo.recorded)
	}
	if len(prefs.texts) != 1 || prefs.texts[0] != "family SUV" {
		t.Errorf("expected learning from query text, got %v", prefs.texts)
	}
}

func TestRecord_ClickLearnsFromVehicleText(t *testing.T) {
	repo := &mockRepo{}
	prefs := &mockPrefs{}
	vehicles := &mockVehicles{v: vehicle.Vehicle{
		ID: "v1", Brand: "Toyota", Model: "RAV4", Type: "suv", Description: "compact suv",
	}}
	svc := newService(repo, vehicles, prefs)

	_, err := svc.Record(context.Background(), 7, event.TypeClick, "", "v1")
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if repo.recorded[0].Weight != 3 {
		t.Errorf("expected click weight 3, got %v", repo.recorded[0].Weight)
	}
	if prefs.texts[0] != vehicles.v.EmbeddingText() {
		t.Errorf("expected learning from vehicle text, got %q", prefs.texts[0])
	}
	if prefs.weights[0] != 3 {
		t.Errorf("expected weight 3, got %v", prefs.weights[0])
	}
}

func TestRecord_BookWeight(t *testing.T) {
	repo := &mockRepo{}
	vehicles := &mockVehicles{v: vehicle.Vehicle{ID: "v1", Brand: "Kia", Model: "EV9", Type: "suv"}}
	svc := newService(repo, vehicles, &mockPrefs{})

	_, err := svc.Record(context.Background(), 7, event.TypeBook, "", "v1")
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if repo.recorded[0].Weight != 10 {
		t.Errorf("expected book weight 10, got %v", repo.recorded[0].Weight)
	}
}

func TestRecord_Validation(t *testing.T) {
	svc := newService(&mockRepo{}, &mockVehicles{}, &mockPrefs{})

	tests := []struct {
		name   string
		userID int64
		evType event.Type
		query  string
		carID  string
	}{
		{"missing user", 0, event.TypeSearch, "q", ""},
		{"unknown type", 7, "hover", "q", ""},
		{"search without query", 7, event.TypeSearch, "  ", ""},
		{"click without car", 7, event.TypeClick, "", ""},
		{"book without car", 7, event.TypeBook, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tt.userID, tt.evType, tt.query, tt.carID)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRecord_UnknownVehiclePropagates(t *testing.T) {
	vehicles := &mockVehicles{err: domain.ErrNotFound}
	svc := newService(&mockRepo{}, vehicles, &mockPrefs{})

	_, err := svc.Record(context.Background(), 7, event.TypeClick, "", "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecord_PrefFailureDoesNotFailEvent(t *testing.T) {
	repo := &mockRepo{}
	prefs := &mockPrefs{err: errors.New("provider down")}
	svc := newService(repo, &mockVehicles{}, prefs)

	if _, err := svc.Record(context.Background(), 7, event.TypeSearch, "q", ""); err != nil {
		t.Fatalf("expected success despite pref failure, got %v", err)
	}
	if len(repo.recorded) != 1 {
		t.Error("expected event recorded")
	}
}
