package rank

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/vehicle"
)

type mockRetriever struct {
	pool      []vehicle.Candidate
	err       error
	lastLimit int
}

func (m *mockRetriever) SearchKNN(_ context.Context, _ []float32, limit int) ([]vehicle.Candidate, error) {
	m.lastLimit = limit
	return m.pool, m.err
}

func cand(id, typ string, price, score float64) vehicle.Candidate {
	return vehicle.Candidate{
		Vehicle: vehicle.Vehicle{ID: id, Type: typ, Price: price},
		Score:   score,
	}
}

func famCand(id, typ string, ff bool, score float64) vehicle.Candidate {
	return vehicle.Candidate{
		Vehicle: vehicle.Vehicle{ID: id, Type: typ, FamilyFriendly: ff, Price: 20000},
		Score:   score,
	}
}

func newService(r *mockRetriever) *Service {
	return New(r, 20, 5, zap.NewNop())
}

func TestRank_RequestsFullPool(t *testing.T) {
	r := &mockRetriever{}
	svc := newService(r)

	if _, err := svc.Rank(context.Background(), []float32{1}, intent.Intent{}); err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	if r.lastLimit != 20 {
		t.Errorf("expected pool size 20, got %d", r.lastLimit)
	}
}

func TestRank_HardIncludeFilter(t *testing.T) {
	r := &mockRetriever{pool: []vehicle.Candidate{
		cand("v1", "suv", 20000, 0.9),
		cand("v2", "sedan", 18000, 0.8),
		cand("v3", "SUV", 25000, 0.7),
	}}
	svc := newService(r)

	in := intent.Intent{}
	in.Hard.Include = append(in.Hard.Include, intent.Constraint{Field: intent.FieldType, Value: "suv"})

	got, err := svc.Rank(context.Background(), []float32{1}, in)
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 SUVs, got %d", len(got))
	}
	for _, c := range got {
		if c.ID == "v2" {
			t.Error("sedan should have been filtered out")
		}
	}
}

func TestRank_HardExcludeFilter(t *testing.T) {
	r := &mockRetriever{pool: []vehicle.Candidate{
		cand("v1", "suv", 20000, 0.9),
		cand("v2", "van", 18000, 0.8),
	}}
	svc := newService(r)

	in := intent.Intent{}
	in.Hard.Exclude = append(in.Hard.Exclude, intent.Constraint{Field: intent.FieldType, Value: "van"})

	got, err := svc.Rank(context.Background(), []float32{1}, in)
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "v1" {
		t.Errorf("expected only v1, got %+v", got)
	}
}

func TestRank_IncludeAndExcludeSameValueYieldsEmpty(t *testing.T) {
	r := &mockRetriever{pool: []vehicle.Candidate{
		cand("v1", "suv", 20000, 0.9),
		cand("v2", "sedan", 18000, 0.8),
	}}
	svc := newService(r)

	in := intent.Intent{}
	in.Hard.Include = append(in.Hard.Include, intent.Constraint{Field: intent.FieldType, Value: "suv"})
	in.Hard.Exclude = append(in.Hard.Exclude, intent.Constraint{Field: intent.FieldType, Value: "suv"})

	got, err := svc.Rank(context.Background(), []float32{1}, in)
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}

func TestRank_TypeBoostReordersWithinSimilarity(t *testing.T) {
	r := &mockRetriever{pool: []vehicle.Candidate{
		cand("v1", "sedan", 20000, 0.80),
		cand("v2", "suv", 21000, 0.70),
	}}
	svc := newService(r)

	in := intent.Intent{Soft: intent.SoftPreferences{Type: "suv"}}

	got, err := svc.Rank(context.Background(), []float32{1}, in)
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	// 0.70 + 0.15 = 0.85 > 0.80
	if got[0].ID != "v2" {
		t.Errorf("expected boosted suv first, got %s", got[0].ID)
	}
}

func TestRank_FamilyFriendlyBoost(t *testing.T) {
	r := &mockRetriever{pool: []vehicle.Candidate{
		famCand("v1", "suv", false, 0.80),
		famCand("v2", "suv", true, 0.78),
	}}
	svc := newService(r)

	ff := true
	in := intent.Intent{Soft: intent.SoftPreferences{FamilyFriendly: &ff}}

	got, err := svc.Rank(context.Background(), []float32{1}, in)
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	// 0.78 + 0.05 = 0.83 > 0.80
	if got[0].ID != "v2" {
		t.Errorf("expected family friendly candidate first, got %s", got[0].ID)
	}
}

func TestRank_ObjectiveOverridesSimilarity(t *testing.T) {
	// Similarity favors C > A > B; ascending price must yield B, A, C.
	r := &mockRetriever{pool: []vehicle.Candidate{
		cand("C", "suv", 30000, 0.95),
		cand("A", "suv", 20000, 0.90),
		cand("B", "suv", 15000, 0.85),
	}}
	svc := newService(r)

	in := intent.Intent{Objectives: []intent.Objective{{Field: "price", Direction: intent.Asc}}}

	got, err := svc.Rank(context.Background(), []float32{1}, in)
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	want := []string{"B", "A", "C"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s (full order %v)", i, id, got[i].ID, ids(got))
		}
	}
}

func TestRank_DescendingObjective(t *testing.T) {
	r := &mockRetriever{pool: []vehicle.Candidate{
		cand("A", "suv", 20000, 0.9),
		cand("B", "suv", 45000, 0.5),
	}}
	svc := newService(r)

	in := intent.Intent{Objectives: []intent.Objective{{Field: "price", Direction: intent.Desc}}}

	got, err := svc.Rank(context.Background(), []float32{1}, in)
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	if got[0].ID != "B" {
		t.Errorf("expected most expensive first, got %s", got[0].ID)
	}
}

func TestRank_TruncatesToLimit(t *testing.T) {
	var pool []vehicle.Candidate
	for i := 0; i < 12; i++ {
		pool = append(pool, cand(string(rune('a'+i)), "suv", 20000, float64(12-i)/12))
	}
	r := &mockRetriever{pool: pool}
	svc := newService(r)

	got, err := svc.Rank(context.Background(), []float32{1}, intent.Intent{})
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("expected 5 results, got %d", len(got))
	}
}

func TestRank_FewerSurvivorsReturnedAsIs(t *testing.T) {
	r := &mockRetriever{pool: []vehicle.Candidate{
		cand("v1", "suv", 20000, 0.9),
		cand("v2", "van", 18000, 0.8),
	}}
	svc := newService(r)

	in := intent.Intent{}
	in.Hard.Include = append(in.Hard.Include, intent.Constraint{Field: intent.FieldType, Value: "suv"})

	got, err := svc.Rank(context.Background(), []float32{1}, in)
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 survivor, none synthesized, got %d", len(got))
	}
}

func TestRank_AllCandidatesExplained(t *testing.T) {
	r := &mockRetriever{pool: []vehicle.Candidate{
		cand("v1", "suv", 20000, 0.9),
		cand("v2", "sedan", 18000, 0.8),
	}}
	svc := newService(r)

	got, err := svc.Rank(context.Background(), []float32{1}, intent.Intent{})
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	for _, c := range got {
		if c.Explanation == "" {
			t.Errorf("candidate %s has empty explanation", c.ID)
		}
	}
}

func TestRank_RetrievalFailurePropagates(t *testing.T) {
	r := &mockRetriever{err: errors.New("index down")}
	svc := newService(r)

	if _, err := svc.Rank(context.Background(), []float32{1}, intent.Intent{}); err == nil {
		t.Fatal("expected error")
	}
}

func ids(cands []vehicle.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.ID
	}
	return out
}
