package vehicle

import (
	"context"
	"errors"
	"testing"

	"github.com/taimoorKVD/car-recommendation-apis/internal/db"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
	domveh "github.com/taimoorKVD/car-recommendation-apis/internal/domain/vehicle"
)

func testVehicle() domveh.Vehicle {
	return domveh.Vehicle{
		ID:             "v-1",
		Brand:          "Toyota",
		Model:          "RAV4",
		Type:           "SUV",
		Price:          32000,
		FamilyFriendly: true,
		Description:    "compact crossover",
	}
}

// --- EnsureIndex ---

func TestEnsureIndex_CreatesWhenMissing(t *testing.T) {
	repo, ms := newTestRepo()

	var gotDef *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		gotDef = def
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotDef == nil {
		t.Fatal("expected FT.CREATE call")
	}
	if gotDef.Name != "carrec:vehicles:idx" {
		t.Errorf("index name = %s", gotDef.Name)
	}
	var vectorField *db.IndexField
	for i := range gotDef.Fields {
		if gotDef.Fields[i].Type == db.IndexFieldVector {
			vectorField = &gotDef.Fields[i]
		}
	}
	if vectorField == nil {
		t.Fatal("index has no vector field")
	}
	if vectorField.VectorDim != testVectorDim {
		t.Errorf("vector dim = %d, want %d", vectorField.VectorDim, testVectorDim)
	}
}

func TestEnsureIndex_SkipsWhenExists(t *testing.T) {
	repo, ms := newTestRepo()
	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		t.Fatal("FT.CREATE must not be called when the index exists")
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Upsert ---

func TestUpsert_HappyPath(t *testing.T) {
	repo, ms := newTestRepo()

	var gotKey string
	var gotFields map[string]string
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		gotKey = key
		gotFields = fields
		return nil
	}

	err := repo.Upsert(context.Background(), testVehicle(), []float32{0.1, 0.2, 0.3, 0.4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "carrec:vehicles:v-1" {
		t.Errorf("key = %s", gotKey)
	}
	if gotFields["type"] != "SUV" || gotFields["family_friendly"] != "1" {
		t.Errorf("payload fields: %v", gotFields)
	}
	if len(gotFields["vector"]) != testVectorDim*4 {
		t.Errorf("vector blob len = %d, want %d", len(gotFields["vector"]), testVectorDim*4)
	}
}

func TestUpsert_RequiresID(t *testing.T) {
	repo, _ := newTestRepo()
	v := testVehicle()
	v.ID = ""

	err := repo.Upsert(context.Background(), v, []float32{0.1, 0.2, 0.3, 0.4})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpsert_RejectsDimMismatch(t *testing.T) {
	repo, _ := newTestRepo()

	err := repo.Upsert(context.Background(), testVehicle(), []float32{0.1, 0.2})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// --- Get ---

func TestGet_NotFound(t *testing.T) {
	repo, ms := newTestRepo()
	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{}, nil
	}

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_HappyPath(t *testing.T) {
	repo, ms := newTestRepo()
	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "carrec:vehicles:v-1" {
			t.Errorf("unexpected key: %s", key)
		}
		return map[string]string{
			"brand":           "Toyota",
			"model":           "RAV4",
			"type":            "SUV",
			"price":           "32000",
			"family_friendly": "1",
			"description":     "compact crossover",
		}, nil
	}

	v, err := repo.Get(context.Background(), "v-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != testVehicle() {
		t.Errorf("vehicle = %+v", v)
	}
}

// --- SearchKNN ---

func TestSearchKNN_MapsEntries(t *testing.T) {
	repo, ms := newTestRepo()

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != "carrec:vehicles:idx" {
			t.Errorf("index = %s", q.IndexName)
		}
		if q.K != 20 {
			t.Errorf("k = %d, want 20", q.K)
		}
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{
					Key:    "carrec:vehicles:v-1",
					Score:  0.92,
					Fields: map[string]string{"brand": "Toyota", "type": "SUV", "price": "32000"},
				},
				{
					Key:    "carrec:vehicles:v-2",
					Score:  0.85,
					Fields: map[string]string{"brand": "Honda", "type": "sedan", "price": "27000"},
				},
			},
		}, nil
	}

	out, err := repo.SearchKNN(context.Background(), []float32{0.1, 0.2, 0.3, 0.4}, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d candidates", len(out))
	}
	if out[0].ID != "v-1" || out[0].Score != 0.92 {
		t.Errorf("first candidate: %+v", out[0])
	}
	if out[1].Type != "sedan" || out[1].Price != 27000 {
		t.Errorf("second candidate: %+v", out[1])
	}
}

func TestSearchKNN_EmptyResult(t *testing.T) {
	repo, ms := newTestRepo()
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 0}, nil
	}

	out, err := repo.SearchKNN(context.Background(), []float32{0.1, 0.2, 0.3, 0.4}, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("expected nil candidates, got %v", out)
	}
}

func TestSearchKNN_StoreError(t *testing.T) {
	repo, ms := newTestRepo()
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, errors.New("index gone")
	}

	_, err := repo.SearchKNN(context.Background(), []float32{0.1, 0.2, 0.3, 0.4}, 20)
	if err == nil {
		t.Fatal("expected error on FT.SEARCH failure")
	}
}
