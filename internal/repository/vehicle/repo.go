package vehicle

import (
	"context"
	"fmt"
	"strings"

	"github.com/taimoorKVD/car-recommendation-apis/internal/db"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
	domveh "github.com/taimoorKVD/car-recommendation-apis/internal/domain/vehicle"
)

// store is the consumer interface for the vehicle catalog (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo stores the vehicle catalog as hashes under one FT vector index.
type Repo struct {
	store     store
	vectorDim int
}

// New creates a vehicle repository.
func New(s store, vectorDim int) *Repo {
	if vectorDim <= 0 {
		vectorDim = domain.DefaultVectorDim
	}
	return &Repo{store: s, vectorDim: vectorDim}
}

// EnsureIndex creates the catalog FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	name := indexName()
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     name,
		Prefixes: []string{keyPrefix()},
		Fields: []db.IndexField{
			{Name: "type", Type: db.IndexFieldTag},
			{Name: "price", Type: db.IndexFieldNumeric},
			{
				Name:           "vector",
				Type:           db.IndexFieldVector,
				VectorDim:      r.vectorDim,
				VectorDistance: db.DistanceCosine,
			},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create vehicle index: %w", err)
	}
	return nil
}

// Upsert writes a vehicle payload together with its embedding vector.
func (r *Repo) Upsert(ctx context.Context, v domveh.Vehicle, vector []float32) error {
	if v.ID == "" {
		return fmt.Errorf("vehicle id is required: %w", domain.ErrInvalidInput)
	}
	if len(vector) != r.vectorDim {
		return fmt.Errorf("vector dim %d, want %d: %w", len(vector), r.vectorDim, domain.ErrInvalidInput)
	}

	if err := r.store.HSet(ctx, vehicleKey(v.ID), vehicleToHash(v, vector)); err != nil {
		return fmt.Errorf("hset vehicle %s: %w", v.ID, err)
	}
	return nil
}

// Get retrieves a vehicle payload by id.
func (r *Repo) Get(ctx context.Context, id string) (domveh.Vehicle, error) {
	m, err := r.store.HGetAll(ctx, vehicleKey(id))
	if err != nil {
		return domveh.Vehicle{}, fmt.Errorf("hgetall vehicle %s: %w", id, err)
	}
	if len(m) == 0 {
		return domveh.Vehicle{}, domain.ErrNotFound
	}
	return vehicleFromHash(id, m), nil
}

// SearchKNN retrieves the nearest catalog vehicles for a blended vector.
// Each returned candidate carries the base similarity score.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, limit int) ([]domveh.Candidate, error) {
	q := &db.KNNQuery{
		IndexName: indexName(),
		Vector:    vector,
		K:         limit,
		ReturnFields: []string{
			"brand", "model", "type", "price", "family_friendly", "description", "__vector_score",
		},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn vehicles: %w", err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	prefix := keyPrefix()
	out := make([]domveh.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)
		out = append(out, domveh.Candidate{
			Vehicle: vehicleFromHash(id, entry.Fields),
			Score:   entry.Score,
		})
	}
	return out, nil
}

// Redis key patterns: carrec:vehicles:{id}, index carrec:vehicles:idx

func keyPrefix() string {
	return domain.KeyPrefix + domain.VehicleCollection + ":"
}

func vehicleKey(id string) string {
	return keyPrefix() + id
}

func indexName() string {
	return keyPrefix() + "idx"
}
