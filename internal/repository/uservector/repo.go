package uservector

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
)

// store is the consumer interface for user preference vectors (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo persists per-user preference vectors as binary float32 blobs.
type Repo struct {
	store store
}

// New creates a user vector repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Get returns the stored preference vector for a user.
// Returns domain.ErrNotFound when the user has no vector yet.
func (r *Repo) Get(ctx context.Context, userID int64) ([]float32, error) {
	data, err := r.store.Get(ctx, vectorKey(userID))
	if err != nil {
		// The caller treats any retrieval failure as cold start; keep
		// the distinction available for logging.
		return nil, fmt.Errorf("get user vector %d: %w: %w", userID, domain.ErrNotFound, err)
	}

	vec, err := bytesToVector(data)
	if err != nil {
		return nil, fmt.Errorf("decode user vector %d: %w: %w", userID, domain.ErrNotFound, err)
	}
	return vec, nil
}

// Set stores the preference vector for a user.
func (r *Repo) Set(ctx context.Context, userID int64, vector []float32) error {
	if err := r.store.Set(ctx, vectorKey(userID), vectorToBytes(vector)); err != nil {
		return fmt.Errorf("set user vector %d: %w", userID, err)
	}
	return nil
}

func vectorKey(userID int64) string {
	return domain.KeyPrefix + "uservec:" + strconv.FormatInt(userID, 10)
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector data: len=%d", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
