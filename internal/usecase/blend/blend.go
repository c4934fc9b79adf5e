// Package blend mixes the stored user preference vector with the query
// embedding before candidate retrieval.
package blend

import "math"

// CosineSimilarity returns the cosine of the angle between a and b.
// Returns 0 when either vector is empty, zero, or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Alpha computes the personalization weight from the similarity between the
// user vector and the query vector. Aligned history pulls results toward the
// user profile, contradictory history defers to the current query.
// The result is always within [0.3, 0.8] for a present user vector.
func Alpha(userVec, queryVec []float32) float64 {
	if len(userVec) == 0 {
		return 0
	}
	sim := CosineSimilarity(userVec, queryVec)
	if sim < 0 {
		sim = 0
	} else if sim > 1 {
		sim = 1
	}
	return 0.3 + 0.5*sim
}

// Blend returns alpha*user + (1-alpha)*query element-wise.
// With no user vector (alpha 0) the query vector is returned unchanged,
// which is the cold-start behavior.
func Blend(userVec, queryVec []float32) []float32 {
	alpha := Alpha(userVec, queryVec)
	if alpha == 0 || len(userVec) != len(queryVec) {
		return queryVec
	}

	out := make([]float32, len(queryVec))
	for i := range queryVec {
		out[i] = float32(alpha*float64(userVec[i]) + (1-alpha)*float64(queryVec[i]))
	}
	return out
}
