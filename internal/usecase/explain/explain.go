// Package explain produces per-candidate justifications over the final
// ranked set.
package explain

import (
	"fmt"
	"strings"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/vehicle"
)

const fallbackReason = "it best matches your current request"

// Explain builds a justification for a candidate relative to the intent and
// the full ranked set it was selected from. The result is never empty.
func Explain(c vehicle.Candidate, in intent.Intent, ranked []vehicle.Candidate) string {
	var reasons []string

	if r := exclusionReason(c, in); r != "" {
		reasons = append(reasons, r)
	}
	if r := preferenceReason(c, in); r != "" {
		reasons = append(reasons, r)
	}
	if r := priceReason(c, in, ranked); r != "" {
		reasons = append(reasons, r)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, fallbackReason)
	}
	return strings.Join(reasons, "; ")
}

// exclusionReason states that active hard excludes were honored.
func exclusionReason(c vehicle.Candidate, in intent.Intent) string {
	excluded := in.ExcludedValues(intent.FieldType)
	if len(excluded) == 0 {
		return ""
	}
	for _, v := range excluded {
		if strings.EqualFold(c.Type, v) {
			return ""
		}
	}
	return fmt.Sprintf("it is not a %s, which you asked to avoid", strings.Join(excluded, " or "))
}

func preferenceReason(c vehicle.Candidate, in intent.Intent) string {
	if in.Soft.Type == "" || !strings.EqualFold(c.Type, in.Soft.Type) {
		return ""
	}
	return fmt.Sprintf("it matches your preferred type (%s)", in.Soft.Type)
}

// priceReason is computed over the post-filter, post-rank set, not the raw
// retrieval pool.
func priceReason(c vehicle.Candidate, in intent.Intent, ranked []vehicle.Candidate) string {
	obj, ok := in.Objective("price")
	if !ok || len(ranked) == 0 {
		return ""
	}

	minPrice, maxPrice := ranked[0].Price, ranked[0].Price
	for _, r := range ranked[1:] {
		if r.Price < minPrice {
			minPrice = r.Price
		}
		if r.Price > maxPrice {
			maxPrice = r.Price
		}
	}

	switch obj.Direction {
	case intent.Asc:
		if c.Price == minPrice {
			return "it is the cheapest available option"
		}
		if minPrice > 0 && c.Price <= minPrice*1.2 {
			return "it is among the more affordable options"
		}
	case intent.Desc:
		if c.Price == maxPrice {
			return "it is among the most premium options"
		}
	}
	return ""
}
