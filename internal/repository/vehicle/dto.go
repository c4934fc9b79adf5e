package vehicle

import (
	"encoding/binary"
	"math"
	"strconv"

	domveh "github.com/taimoorKVD/car-recommendation-apis/internal/domain/vehicle"
)

// vehicleToHash converts a vehicle plus its vector to an HSET field map.
func vehicleToHash(v domveh.Vehicle, vector []float32) map[string]string {
	ff := "0"
	if v.FamilyFriendly {
		ff = "1"
	}
	return map[string]string{
		"brand":           v.Brand,
		"model":           v.Model,
		"type":            v.Type,
		"price":           strconv.FormatFloat(v.Price, 'f', -1, 64),
		"family_friendly": ff,
		"description":     v.Description,
		"vector":          vectorToBytes(vector),
	}
}

// vehicleFromHash hydrates a vehicle from an HGETALL or FT.SEARCH field map.
func vehicleFromHash(id string, m map[string]string) domveh.Vehicle {
	price, _ := strconv.ParseFloat(m["price"], 64)
	return domveh.Vehicle{
		ID:             id,
		Brand:          m["brand"],
		Model:          m["model"],
		Type:           m["type"],
		Price:          price,
		FamilyFriendly: m["family_friendly"] == "1",
		Description:    m["description"],
	}
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
