package intent

// RawIntent is the boundary schema produced by the language-model parser
// before thresholds and vocabulary sanitation are applied.
type RawIntent struct {
	VehicleType    *GradedValue   `json:"vehicle_type"`
	NegatedTypes   []GradedValue  `json:"negated_types"`
	FamilyFriendly *bool          `json:"family_friendly"`
	Mileage        string         `json:"mileage"`
	Objectives     []RawObjective `json:"objectives"`
}

// GradedValue pairs an extracted value with the model's confidence in [0,1].
type GradedValue struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// RawObjective is an optimization goal as extracted, prior to whitelisting.
type RawObjective struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}
