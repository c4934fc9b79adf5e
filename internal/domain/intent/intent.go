package intent

// FieldType is the primary categorical dimension of the vehicle domain.
const FieldType = "type"

// Constraint is a single (field, value) pair in a hard constraint set.
type Constraint struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// HardConstraints are filters candidates must (include) or must not (exclude) satisfy.
type HardConstraints struct {
	Include []Constraint `json:"include"`
	Exclude []Constraint `json:"exclude"`
}

// Mileage is the requested mileage band.
type Mileage string

const (
	// MileageLow prefers low-mileage vehicles.
	MileageLow Mileage = "low"
	// MileageMedium prefers mid-mileage vehicles.
	MileageMedium Mileage = "medium"
	// MileageHigh accepts high-mileage vehicles.
	MileageHigh Mileage = "high"
)

// Valid reports whether m is a known mileage band.
func (m Mileage) Valid() bool {
	return m == MileageLow || m == MileageMedium || m == MileageHigh
}

// SoftPreferences are non-binding signals that adjust ranking without excluding candidates.
// Zero values mean "not expressed".
type SoftPreferences struct {
	Type           string  `json:"type,omitempty"`
	FamilyFriendly *bool   `json:"family_friendly,omitempty"`
	Mileage        Mileage `json:"mileage,omitempty"`
}

// Direction is a sort direction for an objective.
type Direction string

const (
	// Asc sorts ascending.
	Asc Direction = "asc"
	// Desc sorts descending.
	Desc Direction = "desc"
)

// Objective is a requested sort order that overrides similarity ranking.
type Objective struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Intent is the structured representation of a user's request. It is
// created by the interpreter and mutated only by the clarification
// merge, which operates on a Clone.
type Intent struct {
	Hard       HardConstraints `json:"hard_constraints"`
	Soft       SoftPreferences `json:"soft_preferences"`
	Objectives []Objective     `json:"objectives"`
}

// Clone returns a deep copy.
func (in Intent) Clone() Intent {
	out := in
	out.Hard.Include = append([]Constraint(nil), in.Hard.Include...)
	out.Hard.Exclude = append([]Constraint(nil), in.Hard.Exclude...)
	out.Objectives = append([]Objective(nil), in.Objectives...)
	if in.Soft.FamilyFriendly != nil {
		v := *in.Soft.FamilyFriendly
		out.Soft.FamilyFriendly = &v
	}
	return out
}

// IncludedValues returns the hard-include values for the given field, in order.
func (in Intent) IncludedValues(field string) []string {
	return values(in.Hard.Include, field)
}

// ExcludedValues returns the hard-exclude values for the given field, in order.
func (in Intent) ExcludedValues(field string) []string {
	return values(in.Hard.Exclude, field)
}

// HasTypeSignal reports whether the primary categorical dimension is
// resolved by either a hard include or a soft preference.
func (in Intent) HasTypeSignal() bool {
	return len(in.IncludedValues(FieldType)) > 0 || in.Soft.Type != ""
}

// Objective returns the first objective on the given field, if any.
func (in Intent) Objective(field string) (Objective, bool) {
	for _, o := range in.Objectives {
		if o.Field == field {
			return o, true
		}
	}
	return Objective{}, false
}

func values(cs []Constraint, field string) []string {
	var out []string
	for _, c := range cs {
		if c.Field == field {
			out = append(out, c.Value)
		}
	}
	return out
}
