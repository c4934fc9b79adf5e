package vehicle

// Vehicle is a catalog item.
type Vehicle struct {
	ID             string
	Brand          string
	Model          string
	Type           string
	Price          float64
	FamilyFriendly bool
	Description    string
}

// EmbeddingText is the text embedded for catalog indexing and for
// click/book preference events.
func (v Vehicle) EmbeddingText() string {
	return v.Brand + " " + v.Model + " " + v.Type + " " + v.Description
}

// Candidate is a vehicle retrieved for one recommendation call,
// carrying a mutable similarity score. Candidates are ephemeral and
// never persisted.
type Candidate struct {
	Vehicle
	Score       float64
	Explanation string
}
