package event

// Type classifies a user event.
type Type string

const (
	// TypeSearch is a free-text search.
	TypeSearch Type = "search"
	// TypeClick is a vehicle detail view.
	TypeClick Type = "click"
	// TypeBook is a completed booking.
	TypeBook Type = "book"
)

// Valid reports whether t is a known event type.
func (t Type) Valid() bool {
	return t == TypeSearch || t == TypeClick || t == TypeBook
}

// Weight returns the learning weight of the event type.
func (t Type) Weight() float64 {
	switch t {
	case TypeSearch:
		return 1
	case TypeClick:
		return 3
	case TypeBook:
		return 10
	default:
		return 0
	}
}

// Event is one observed user action the preference vector learns from.
type Event struct {
	ID        string
	UserID    int64
	Type      Type
	Query     string
	CarID     string
	Weight    float64
	CreatedAt int64 // unix millis
}
