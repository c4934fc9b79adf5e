package vocab

import "context"

// Repository defines the storage contract for the domain vocabulary.
type Repository interface {
	VehicleTypes(ctx context.Context) ([]string, error)
}
