package profile

import (
	"context"
)

// Repository defines read access to recipient profiles keyed by owner id.
type Repository interface {
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
}
