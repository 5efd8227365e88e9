package rating

import "context"

// RatingRepository defines persistence operations for car ratings.
type RatingRepository interface {
	FindAll(ctx context.Context) ([]*Rating, error)
	FindByCarID(ctx context.Context, carID int) ([]*Rating, error)
	FindByUserID(ctx context.Context, userID string) ([]*Rating, error)
	// Add appends r unless the user already rated the same booking, in which
	// case it returns a ConflictError.
	Add(ctx context.Context, r *Rating) error
}
