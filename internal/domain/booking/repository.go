package booking

import "context"

// MutateFunc edits the full booking collection in place and reports whether
// it should be written back.
type MutateFunc func(bookings []*Booking) (write bool, err error)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindAll returns every booking in stored order.
	FindAll(ctx context.Context) ([]*Booking, error)

	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id string) (*Booking, error)

	// FindByUserID returns the bookings of one user in stored order.
	FindByUserID(ctx context.Context, userID string) ([]*Booking, error)

	// FindByCarID returns the bookings of one car in stored order.
	FindByCarID(ctx context.Context, carID int) ([]*Booking, error)

	// Save appends a new booking.
	Save(ctx context.Context, booking *Booking) error

	// SaveIf appends booking only if check accepts the current collection.
	// The check and the append happen in one atomic read-modify-write.
	SaveIf(ctx context.Context, booking *Booking, check func(existing []*Booking) error) error

	// UpdateAll runs fn over the whole collection as one atomic read-modify-write.
	UpdateAll(ctx context.Context, fn MutateFunc) error
}
