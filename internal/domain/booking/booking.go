package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carhub/service-rental/pkg/domain"
)

// Booking is the aggregate root for a car rental.
type Booking struct {
	id         string
	carID      int
	userID     string
	startDate  time.Time
	endDate    time.Time
	totalPrice float64
	status     BookingStatus
	createdAt  time.Time
}

// NewBooking creates an active booking. The caller has already priced it.
func NewBooking(
	userID string,
	carID int,
	startDate time.Time,
	endDate time.Time,
	totalPrice float64,
	now time.Time,
) (*Booking, error) {
	if userID == "" {
		return nil, domain.NewValidationError("user ID is required")
	}
	if carID <= 0 {
		return nil, domain.NewValidationError("car ID is required")
	}
	if endDate.Before(startDate) {
		return nil, domain.NewValidationError("end date must not be before start date")
	}
	if totalPrice < 0 {
		return nil, domain.NewValidationError(fmt.Sprintf("total price must not be negative: %.2f", totalPrice))
	}

	return &Booking{
		id:         uuid.NewString(),
		carID:      carID,
		userID:     userID,
		startDate:  startDate.UTC(),
		endDate:    endDate.UTC(),
		totalPrice: totalPrice,
		status:     StatusActive,
		createdAt:  now.UTC(),
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id string,
	carID int,
	userID string,
	startDate time.Time,
	endDate time.Time,
	totalPrice float64,
	status BookingStatus,
	createdAt time.Time,
) *Booking {
	return &Booking{
		id:         id,
		carID:      carID,
		userID:     userID,
		startDate:  startDate,
		endDate:    endDate,
		totalPrice: totalPrice,
		status:     status,
		createdAt:  createdAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() string { return b.id }

// CarID returns the booked car.
func (b *Booking) CarID() int { return b.carID }

// UserID returns the customer who owns the booking.
func (b *Booking) UserID() string { return b.userID }

// StartDate returns the first moment of the rental.
func (b *Booking) StartDate() time.Time { return b.startDate }

// EndDate returns the last moment of the rental.
func (b *Booking) EndDate() time.Time { return b.endDate }

// TotalPrice returns the price charged for the whole rental.
func (b *Booking) TotalPrice() float64 { return b.totalPrice }

// Status returns the stored status, which may lag behind the clock until reconciled.
func (b *Booking) Status() BookingStatus { return b.status }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// --- Behavior ---

// IsOwnedBy reports whether the booking belongs to userID.
func (b *Booking) IsOwnedBy(userID string) bool {
	return b.userID == userID
}

// Reconcile corrects the status against now and reports whether it changed.
// An active booking whose end date has passed becomes completed; a completed
// booking whose rental window contains now becomes active again. Cancelled
// bookings are never touched.
func (b *Booking) Reconcile(now time.Time) bool {
	switch b.status {
	case StatusActive:
		if b.endDate.Before(now) {
			b.status = StatusCompleted
			return true
		}
	case StatusCompleted:
		if !now.Before(b.startDate) && !now.After(b.endDate) {
			b.status = StatusActive
			return true
		}
	}
	return false
}

// IsActiveAt reports whether the booking is active and not yet ended at now.
func (b *Booking) IsActiveAt(now time.Time) bool {
	return b.status == StatusActive && !b.endDate.Before(now)
}

// IsArchivedAt reports whether the booking belongs in the archive at now:
// completed, cancelled, or active but already past its end date.
func (b *Booking) IsArchivedAt(now time.Time) bool {
	switch b.status {
	case StatusCompleted, StatusCancelled:
		return true
	case StatusActive:
		return b.endDate.Before(now)
	}
	return false
}

// Archive marks the booking completed. Cancelled bookings are already
// archived and stay cancelled; it reports whether the status changed.
func (b *Booking) Archive() bool {
	if b.status != StatusActive {
		return false
	}
	b.status = StatusCompleted
	return true
}

// Restore marks a completed booking active again if its end date has not
// passed. Cancelled bookings are never restored.
func (b *Booking) Restore(now time.Time) bool {
	if b.status == StatusCancelled || b.endDate.Before(now) {
		return false
	}
	b.status = StatusActive
	return true
}

// Cancel transitions an active booking to cancelled.
func (b *Booking) Cancel() error {
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	b.status = StatusCancelled
	return nil
}

// Remaining returns the time left until the end date; negative once it has passed.
func (b *Booking) Remaining(now time.Time) time.Duration {
	return b.endDate.Sub(now)
}

// IsExpiringWithin reports whether an active booking ends within window of now.
// Bookings that already ended only match when includeExpired is set.
func (b *Booking) IsExpiringWithin(now time.Time, window time.Duration, includeExpired bool) bool {
	if b.status != StatusActive {
		return false
	}
	remaining := b.Remaining(now)
	if remaining > window {
		return false
	}
	return remaining > 0 || includeExpired
}

// Overlaps reports whether the booking holds its car during [start, end].
// Completed bookings keep their dates because reconciliation or a restore can
// make them active again.
func (b *Booking) Overlaps(start, end time.Time) bool {
	if b.status == StatusCancelled {
		return false
	}
	return !start.After(b.endDate) && !end.Before(b.startDate)
}

// RentalDays returns the number of billable days, at least one.
func (b *Booking) RentalDays() int {
	return RentalDays(b.startDate, b.endDate)
}
