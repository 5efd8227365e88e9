package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"

	bookingDomain "github.com/carhub/service-rental/internal/domain/booking"
	carDomain "github.com/carhub/service-rental/internal/domain/car"
	"github.com/carhub/service-rental/pkg/domain"
	"github.com/carhub/service-rental/pkg/events"
)

// CreateBookingRequest holds the data needed to book a car.
type CreateBookingRequest struct {
	CarID     int    `json:"car_id" binding:"required,min=1"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID         string  `json:"id"`
	CarID      int     `json:"car_id"`
	UserID     string  `json:"user_id"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	TotalPrice float64 `json:"total_price"`
	Currency   string  `json:"currency"`
	Status     string  `json:"status"`
	RentalDays int     `json:"rental_days"`
	CreatedAt  string  `json:"created_at"`
}

// ExpiringBooking is an active booking that ends within the lookahead window.
type ExpiringBooking struct {
	Booking   BookingDTO
	EndDate   time.Time
	Remaining time.Duration
}

// BookingStatsDTO holds aggregate booking statistics.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
	TotalRevenue  float64          `json:"total_revenue"`
	Currency      string           `json:"currency"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo    bookingDomain.BookingRepository
	cars    carDomain.CarRepository
	pricing bookingDomain.PricingStrategy
	events  emitter
	clock   clock.Clock
	logger  *zap.Logger
}

// NewBookingService creates a new BookingService. publisher may be nil, in
// which case no events are emitted.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	cars carDomain.CarRepository,
	pricing bookingDomain.PricingStrategy,
	publisher EventPublisher,
	clk clock.Clock,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:    repo,
		cars:    cars,
		pricing: pricing,
		events:  emitter{publisher: publisher, logger: logger},
		clock:   clk,
		logger:  logger,
	}
}

// CreateBooking books a car for the given user.
func (s *BookingService) CreateBooking(ctx context.Context, userID string, req CreateBookingRequest) (*BookingDTO, error) {
	start, err := bookingDomain.ParseDate("start_date", req.StartDate)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	end, err := bookingDomain.ParseDate("end_date", req.EndDate)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	now := s.clock.Now().UTC()
	if start.Before(now.Truncate(24 * time.Hour)) {
		return nil, domain.NewValidationError("start date must not be in the past")
	}

	car, err := s.cars.FindByID(ctx, req.CarID)
	if err != nil {
		return nil, err
	}
	if !car.Available() {
		return nil, domain.NewConflictError(fmt.Sprintf("car %d is not available", car.ID()))
	}

	total, err := s.pricing.Calculate(bookingDomain.PricingParams{
		PricePerDay: car.PricePerDay(),
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
	}

	bk, err := bookingDomain.NewBooking(userID, car.ID(), start, end, total, now)
	if err != nil {
		return nil, err
	}

	err = s.repo.SaveIf(ctx, bk, func(existing []*bookingDomain.Booking) error {
		return checkCarFree(existing, bk)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID()),
		zap.String("user_id", userID),
		zap.Int("car_id", car.ID()),
	)
	s.events.emit(ctx, events.TopicBookingEvents, events.BookingCreated, events.BookingCreatedEvent{
		BookingID:  bk.ID(),
		UserID:     bk.UserID(),
		CarID:      bk.CarID(),
		StartDate:  bk.StartDate(),
		EndDate:    bk.EndDate(),
		TotalPrice: bk.TotalPrice(),
		Currency:   domain.CurrencyUSD,
		OccurredAt: now,
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking returns a booking visible to the caller.
func (s *BookingService) GetBooking(ctx context.Context, userID string, isAdmin bool, id string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !bk.IsOwnedBy(userID) {
		return nil, domain.NewForbiddenError("you do not have access to this booking")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// UserBookings returns every booking of a user in stored order.
func (s *BookingService) UserBookings(ctx context.Context, userID string) ([]BookingDTO, error) {
	bookings, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user bookings: %w", err)
	}
	return toBookingDTOs(bookings), nil
}

// ActiveBookings returns the bookings that are running or upcoming. An empty
// userID returns them for every user. Statuses are read as stored; run
// ReconcileBookings first for corrected results.
func (s *BookingService) ActiveBookings(ctx context.Context, userID string) ([]BookingDTO, error) {
	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	return toBookingDTOs(bookingDomain.FilterActive(bookings, userID, s.clock.Now())), nil
}

// ArchivedBookings returns completed, cancelled and overdue bookings. An
// empty userID returns them for every user.
func (s *BookingService) ArchivedBookings(ctx context.Context, userID string) ([]BookingDTO, error) {
	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	return toBookingDTOs(bookingDomain.FilterArchived(bookings, userID, s.clock.Now())), nil
}

// ReconcileBookings re-derives every booking status from its dates and
// persists the collection only when something changed.
func (s *BookingService) ReconcileBookings(ctx context.Context) (int, error) {
	now := s.clock.Now()
	var changes []events.BookingStatusChangedEvent

	err := s.repo.UpdateAll(ctx, func(bookings []*bookingDomain.Booking) (bool, error) {
		changes = changes[:0]
		for _, bk := range bookings {
			from := bk.Status()
			if bk.Reconcile(now) {
				changes = append(changes, statusChanged(bk, from, "reconciled", now))
			}
		}
		return len(changes) > 0, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile bookings: %w", err)
	}

	if len(changes) > 0 {
		s.logger.Info("bookings reconciled", zap.Int("changed", len(changes)))
	}
	for _, evt := range changes {
		eventType := events.BookingRestored
		if evt.To == string(bookingDomain.StatusCompleted) {
			eventType = events.BookingCompleted
		}
		s.events.emit(ctx, events.TopicBookingEvents, eventType, evt)
	}
	return len(changes), nil
}

// ArchiveBooking marks an active booking completed. It returns false when the
// booking does not exist. Bookings that are already completed or cancelled
// are left as they are and nothing is written.
func (s *BookingService) ArchiveBooking(ctx context.Context, userID string, isAdmin bool, id string) (bool, error) {
	m, err := s.mutateOne(ctx, userID, isAdmin, id, "archived", func(bk *bookingDomain.Booking, _ []*bookingDomain.Booking, _ time.Time) (bool, error) {
		return bk.Archive(), nil
	})
	if err != nil || !m.found {
		return false, err
	}
	if m.written {
		s.events.emit(ctx, events.TopicBookingEvents, events.BookingArchived, m.event)
	}
	return true, nil
}

// RestoreBooking makes a completed booking active again. It returns false
// when the booking does not exist, was cancelled or its end date has passed,
// and a ConflictError when another booking holds the car for its dates.
func (s *BookingService) RestoreBooking(ctx context.Context, userID string, isAdmin bool, id string) (bool, error) {
	restored := false
	m, err := s.mutateOne(ctx, userID, isAdmin, id, "restored", func(bk *bookingDomain.Booking, all []*bookingDomain.Booking, now time.Time) (bool, error) {
		if bk.Status() == bookingDomain.StatusActive {
			restored = !bk.EndDate().Before(now)
			return false, nil
		}
		if bk.Status() == bookingDomain.StatusCancelled || bk.EndDate().Before(now) {
			return false, nil
		}
		if err := checkCarFree(all, bk); err != nil {
			return false, err
		}
		restored = bk.Restore(now)
		return restored, nil
	})
	if err != nil || !restored {
		return false, err
	}
	if m.written {
		s.events.emit(ctx, events.TopicBookingEvents, events.BookingRestored, m.event)
	}
	return true, nil
}

// CancelBooking cancels an active booking on behalf of its owner or an admin.
func (s *BookingService) CancelBooking(ctx context.Context, userID string, isAdmin bool, id string) (*BookingDTO, error) {
	var cancelled *bookingDomain.Booking
	m, err := s.mutateOne(ctx, userID, isAdmin, id, "cancelled by user", func(bk *bookingDomain.Booking, _ []*bookingDomain.Booking, _ time.Time) (bool, error) {
		if err := bk.Cancel(); err != nil {
			return false, err
		}
		cancelled = bk
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if !m.found {
		return nil, domain.NewNotFoundError("Booking", id)
	}

	s.logger.Info("booking cancelled", zap.String("booking_id", id), zap.String("user_id", userID))
	s.events.emit(ctx, events.TopicBookingEvents, events.BookingCancelled, m.event)

	result := toBookingDTO(cancelled)
	return &result, nil
}

// HandlePaymentFailed cancels the booking a failed payment belongs to.
// Unknown or no longer cancellable bookings are logged and ignored.
func (s *BookingService) HandlePaymentFailed(ctx context.Context, evt events.PaymentFailedEvent) error {
	reason := "payment failed"
	if evt.Reason != "" {
		reason = "payment failed: " + evt.Reason
	}

	m, err := s.mutateOne(ctx, "", true, evt.BookingID, reason, func(bk *bookingDomain.Booking, _ []*bookingDomain.Booking, _ time.Time) (bool, error) {
		if !bk.Status().CanBeCancelled() {
			return false, nil
		}
		return true, bk.Cancel()
	})
	if err != nil {
		return fmt.Errorf("failed to cancel booking %s: %w", evt.BookingID, err)
	}

	switch {
	case !m.found:
		s.logger.Warn("payment failed for unknown booking",
			zap.String("booking_id", evt.BookingID),
			zap.String("payment_id", evt.PaymentID),
		)
	case !m.written:
		s.logger.Info("payment failed for booking that is no longer active",
			zap.String("booking_id", evt.BookingID),
			zap.String("status", m.event.From),
		)
	default:
		s.logger.Info("booking cancelled after failed payment",
			zap.String("booking_id", evt.BookingID),
			zap.String("payment_id", evt.PaymentID),
		)
		s.events.emit(ctx, events.TopicBookingEvents, events.BookingCancelled, m.event)
	}
	return nil
}

// ExpiringBookings returns the user's active bookings ending within window.
// With includeExpired, active bookings already past their end are returned too.
func (s *BookingService) ExpiringBookings(ctx context.Context, userID string, window time.Duration, includeExpired bool) ([]ExpiringBooking, error) {
	bookings, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user bookings: %w", err)
	}

	now := s.clock.Now()
	matches := bookingDomain.FilterExpiring(bookings, userID, now, window, includeExpired)
	out := make([]ExpiringBooking, len(matches))
	for i, bk := range matches {
		out[i] = ExpiringBooking{
			Booking:   toBookingDTO(bk),
			EndDate:   bk.EndDate(),
			Remaining: bk.Remaining(now),
		}
	}
	return out, nil
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(domain.Paginate(bookings, page, limit)), int64(len(bookings)), nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	counts := map[string]int64{
		string(bookingDomain.StatusActive):    0,
		string(bookingDomain.StatusCompleted): 0,
		string(bookingDomain.StatusCancelled): 0,
	}
	var revenue float64
	for _, bk := range bookings {
		counts[string(bk.Status())]++
		if bk.Status() != bookingDomain.StatusCancelled {
			revenue += bk.TotalPrice()
		}
	}

	return &BookingStatsDTO{
		TotalBookings: int64(len(bookings)),
		ByStatus:      counts,
		TotalRevenue:  revenue,
		Currency:      domain.CurrencyUSD,
	}, nil
}

// mutation is the outcome of mutateOne.
type mutation struct {
	event   events.BookingStatusChangedEvent
	found   bool
	written bool
}

// mutateOne applies fn to a single booking inside an atomic collection update.
// fn reports whether the booking changed and must be written back.
func (s *BookingService) mutateOne(
	ctx context.Context,
	userID string,
	isAdmin bool,
	id string,
	reason string,
	fn func(bk *bookingDomain.Booking, all []*bookingDomain.Booking, now time.Time) (bool, error),
) (mutation, error) {
	now := s.clock.Now()
	var m mutation

	err := s.repo.UpdateAll(ctx, func(bookings []*bookingDomain.Booking) (bool, error) {
		for _, bk := range bookings {
			if bk.ID() != id {
				continue
			}
			m.found = true
			if !isAdmin && !bk.IsOwnedBy(userID) {
				return false, domain.NewForbiddenError("you do not have access to this booking")
			}
			from := bk.Status()
			write, err := fn(bk, bookings, now)
			if err != nil {
				return false, err
			}
			m.event = statusChanged(bk, from, reason, now)
			m.written = write
			return write, nil
		}
		return false, nil
	})
	if err != nil {
		var forbidden *domain.ForbiddenError
		if errors.As(err, &forbidden) {
			return m, forbidden
		}
		var invalid *domain.InvalidStateError
		if errors.As(err, &invalid) {
			return m, invalid
		}
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			return m, conflict
		}
		return m, fmt.Errorf("failed to update booking: %w", err)
	}
	return m, nil
}

// --- Helpers ---

// checkCarFree fails when any other booking of bk's car still holds it
// during bk's dates.
func checkCarFree(bookings []*bookingDomain.Booking, bk *bookingDomain.Booking) error {
	for _, other := range bookings {
		if other.ID() == bk.ID() || other.CarID() != bk.CarID() {
			continue
		}
		if other.Overlaps(bk.StartDate(), bk.EndDate()) {
			return domain.NewConflictError("car is already booked for these dates")
		}
	}
	return nil
}

func statusChanged(bk *bookingDomain.Booking, from bookingDomain.BookingStatus, reason string, now time.Time) events.BookingStatusChangedEvent {
	return events.BookingStatusChangedEvent{
		BookingID:  bk.ID(),
		UserID:     bk.UserID(),
		CarID:      bk.CarID(),
		From:       string(from),
		To:         string(bk.Status()),
		Reason:     reason,
		OccurredAt: now.UTC(),
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:         bk.ID(),
		CarID:      bk.CarID(),
		UserID:     bk.UserID(),
		StartDate:  bookingDomain.FormatDate(bk.StartDate()),
		EndDate:    bookingDomain.FormatDate(bk.EndDate()),
		TotalPrice: bk.TotalPrice(),
		Currency:   domain.CurrencyUSD,
		Status:     string(bk.Status()),
		RentalDays: bk.RentalDays(),
		CreatedAt:  bookingDomain.FormatDate(bk.CreatedAt()),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}
