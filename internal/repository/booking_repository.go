package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/carhub/service-rental/internal/domain/booking"
	"github.com/carhub/service-rental/internal/storage"
	"github.com/carhub/service-rental/pkg/domain"
)

// BookingRecord is the stored JSON form of a booking.
type BookingRecord struct {
	ID         string  `json:"id"`
	CarID      int     `json:"carId"`
	UserID     string  `json:"userId"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	TotalPrice float64 `json:"totalPrice"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"createdAt"`
}

// BlobBookingRepository keeps every booking in the "bookings" blob.
type BlobBookingRepository struct {
	bookings collection[[]BookingRecord]
}

// NewBlobBookingRepository creates a new BlobBookingRepository.
func NewBlobBookingRepository(store storage.Store, logger *zap.Logger) *BlobBookingRepository {
	return &BlobBookingRepository{
		bookings: newCollection(store, KeyBookings, emptySlice[BookingRecord](), logger),
	}
}

// FindAll returns every booking in stored order.
func (r *BlobBookingRepository) FindAll(ctx context.Context) ([]*bookingDomain.Booking, error) {
	records, err := r.bookings.load(ctx)
	if err != nil {
		return nil, err
	}
	return toDomainBookings(records)
}

// FindByID retrieves a booking by its unique identifier.
func (r *BlobBookingRepository) FindByID(ctx context.Context, id string) (*bookingDomain.Booking, error) {
	records, err := r.bookings.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return toDomainBooking(&records[i])
		}
	}
	return nil, domain.NewNotFoundError("Booking", id)
}

// FindByUserID returns the bookings of one user in stored order.
func (r *BlobBookingRepository) FindByUserID(ctx context.Context, userID string) ([]*bookingDomain.Booking, error) {
	return r.findWhere(ctx, func(rec *BookingRecord) bool { return rec.UserID == userID })
}

// FindByCarID returns the bookings of one car in stored order.
func (r *BlobBookingRepository) FindByCarID(ctx context.Context, carID int) ([]*bookingDomain.Booking, error) {
	return r.findWhere(ctx, func(rec *BookingRecord) bool { return rec.CarID == carID })
}

// Save appends a new booking.
func (r *BlobBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	return r.SaveIf(ctx, bk, nil)
}

// SaveIf appends a new booking after check accepts the stored collection.
func (r *BlobBookingRepository) SaveIf(ctx context.Context, bk *bookingDomain.Booking, check func([]*bookingDomain.Booking) error) error {
	return r.bookings.update(ctx, func(records *[]BookingRecord) (bool, error) {
		for _, rec := range *records {
			if rec.ID == bk.ID() {
				return false, domain.NewConflictError(fmt.Sprintf("booking %s already exists", bk.ID()))
			}
		}
		if check != nil {
			existing, err := toDomainBookings(*records)
			if err != nil {
				return false, err
			}
			if err := check(existing); err != nil {
				return false, err
			}
		}
		*records = append(*records, toBookingRecord(bk))
		return true, nil
	})
}

// UpdateAll runs fn over the whole collection as one atomic read-modify-write.
func (r *BlobBookingRepository) UpdateAll(ctx context.Context, fn bookingDomain.MutateFunc) error {
	return r.bookings.update(ctx, func(records *[]BookingRecord) (bool, error) {
		bookings, err := toDomainBookings(*records)
		if err != nil {
			return false, err
		}

		write, err := fn(bookings)
		if err != nil || !write {
			return false, err
		}

		next := make([]BookingRecord, len(bookings))
		for i, bk := range bookings {
			next[i] = toBookingRecord(bk)
		}
		*records = next
		return true, nil
	})
}

func (r *BlobBookingRepository) findWhere(ctx context.Context, keep func(*BookingRecord) bool) ([]*bookingDomain.Booking, error) {
	records, err := r.bookings.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*bookingDomain.Booking, 0)
	for i := range records {
		if !keep(&records[i]) {
			continue
		}
		bk, err := toDomainBooking(&records[i])
		if err != nil {
			return nil, err
		}
		out = append(out, bk)
	}
	return out, nil
}

// --- Conversion Helpers ---

func toBookingRecord(bk *bookingDomain.Booking) BookingRecord {
	return BookingRecord{
		ID:         bk.ID(),
		CarID:      bk.CarID(),
		UserID:     bk.UserID(),
		StartDate:  bookingDomain.FormatDate(bk.StartDate()),
		EndDate:    bookingDomain.FormatDate(bk.EndDate()),
		TotalPrice: bk.TotalPrice(),
		Status:     string(bk.Status()),
		CreatedAt:  bookingDomain.FormatDate(bk.CreatedAt()),
	}
}

func toDomainBookings(records []BookingRecord) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(records))
	for i := range records {
		bk, err := toDomainBooking(&records[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

func toDomainBooking(rec *BookingRecord) (*bookingDomain.Booking, error) {
	start, err := parseRecordDate(rec.ID, "startDate", rec.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseRecordDate(rec.ID, "endDate", rec.EndDate)
	if err != nil {
		return nil, err
	}
	createdAt, err := parseRecordDate(rec.ID, "createdAt", rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	status, err := bookingDomain.ParseBookingStatus(rec.Status)
	if err != nil {
		return nil, &bookingDomain.ParseError{BookingID: rec.ID, Field: "status", Value: rec.Status}
	}

	return bookingDomain.ReconstructBooking(
		rec.ID,
		rec.CarID,
		rec.UserID,
		start,
		end,
		rec.TotalPrice,
		status,
		createdAt,
	), nil
}

func parseRecordDate(bookingID, field, value string) (t time.Time, err error) {
	t, err = bookingDomain.ParseDate(field, value)
	var perr *bookingDomain.ParseError
	if errors.As(err, &perr) {
		perr.BookingID = bookingID
		return t, perr
	}
	return t, err
}
