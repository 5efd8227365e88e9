package application

import (
	"context"
	"fmt"
	"strconv"

	"github.com/juju/clock"
	"go.uber.org/zap"

	bookingDomain "github.com/carhub/service-rental/internal/domain/booking"
	carDomain "github.com/carhub/service-rental/internal/domain/car"
	"github.com/carhub/service-rental/internal/invoice"
	"github.com/carhub/service-rental/pkg/domain"
	"github.com/carhub/service-rental/pkg/events"
)

// InvoiceRenderer turns invoice data into a document.
type InvoiceRenderer interface {
	Render(d invoice.Data) ([]byte, error)
}

// InvoiceDTO is a rendered invoice.
type InvoiceDTO struct {
	Number   string
	Filename string
	PDF      []byte
}

// InvoiceService renders booking invoices and requests their delivery by email.
type InvoiceService struct {
	bookings bookingDomain.BookingRepository
	cars     carDomain.CarRepository
	renderer InvoiceRenderer
	events   emitter
	clock    clock.Clock
	logger   *zap.Logger
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(
	bookings bookingDomain.BookingRepository,
	cars carDomain.CarRepository,
	renderer InvoiceRenderer,
	publisher EventPublisher,
	clk clock.Clock,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		bookings: bookings,
		cars:     cars,
		renderer: renderer,
		events:   emitter{publisher: publisher, logger: logger},
		clock:    clk,
		logger:   logger,
	}
}

// Generate renders the invoice of a booking visible to the caller.
func (s *InvoiceService) Generate(ctx context.Context, userID string, isAdmin bool, bookingID string) (*InvoiceDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !bk.IsOwnedBy(userID) {
		return nil, domain.NewForbiddenError("you do not have access to this booking")
	}

	description := "Car #" + strconv.Itoa(bk.CarID())
	if c, err := s.cars.FindByID(ctx, bk.CarID()); err == nil {
		description = c.DisplayName()
	} else if !domain.IsNotFound(err) {
		return nil, err
	}

	days := bk.RentalDays()
	number := invoice.Number(bk.ID(), bk.CreatedAt())
	pdf, err := s.renderer.Render(invoice.Data{
		Number:    number,
		IssuedAt:  s.clock.Now(),
		Customer:  bk.UserID(),
		BookingID: bk.ID(),
		Status:    string(bk.Status()),
		StartDate: bk.StartDate(),
		EndDate:   bk.EndDate(),
		Lines: []invoice.Line{{
			Description: description,
			Quantity:    days,
			UnitPrice:   bk.TotalPrice() / float64(days),
			Amount:      bk.TotalPrice(),
		}},
		Total:    bk.TotalPrice(),
		Currency: domain.CurrencyUSD,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}

	return &InvoiceDTO{
		Number:   number,
		Filename: number + ".pdf",
		PDF:      pdf,
	}, nil
}

// EmailInvoice asks the mail service to send the invoice to the booking's
// owner. The returned flag reports whether the request was handed off; it is
// never retried.
func (s *InvoiceService) EmailInvoice(ctx context.Context, userID string, isAdmin bool, bookingID string) (bool, error) {
	inv, err := s.Generate(ctx, userID, isAdmin, bookingID)
	if err != nil {
		return false, err
	}
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return false, err
	}

	sent := s.events.emit(ctx, events.TopicNotificationEvents, events.InvoiceEmailRequested, events.InvoiceEmailRequestedEvent{
		BookingID:     bk.ID(),
		UserID:        bk.UserID(),
		InvoiceNumber: inv.Number,
		Filename:      inv.Filename,
		PDF:           inv.PDF,
		OccurredAt:    s.clock.Now().UTC(),
	})
	if !sent {
		s.logger.Warn("invoice email not requested", zap.String("booking_id", bookingID))
	}
	return sent, nil
}
