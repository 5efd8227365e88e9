// Package events holds the topics, event types and payloads exchanged over Kafka.
package events

import "time"

// Topics.
const (
	TopicBookingEvents      = "rental.booking.events"
	TopicPaymentEvents      = "rental.payment.events"
	TopicNotificationEvents = "rental.notification.events"
)

// Booking event types.
const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
	BookingArchived  = "booking.archived"
	BookingRestored  = "booking.restored"
	BookingCompleted = "booking.completed"
	BookingExpiring  = "booking.expiring"
)

// Payment event types.
const (
	PaymentSucceeded = "payment.succeeded"
	PaymentFailed    = "payment.failed"
)

// Notification event types.
const (
	InvoiceEmailRequested = "notification.invoice_email_requested"
)

// BookingCreatedEvent is published when a customer books a car.
type BookingCreatedEvent struct {
	BookingID  string    `json:"booking_id"`
	UserID     string    `json:"user_id"`
	CarID      int       `json:"car_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	TotalPrice float64   `json:"total_price"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published for cancel, archive, restore and
// the automatic transitions applied by reconciliation.
type BookingStatusChangedEvent struct {
	BookingID  string    `json:"booking_id"`
	UserID     string    `json:"user_id"`
	CarID      int       `json:"car_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingExpiringEvent is published when a booking enters the expiration window.
type BookingExpiringEvent struct {
	BookingID        string    `json:"booking_id"`
	UserID           string    `json:"user_id"`
	CarID            int       `json:"car_id"`
	EndDate          time.Time `json:"end_date"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// PaymentFailedEvent is consumed from the payment service.
type PaymentFailedEvent struct {
	PaymentID  string    `json:"payment_id"`
	BookingID  string    `json:"booking_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// InvoiceEmailRequestedEvent asks the mail service to send an invoice.
type InvoiceEmailRequestedEvent struct {
	BookingID     string    `json:"booking_id"`
	UserID        string    `json:"user_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Filename      string    `json:"filename"`
	PDF           []byte    `json:"pdf"`
	OccurredAt    time.Time `json:"occurred_at"`
}
