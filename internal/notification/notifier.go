// Package notification delivers booking expiration reminders.
package notification

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/carhub/service-rental/internal/application"
	"github.com/carhub/service-rental/internal/realtime"
	"github.com/carhub/service-rental/pkg/events"
	"github.com/carhub/service-rental/pkg/kafka"
)

// Pusher delivers a message to the open connections of a user.
type Pusher interface {
	SendToUser(userID string, msg realtime.Message) int
}

// ExpiringPayload is the realtime body of an expiration reminder.
type ExpiringPayload struct {
	BookingID        string `json:"booking_id"`
	CarID            int    `json:"car_id"`
	EndDate          string `json:"end_date"`
	RemainingSeconds int64  `json:"remaining_seconds"`
	Expired          bool   `json:"expired"`
	Message          string `json:"message"`
}

// ExpirationNotifier pushes reminders to the user's dashboard and publishes
// them for other channels. Delivery is best effort and never retried.
type ExpirationNotifier struct {
	pusher    Pusher
	publisher application.EventPublisher
	clock     clock.Clock
	logger    *zap.Logger
}

// NewExpirationNotifier creates an ExpirationNotifier. publisher may be nil.
func NewExpirationNotifier(
	pusher Pusher,
	publisher application.EventPublisher,
	clk clock.Clock,
	logger *zap.Logger,
) *ExpirationNotifier {
	return &ExpirationNotifier{pusher: pusher, publisher: publisher, clock: clk, logger: logger}
}

// Notify reports whether the reminder reached at least one channel.
func (n *ExpirationNotifier) Notify(ctx context.Context, userID string, b application.ExpiringBooking) bool {
	payload := ExpiringPayload{
		BookingID:        b.Booking.ID,
		CarID:            b.Booking.CarID,
		EndDate:          b.Booking.EndDate,
		RemainingSeconds: int64(b.Remaining / time.Second),
		Expired:          b.Remaining <= 0,
		Message:          reminderText(b.Remaining),
	}

	pushed := 0
	if n.pusher != nil {
		pushed = n.pusher.SendToUser(userID, realtime.Message{
			Type: events.BookingExpiring,
			Data: payload,
		})
	}
	published := n.publish(ctx, userID, b)

	n.logger.Info("expiration reminder sent",
		zap.String("user_id", userID),
		zap.String("booking_id", b.Booking.ID),
		zap.Duration("remaining", b.Remaining),
		zap.Int("connections", pushed),
		zap.Bool("published", published),
	)
	return pushed > 0 || published
}

func (n *ExpirationNotifier) publish(ctx context.Context, userID string, b application.ExpiringBooking) bool {
	if n.publisher == nil {
		return false
	}

	evt, err := kafka.NewCloudEvent(application.EventSource, events.BookingExpiring, events.BookingExpiringEvent{
		BookingID:        b.Booking.ID,
		UserID:           userID,
		CarID:            b.Booking.CarID,
		EndDate:          b.EndDate,
		RemainingSeconds: int64(b.Remaining / time.Second),
		OccurredAt:       n.clock.Now().UTC(),
	})
	if err != nil {
		n.logger.Error("failed to create cloud event", zap.Error(err))
		return false
	}
	if err := n.publisher.PublishEvent(ctx, events.TopicBookingEvents, evt); err != nil {
		n.logger.Warn("failed to publish expiration reminder",
			zap.String("booking_id", b.Booking.ID),
			zap.Error(err),
		)
		return false
	}
	return true
}

func reminderText(remaining time.Duration) string {
	if remaining <= 0 {
		return "Your rental period has ended. Please return the car."
	}
	hours := int(math.Ceil(remaining.Hours()))
	if hours <= 1 {
		return "Your rental ends in less than an hour."
	}
	return fmt.Sprintf("Your rental ends in %d hours.", hours)
}
