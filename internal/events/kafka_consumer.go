// Package events consumes the Kafka topics this service reacts to.
package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/carhub/service-rental/pkg/events"
	"github.com/carhub/service-rental/pkg/kafka"
)

type paymentFailureHandler interface {
	HandlePaymentFailed(ctx context.Context, evt events.PaymentFailedEvent) error
}

// PaymentEventConsumer listens to payment events and cancels bookings whose
// payment failed.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  paymentFailureHandler
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service paymentFailureHandler,
	logger *zap.Logger,
) *PaymentEventConsumer {
	return &PaymentEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, events.TopicPaymentEvents, logger),
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // malformed messages are not retried
	}

	switch cloudEvent.Type {
	case events.PaymentFailed:
		return c.handlePaymentFailed(ctx, cloudEvent)
	case events.PaymentSucceeded:
		c.logger.Debug("payment succeeded", zap.String("event_id", cloudEvent.ID))
		return nil
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentFailed(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.PaymentFailedEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.BookingID == "" {
		c.logger.Error("failed to parse PaymentFailedEvent data",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil
	}

	c.logger.Info("processing payment failed event",
		zap.String("booking_id", evt.BookingID),
		zap.String("payment_id", evt.PaymentID),
	)

	if err := c.service.HandlePaymentFailed(ctx, evt); err != nil {
		c.logger.Error("failed to cancel booking after payment failure",
			zap.String("booking_id", evt.BookingID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
