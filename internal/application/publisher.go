package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/carhub/service-rental/pkg/kafka"
)

// EventSource is the CloudEvents source of everything this service emits.
const EventSource = "service-rental"

// EventPublisher sends CloudEvents to a topic. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// emitter publishes events without failing the calling use case.
type emitter struct {
	publisher EventPublisher
	logger    *zap.Logger
}

// emit reports whether the event was handed to the broker.
func (e emitter) emit(ctx context.Context, topic, eventType string, data interface{}) bool {
	if e.publisher == nil {
		return false
	}

	cloudEvent, err := kafka.NewCloudEvent(EventSource, eventType, data)
	if err != nil {
		e.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return false
	}

	if err := e.publisher.PublishEvent(ctx, topic, cloudEvent); err != nil {
		e.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return false
	}
	return true
}
