package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carhub/service-rental/internal/application"
	"github.com/carhub/service-rental/internal/realtime"
	"github.com/carhub/service-rental/pkg/events"
	"github.com/carhub/service-rental/pkg/kafka"
)

type mockPusher struct{ mock.Mock }

func (m *mockPusher) SendToUser(userID string, msg realtime.Message) int {
	return m.Called(userID, msg).Int(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error {
	return m.Called(ctx, topic, event).Error(0)
}

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func expiring(remaining time.Duration) application.ExpiringBooking {
	end := time.Date(2026, 10, 18, 22, 0, 0, 0, time.UTC)
	return application.ExpiringBooking{
		Booking:   application.BookingDTO{ID: "b1", CarID: 5, UserID: "u1", EndDate: end.Format(time.RFC3339)},
		EndDate:   end,
		Remaining: remaining,
	}
}

func TestNotify_PushesAndPublishes(t *testing.T) {
	pusher := &mockPusher{}
	publisher := &mockPublisher{}

	pusher.On("SendToUser", "u1", mock.MatchedBy(func(msg realtime.Message) bool {
		p, ok := msg.Data.(ExpiringPayload)
		return ok && msg.Type == events.BookingExpiring && p.RemainingSeconds == 36000 && !p.Expired
	})).Return(1)
	publisher.On("PublishEvent", mock.Anything, events.TopicBookingEvents, mock.MatchedBy(func(e kafka.CloudEvent) bool {
		var evt events.BookingExpiringEvent
		return e.Type == events.BookingExpiring && e.ParseData(&evt) == nil &&
			evt.BookingID == "b1" && evt.OccurredAt.Equal(now)
	})).Return(nil)

	n := NewExpirationNotifier(pusher, publisher, testclock.NewClock(now), zap.NewNop())
	assert.True(t, n.Notify(context.Background(), "u1", expiring(10*time.Hour)))

	pusher.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestNotify_ReportsFailureWhenNothingDelivered(t *testing.T) {
	pusher := &mockPusher{}
	publisher := &mockPublisher{}
	pusher.On("SendToUser", "u1", mock.Anything).Return(0)
	publisher.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	n := NewExpirationNotifier(pusher, publisher, testclock.NewClock(now), zap.NewNop())
	assert.False(t, n.Notify(context.Background(), "u1", expiring(-time.Hour)))
}

func TestNotify_WithoutPublisher(t *testing.T) {
	pusher := &mockPusher{}
	pusher.On("SendToUser", "u1", mock.Anything).Return(2)

	n := NewExpirationNotifier(pusher, nil, testclock.NewClock(now), zap.NewNop())
	require.True(t, n.Notify(context.Background(), "u1", expiring(30*time.Minute)))
}

func TestReminderText(t *testing.T) {
	assert.Equal(t, "Your rental ends in 10 hours.", reminderText(10*time.Hour))
	assert.Equal(t, "Your rental ends in 3 hours.", reminderText(2*time.Hour+time.Minute))
	assert.Equal(t, "Your rental ends in less than an hour.", reminderText(20*time.Minute))
	assert.Contains(t, reminderText(0), "has ended")
}
