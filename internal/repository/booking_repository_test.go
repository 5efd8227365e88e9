package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	bookingDomain "github.com/carhub/service-rental/internal/domain/booking"
	"github.com/carhub/service-rental/internal/storage"
	"github.com/carhub/service-rental/pkg/domain"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newBookingRepo(t *testing.T) (*BlobBookingRepository, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewBlobBookingRepository(store, zap.NewNop()), store
}

func TestBookingRepository_EmptyWhenMissing(t *testing.T) {
	repo, _ := newBookingRepo(t)

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = repo.FindByID(context.Background(), "nope")
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo, store := newBookingRepo(t)

	b1, err := bookingDomain.NewBooking("u1", 5, now, now.Add(48*time.Hour), 130, now)
	require.NoError(t, err)
	b2, err := bookingDomain.NewBooking("u2", 3, now, now.Add(24*time.Hour), 38, now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, b1))
	require.NoError(t, repo.Save(ctx, b2))

	err = repo.Save(ctx, b1)
	assert.True(t, domain.IsConflict(err))

	got, err := repo.FindByID(ctx, b1.ID())
	require.NoError(t, err)
	assert.Equal(t, 5, got.CarID())
	assert.True(t, got.EndDate().Equal(b1.EndDate()))
	assert.Equal(t, bookingDomain.StatusActive, got.Status())

	byUser, err := repo.FindByUserID(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, b2.ID(), byUser[0].ID())

	byCar, err := repo.FindByCarID(ctx, 5)
	require.NoError(t, err)
	require.Len(t, byCar, 1)

	raw, err := store.Get(ctx, KeyBookings)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"carId":5`)
	assert.Contains(t, string(raw), `"startDate":"2026-10-18T12:00:00Z"`)
}

func TestBookingRepository_SaveIfRejects(t *testing.T) {
	ctx := context.Background()
	repo, _ := newBookingRepo(t)

	b, err := bookingDomain.NewBooking("u1", 5, now, now.Add(time.Hour), 10, now)
	require.NoError(t, err)

	refused := errors.New("refused")
	err = repo.SaveIf(ctx, b, func(existing []*bookingDomain.Booking) error {
		assert.Empty(t, existing)
		return refused
	})
	assert.ErrorIs(t, err, refused)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBookingRepository_UpdateAllWritesOnlyWhenAsked(t *testing.T) {
	ctx := context.Background()
	repo, store := newBookingRepo(t)

	require.NoError(t, store.Set(ctx, KeyBookings, []byte(`[
		{"id":"b1","carId":5,"userId":"u1","startDate":"2026-10-10","endDate":"2026-10-12","totalPrice":10,"status":"active","createdAt":"2026-10-01T00:00:00Z"}
	]`)))

	err := repo.UpdateAll(ctx, func(bookings []*bookingDomain.Booking) (bool, error) {
		return bookingDomain.Reconcile(bookings, now) > 0, nil
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusCompleted, got.Status())

	before, err := store.Get(ctx, KeyBookings)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateAll(ctx, func([]*bookingDomain.Booking) (bool, error) { return false, nil }))
	after, err := store.Get(ctx, KeyBookings)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestBookingRepository_MalformedDateIsParseError(t *testing.T) {
	ctx := context.Background()
	repo, store := newBookingRepo(t)

	require.NoError(t, store.Set(ctx, KeyBookings, []byte(`[
		{"id":"bad","carId":5,"userId":"u1","startDate":"yesterday","endDate":"2026-10-12","totalPrice":10,"status":"active","createdAt":"2026-10-01T00:00:00Z"}
	]`)))

	_, err := repo.FindAll(ctx)
	var perr *bookingDomain.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bad", perr.BookingID)
	assert.Equal(t, "startDate", perr.Field)

	err = repo.UpdateAll(ctx, func([]*bookingDomain.Booking) (bool, error) { return true, nil })
	require.ErrorAs(t, err, &perr)
}

func TestBookingRepository_UnreadableBlobIsEmpty(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	store := storage.NewMemoryStore()
	repo := NewBlobBookingRepository(store, zap.New(core))

	require.NoError(t, store.Set(ctx, KeyBookings, []byte(`{not json`)))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, KeyBookings, logs.All()[0].ContextMap()["key"])
}
