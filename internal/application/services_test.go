package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/carhub/service-rental/internal/domain/booking"
	carDomain "github.com/carhub/service-rental/internal/domain/car"
	"github.com/carhub/service-rental/internal/invoice"
	"github.com/carhub/service-rental/internal/repository"
	"github.com/carhub/service-rental/internal/storage"
	"github.com/carhub/service-rental/pkg/domain"
	"github.com/carhub/service-rental/pkg/events"
	"github.com/carhub/service-rental/pkg/kafka"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []kafka.CloudEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	store     *storage.MemoryStore
	clock     *testclock.Clock
	publisher *recordingPublisher
	bookings  *BookingService
	cars      *CarService
	favorites *FavoriteService
	ratings   *RatingService
	compare   *CompareService
	prefs     *PreferenceService
	dashboard *DashboardService
	invoices  *InvoiceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zap.NewNop()
	store := storage.NewMemoryStore()
	clk := testclock.NewClock(now)
	pub := &recordingPublisher{}

	bookingRepo := repository.NewBlobBookingRepository(store, log)
	carRepo := repository.NewBlobCarRepository(store, log)

	f := &fixture{store: store, clock: clk, publisher: pub}
	f.bookings = NewBookingService(bookingRepo, carRepo, bookingDomain.NewDailyPricingStrategy(), pub, clk, log)
	f.cars = NewCarService(carRepo, bookingRepo, clk, log)
	f.favorites = NewFavoriteService(repository.NewBlobFavoriteRepository(store, log), f.cars, log)
	f.ratings = NewRatingService(repository.NewBlobRatingRepository(store, log), bookingRepo, clk, log)
	f.compare = NewCompareService(repository.NewBlobCompareRepository(store, log), f.cars, log)
	f.prefs = NewPreferenceService(repository.NewBlobPreferenceRepository(store, log), log)
	f.dashboard = NewDashboardService(f.bookings, f.favorites, f.ratings)
	f.invoices = NewInvoiceService(bookingRepo, carRepo, invoice.NewRenderer("CarHub"), pub, clk, log)
	return f
}

func (f *fixture) book(t *testing.T, userID string, carID int, start, end time.Time) *BookingDTO {
	t.Helper()
	bk, err := f.bookings.CreateBooking(context.Background(), userID, CreateBookingRequest{
		CarID:     carID,
		StartDate: bookingDomain.FormatDate(start),
		EndDate:   bookingDomain.FormatDate(end),
	})
	require.NoError(t, err)
	return bk
}

func TestCreateBooking_PricesByDay(t *testing.T) {
	f := newFixture(t)

	bk := f.book(t, "u1", 5, now.Add(24*time.Hour), now.Add(72*time.Hour))

	assert.Equal(t, "active", bk.Status)
	assert.Equal(t, 2, bk.RentalDays)
	assert.InDelta(t, 130.0, bk.TotalPrice, 1e-9)
	assert.Equal(t, []string{events.BookingCreated}, f.publisher.types())
	assert.Equal(t, []string{events.TopicBookingEvents}, f.publisher.topics)
}

func TestCreateBooking_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.book(t, "u1", 5, now, now.Add(48*time.Hour))

	tests := []struct {
		name  string
		req   CreateBookingRequest
		check func(error) bool
	}{
		{
			name:  "overlapping dates",
			req:   CreateBookingRequest{CarID: 5, StartDate: "2026-10-19", EndDate: "2026-10-22"},
			check: domain.IsConflict,
		},
		{
			name:  "start in the past",
			req:   CreateBookingRequest{CarID: 4, StartDate: "2026-10-17", EndDate: "2026-10-22"},
			check: domain.IsValidation,
		},
		{
			name:  "end before start",
			req:   CreateBookingRequest{CarID: 4, StartDate: "2026-10-22", EndDate: "2026-10-20"},
			check: domain.IsValidation,
		},
		{
			name:  "malformed date",
			req:   CreateBookingRequest{CarID: 4, StartDate: "next week", EndDate: "2026-10-20"},
			check: domain.IsValidation,
		},
		{
			name:  "unknown car",
			req:   CreateBookingRequest{CarID: 999, StartDate: "2026-10-19", EndDate: "2026-10-20"},
			check: domain.IsNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.bookings.CreateBooking(ctx, "u2", tt.req)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}

	_, err := f.cars.SetAvailability(ctx, 4, false)
	require.NoError(t, err)
	_, err = f.bookings.CreateBooking(ctx, "u2", CreateBookingRequest{CarID: 4, StartDate: "2026-10-19", EndDate: "2026-10-20"})
	assert.True(t, domain.IsConflict(err))
}

func TestCreateBooking_SameDayStartAllowed(t *testing.T) {
	f := newFixture(t)
	_, err := f.bookings.CreateBooking(context.Background(), "u1", CreateBookingRequest{
		CarID: 3, StartDate: "2026-10-18", EndDate: "2026-10-19",
	})
	require.NoError(t, err)
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bk := f.book(t, "u1", 5, now, now.Add(24*time.Hour))

	_, err := f.bookings.CancelBooking(ctx, "u2", false, bk.ID)
	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	cancelled, err := f.bookings.CancelBooking(ctx, "u1", false, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	_, err = f.bookings.CancelBooking(ctx, "u1", false, bk.ID)
	var invalid *domain.InvalidStateError
	require.ErrorAs(t, err, &invalid)

	_, err = f.bookings.CancelBooking(ctx, "u1", false, "missing")
	assert.True(t, domain.IsNotFound(err))

	// The car is free again once the booking is cancelled.
	f.book(t, "u2", 5, now, now.Add(24*time.Hour))
}

func TestReconcileBookings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	short := f.book(t, "u1", 1, now, now.Add(2*time.Hour))
	long := f.book(t, "u1", 2, now, now.Add(10*24*time.Hour))

	f.clock.Advance(3 * time.Hour)

	active, err := f.bookings.ActiveBookings(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, long.ID, active[0].ID)

	// Reads do not persist corrections.
	got, err := f.bookings.GetBooking(ctx, "u1", false, short.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", got.Status)

	changed, err := f.bookings.ReconcileBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	got, err = f.bookings.GetBooking(ctx, "u1", false, short.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	assert.Contains(t, f.publisher.types(), events.BookingCompleted)

	changed, err = f.bookings.ReconcileBookings(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestReconcileBookings_MalformedDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Set(ctx, repository.KeyBookings, []byte(`[
		{"id":"b9","carId":1,"userId":"u1","startDate":"2026-13-45","endDate":"2026-10-20","totalPrice":5,"status":"active","createdAt":"2026-10-01T00:00:00Z"}
	]`)))

	_, err := f.bookings.ReconcileBookings(ctx)
	var perr *bookingDomain.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "b9", perr.BookingID)
}

func TestArchiveAndRestore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bk := f.book(t, "u1", 5, now, now.Add(24*time.Hour))

	ok, err := f.bookings.ArchiveBooking(ctx, "u1", false, bk.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	archived, err := f.bookings.ArchivedBookings(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "completed", archived[0].Status)

	ok, err = f.bookings.RestoreBooking(ctx, "u1", false, bk.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	f.clock.Advance(48 * time.Hour)
	ok, err = f.bookings.ArchiveBooking(ctx, "u1", false, bk.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.bookings.RestoreBooking(ctx, "u1", false, bk.ID)
	require.NoError(t, err)
	assert.False(t, ok, "restore must fail once the end date has passed")

	ok, err = f.bookings.ArchiveBooking(ctx, "u1", false, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.bookings.ArchiveBooking(ctx, "u2", false, bk.ID)
	var forbidden *domain.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	assert.Equal(t, []string{
		events.BookingCreated, events.BookingArchived, events.BookingRestored, events.BookingArchived,
	}, f.publisher.types())
}

func TestArchiveBooking_MissingLeavesCollectionUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.book(t, "u1", 5, now, now.Add(24*time.Hour))
	f.book(t, "u2", 6, now.Add(24*time.Hour), now.Add(72*time.Hour))

	before, err := f.store.Get(ctx, repository.KeyBookings)
	require.NoError(t, err)

	ok, err := f.bookings.ArchiveBooking(ctx, "", true, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	after, err := f.store.Get(ctx, repository.KeyBookings)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, []string{events.BookingCreated, events.BookingCreated}, f.publisher.types())
}

func TestArchivedBookingKeepsCarReserved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.book(t, "u1", 5, now, now.Add(48*time.Hour))

	ok, err := f.bookings.ArchiveBooking(ctx, "u1", false, first.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.bookings.CreateBooking(ctx, "u2", CreateBookingRequest{
		CarID:     5,
		StartDate: bookingDomain.FormatDate(now),
		EndDate:   bookingDomain.FormatDate(now.Add(48 * time.Hour)),
	})
	assert.True(t, domain.IsConflict(err), "got %v", err)

	changed, err := f.bookings.ReconcileBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	active, err := f.bookings.ActiveBookings(ctx, "")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)
}

func TestRestoreBooking_ConflictingBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Set(ctx, repository.KeyBookings, []byte(`[
		{"id":"b1","carId":5,"userId":"u1","startDate":"2026-10-19","endDate":"2026-10-21","totalPrice":130,"status":"completed","createdAt":"2026-10-01T00:00:00Z"},
		{"id":"b2","carId":5,"userId":"u2","startDate":"2026-10-20","endDate":"2026-10-22","totalPrice":130,"status":"active","createdAt":"2026-10-02T00:00:00Z"}
	]`)))

	ok, err := f.bookings.RestoreBooking(ctx, "u1", false, "b1")
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.False(t, ok)

	got, err := f.bookings.GetBooking(ctx, "", true, "b1")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	assert.Empty(t, f.publisher.types())
}

func TestCancelledBookingStaysCancelled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bk := f.book(t, "u1", 5, now, now.Add(48*time.Hour))

	_, err := f.bookings.CancelBooking(ctx, "u1", false, bk.ID)
	require.NoError(t, err)

	ok, err := f.bookings.RestoreBooking(ctx, "u1", false, bk.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.bookings.ArchiveBooking(ctx, "u1", false, bk.ID)
	require.NoError(t, err)
	assert.True(t, ok, "a cancelled booking is already archived")

	changed, err := f.bookings.ReconcileBookings(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)

	got, err := f.bookings.GetBooking(ctx, "", true, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)
	assert.Equal(t, []string{events.BookingCreated, events.BookingCancelled}, f.publisher.types())
}

func TestHandlePaymentFailed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bk := f.book(t, "u1", 5, now, now.Add(24*time.Hour))

	require.NoError(t, f.bookings.HandlePaymentFailed(ctx, events.PaymentFailedEvent{
		PaymentID: "p1", BookingID: bk.ID, Reason: "card declined",
	}))
	got, err := f.bookings.GetBooking(ctx, "", true, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)

	// Redelivery and unknown bookings are acknowledged without changes.
	require.NoError(t, f.bookings.HandlePaymentFailed(ctx, events.PaymentFailedEvent{BookingID: bk.ID}))
	require.NoError(t, f.bookings.HandlePaymentFailed(ctx, events.PaymentFailedEvent{BookingID: "missing"}))
	assert.Equal(t, []string{events.BookingCreated, events.BookingCancelled}, f.publisher.types())
}

func TestExpiringBookings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.book(t, "u1", 5, now, now.Add(10*time.Hour))
	f.book(t, "u2", 4, now, now.Add(10*time.Hour))

	within, err := f.bookings.ExpiringBookings(ctx, "u1", 24*time.Hour, false)
	require.NoError(t, err)
	require.Len(t, within, 1)
	assert.Equal(t, 10*time.Hour, within[0].Remaining)
	assert.Equal(t, "u1", within[0].Booking.UserID)

	narrow, err := f.bookings.ExpiringBookings(ctx, "u1", 5*time.Hour, false)
	require.NoError(t, err)
	assert.Empty(t, narrow)

	f.clock.Advance(11 * time.Hour)
	expired, err := f.bookings.ExpiringBookings(ctx, "u1", 24*time.Hour, false)
	require.NoError(t, err)
	assert.Empty(t, expired)
	expired, err = f.bookings.ExpiringBookings(ctx, "u1", 24*time.Hour, true)
	require.NoError(t, err)
	assert.Len(t, expired, 1)
}

func TestBookingStatsAndListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.book(t, "u1", 5, now, now.Add(24*time.Hour))
	f.book(t, "u2", 4, now, now.Add(24*time.Hour))
	_, err := f.bookings.CancelBooking(ctx, "u1", false, a.ID)
	require.NoError(t, err)

	stats, err := f.bookings.GetBookingStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalBookings)
	assert.EqualValues(t, 1, stats.ByStatus["active"])
	assert.EqualValues(t, 1, stats.ByStatus["cancelled"])
	assert.InDelta(t, 45.0, stats.TotalRevenue, 1e-9)

	page, total, err := f.bookings.ListAllBookings(ctx, 2, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "u2", page[0].UserID)
}

func TestCarService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.cars.CreateCar(ctx, CarRequest{
		Brand: "Fiat", Model: "500e", Year: 2024, Category: "compact", PricePerDay: 40,
		Seats: 4, Transmission: "automatic", FuelType: "electric",
	})
	require.NoError(t, err)
	assert.Equal(t, 11, created.ID)

	_, err = f.cars.CreateCar(ctx, CarRequest{Brand: "Fiat"})
	assert.True(t, domain.IsValidation(err))

	assert.Equal(t, now, created.UpdatedAt)

	f.clock.Advance(time.Hour)
	updated, err := f.cars.UpdateCar(ctx, 11, CarRequest{PricePerDay: 42})
	require.NoError(t, err)
	assert.Equal(t, 42.0, updated.PricePerDay)
	assert.Equal(t, "500e", updated.Model)
	assert.Equal(t, now.Add(time.Hour), updated.UpdatedAt)

	electric, total, err := f.cars.ListCars(ctx, carFilter("electric"), 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, electric, 2)

	suggestions, err := f.cars.SuggestRandom(ctx, 5, 3)
	require.NoError(t, err)
	assert.Len(t, suggestions, 3)
	for _, c := range suggestions {
		assert.NotEqual(t, 5, c.ID)
	}

	f.book(t, "u1", 11, now, now.Add(24*time.Hour))
	assert.True(t, domain.IsConflict(f.cars.DeleteCar(ctx, 11)))
	require.NoError(t, f.cars.DeleteCar(ctx, 10))
	_, err = f.cars.GetCar(ctx, 10)
	assert.True(t, domain.IsNotFound(err))
}

func TestFavoriteService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	added, err := f.favorites.AddToFavorites(ctx, "u1", 5)
	require.NoError(t, err)
	assert.True(t, added)

	ids, err := f.favorites.GetFavoriteIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int{5}, ids)

	added, err = f.favorites.AddToFavorites(ctx, "u1", 5)
	require.NoError(t, err)
	assert.False(t, added)

	ids, err = f.favorites.GetFavoriteIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int{5}, ids)

	_, err = f.favorites.AddToFavorites(ctx, "u1", 404)
	assert.True(t, domain.IsNotFound(err))

	is, err := f.favorites.IsFavorite(ctx, "u1", 5)
	require.NoError(t, err)
	assert.True(t, is)

	cars, err := f.favorites.FavoriteCars(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "Hyundai", cars[0].Brand)

	removed, err := f.favorites.RemoveFromFavorites(ctx, "u1", 5)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = f.favorites.RemoveFromFavorites(ctx, "u1", 5)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRatingService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bk := f.book(t, "u1", 5, now, now.Add(2*time.Hour))

	_, err := f.ratings.AddRating(ctx, "u1", AddRatingRequest{BookingID: bk.ID, Rating: 5})
	assert.True(t, domain.IsValidation(err), "running bookings cannot be rated")

	f.clock.Advance(3 * time.Hour)
	_, err = f.ratings.AddRating(ctx, "u2", AddRatingRequest{BookingID: bk.ID, Rating: 5})
	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	_, err = f.ratings.AddRating(ctx, "u1", AddRatingRequest{BookingID: bk.ID, Rating: 6})
	assert.True(t, domain.IsValidation(err))

	r, err := f.ratings.AddRating(ctx, "u1", AddRatingRequest{BookingID: bk.ID, Rating: 4, Comment: "clean"})
	require.NoError(t, err)
	assert.Equal(t, 5, r.CarID)

	_, err = f.ratings.AddRating(ctx, "u1", AddRatingRequest{BookingID: bk.ID, Rating: 3})
	assert.True(t, domain.IsConflict(err))

	avg, err := f.ratings.GetAverageRating(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 4.0, avg)

	avg, err = f.ratings.GetAverageRating(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, avg)

	rated, err := f.ratings.HasRatedBooking(ctx, "u1", bk.ID)
	require.NoError(t, err)
	assert.True(t, rated)
}

func TestRatingService_RentalNotStarted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bk := f.book(t, "u1", 5, now.Add(72*time.Hour), now.Add(96*time.Hour))

	ok, err := f.bookings.ArchiveBooking(ctx, "u1", false, bk.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.ratings.AddRating(ctx, "u1", AddRatingRequest{BookingID: bk.ID, Rating: 5})
	assert.True(t, domain.IsValidation(err), "got %v", err)

	rated, err := f.ratings.HasRatedBooking(ctx, "u1", bk.ID)
	require.NoError(t, err)
	assert.False(t, rated)
}

func TestCompareService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.compare.Add(ctx, "u1", 1)
	require.NoError(t, err)
	list, err := f.compare.Add(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.compare.Add(ctx, "u1", 3)
	assert.True(t, domain.IsValidation(err))
	_, err = f.compare.Add(ctx, "u1", 2)
	assert.Error(t, err)

	removed, err := f.compare.Remove(ctx, "u1", 1)
	require.NoError(t, err)
	assert.True(t, removed)

	require.NoError(t, f.compare.Clear(ctx, "u1"))
	list, err = f.compare.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPreferenceService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.prefs.Update(ctx, "u1", UpdatePreferencesRequest{Language: "ar", Theme: "dark"})
	require.NoError(t, err)
	assert.Equal(t, "ar", p.Language)
	assert.Equal(t, "dark", p.Theme)

	_, err = f.prefs.Update(ctx, "u1", UpdatePreferencesRequest{Theme: "neon"})
	assert.True(t, domain.IsValidation(err))

	first, err := f.prefs.DismissBanner(ctx, "u1", "promo-summer")
	require.NoError(t, err)
	assert.True(t, first)
	again, err := f.prefs.DismissBanner(ctx, "u1", "promo-summer")
	require.NoError(t, err)
	assert.False(t, again)

	dismissed, err := f.prefs.IsBannerDismissed(ctx, "u1", "promo-summer")
	require.NoError(t, err)
	assert.True(t, dismissed)

	require.NoError(t, f.prefs.ResetBanners(ctx, "u1"))
	dismissed, err = f.prefs.IsBannerDismissed(ctx, "u1", "promo-summer")
	require.NoError(t, err)
	assert.False(t, dismissed)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.book(t, "u1", 5, now, now.Add(48*time.Hour))
	cancelled := f.book(t, "u1", 4, now, now.Add(24*time.Hour))
	_, err := f.bookings.CancelBooking(ctx, "u1", false, cancelled.ID)
	require.NoError(t, err)
	_, err = f.favorites.AddToFavorites(ctx, "u1", 7)
	require.NoError(t, err)

	d, err := f.dashboard.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, d.ActiveBookings, 1)
	assert.Len(t, d.ArchivedBookings, 1)
	require.Len(t, d.Favorites, 1)
	assert.Equal(t, 7, d.Favorites[0].ID)
	assert.InDelta(t, 130.0, d.TotalSpent, 1e-9)
	assert.Zero(t, d.RatingCount)
}

func TestInvoiceService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bk := f.book(t, "u1", 5, now, now.Add(72*time.Hour))

	inv, err := f.invoices.Generate(ctx, "u1", false, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.Number+".pdf", inv.Filename)
	assert.Equal(t, "%PDF", string(inv.PDF[:4]))

	_, err = f.invoices.Generate(ctx, "u2", false, bk.ID)
	var forbidden *domain.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	sent, err := f.invoices.EmailInvoice(ctx, "u1", false, bk.ID)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, events.TopicNotificationEvents, f.publisher.topics[len(f.publisher.topics)-1])

	f.publisher.err = errors.New("broker down")
	sent, err = f.invoices.EmailInvoice(ctx, "u1", false, bk.ID)
	require.NoError(t, err)
	assert.False(t, sent)
}

func carFilter(fuel string) carDomain.Filter {
	return carDomain.Filter{FuelType: carDomain.FuelType(fuel)}
}
