package application

import (
	"context"

	"github.com/carhub/service-rental/pkg/domain"
)

// DashboardDTO summarizes a customer's account.
type DashboardDTO struct {
	ActiveBookings   []BookingDTO `json:"active_bookings"`
	ArchivedBookings []BookingDTO `json:"archived_bookings"`
	Favorites        []CarDTO     `json:"favorites"`
	TotalSpent       float64      `json:"total_spent"`
	Currency         string       `json:"currency"`
	RatingCount      int          `json:"rating_count"`
}

// DashboardService composes the customer dashboard.
type DashboardService struct {
	bookings  *BookingService
	favorites *FavoriteService
	ratings   *RatingService
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(bookings *BookingService, favorites *FavoriteService, ratings *RatingService) *DashboardService {
	return &DashboardService{bookings: bookings, favorites: favorites, ratings: ratings}
}

// Get builds the dashboard of userID. Cancelled bookings do not count toward spending.
func (s *DashboardService) Get(ctx context.Context, userID string) (*DashboardDTO, error) {
	active, err := s.bookings.ActiveBookings(ctx, userID)
	if err != nil {
		return nil, err
	}
	archived, err := s.bookings.ArchivedBookings(ctx, userID)
	if err != nil {
		return nil, err
	}
	favorites, err := s.favorites.FavoriteCars(ctx, userID)
	if err != nil {
		return nil, err
	}
	ratingCount, err := s.ratings.UserRatingCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	var spent float64
	for _, group := range [][]BookingDTO{active, archived} {
		for _, bk := range group {
			if bk.Status != "cancelled" {
				spent += bk.TotalPrice
			}
		}
	}

	return &DashboardDTO{
		ActiveBookings:   active,
		ArchivedBookings: archived,
		Favorites:        favorites,
		TotalSpent:       spent,
		Currency:         domain.CurrencyUSD,
		RatingCount:      ratingCount,
	}, nil
}
