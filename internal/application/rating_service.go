package application

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"

	bookingDomain "github.com/carhub/service-rental/internal/domain/booking"
	ratingDomain "github.com/carhub/service-rental/internal/domain/rating"
	"github.com/carhub/service-rental/pkg/domain"
)

// AddRatingRequest is the request DTO for rating a finished rental.
type AddRatingRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"max=1000"`
}

// RatingDTO is the API response representation of a rating.
type RatingDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CarID     int       `json:"car_id"`
	BookingID string    `json:"booking_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CarRatingsDTO groups a car's ratings with their average.
type CarRatingsDTO struct {
	CarID   int         `json:"car_id"`
	Average float64     `json:"average"`
	Count   int         `json:"count"`
	Ratings []RatingDTO `json:"ratings"`
}

// RatingService implements rating use cases.
type RatingService struct {
	repo     ratingDomain.RatingRepository
	bookings bookingDomain.BookingRepository
	clock    clock.Clock
	logger   *zap.Logger
}

// NewRatingService creates a new RatingService.
func NewRatingService(
	repo ratingDomain.RatingRepository,
	bookings bookingDomain.BookingRepository,
	clk clock.Clock,
	logger *zap.Logger,
) *RatingService {
	return &RatingService{repo: repo, bookings: bookings, clock: clk, logger: logger}
}

// AddRating rates the car of a finished booking. Each booking can be rated
// once per user.
func (s *RatingService) AddRating(ctx context.Context, userID string, req AddRatingRequest) (*RatingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(userID) {
		return nil, domain.NewForbiddenError("you can only rate your own bookings")
	}

	now := s.clock.Now()
	if bk.Status() == bookingDomain.StatusCancelled || !bk.IsArchivedAt(now) {
		return nil, domain.NewValidationError("only completed bookings can be rated")
	}
	if bk.StartDate().After(now) {
		return nil, domain.NewValidationError("bookings can only be rated once the rental has started")
	}

	r, err := ratingDomain.NewRating(userID, bk.CarID(), bk.ID(), req.Rating, req.Comment, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Add(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}

	s.logger.Info("rating added",
		zap.String("booking_id", bk.ID()),
		zap.Int("car_id", bk.CarID()),
		zap.Int("rating", r.Score()),
	)

	dto := toRatingDTO(r)
	return &dto, nil
}

// GetCarRatings returns the ratings of a car with their average.
func (s *RatingService) GetCarRatings(ctx context.Context, carID int) (*CarRatingsDTO, error) {
	ratings, err := s.repo.FindByCarID(ctx, carID)
	if err != nil {
		return nil, fmt.Errorf("failed to find car ratings: %w", err)
	}

	dtos := make([]RatingDTO, len(ratings))
	for i, r := range ratings {
		dtos[i] = toRatingDTO(r)
	}
	return &CarRatingsDTO{
		CarID:   carID,
		Average: ratingDomain.Average(ratings),
		Count:   len(ratings),
		Ratings: dtos,
	}, nil
}

// GetAverageRating returns the mean rating of a car, 0 when unrated.
func (s *RatingService) GetAverageRating(ctx context.Context, carID int) (float64, error) {
	ratings, err := s.repo.FindByCarID(ctx, carID)
	if err != nil {
		return 0, fmt.Errorf("failed to find car ratings: %w", err)
	}
	return ratingDomain.Average(ratings), nil
}

// HasRatedBooking reports whether the user already rated the booking.
func (s *RatingService) HasRatedBooking(ctx context.Context, userID, bookingID string) (bool, error) {
	ratings, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to find user ratings: %w", err)
	}
	for _, r := range ratings {
		if r.BookingID() == bookingID {
			return true, nil
		}
	}
	return false, nil
}

// UserRatingCount returns how many ratings the user gave.
func (s *RatingService) UserRatingCount(ctx context.Context, userID string) (int, error) {
	ratings, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to find user ratings: %w", err)
	}
	return len(ratings), nil
}

func toRatingDTO(r *ratingDomain.Rating) RatingDTO {
	return RatingDTO{
		ID:        r.ID(),
		UserID:    r.UserID(),
		CarID:     r.CarID(),
		BookingID: r.BookingID(),
		Rating:    r.Score(),
		Comment:   r.Comment(),
		CreatedAt: r.CreatedAt(),
	}
}
