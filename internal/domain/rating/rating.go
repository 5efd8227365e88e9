package rating

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carhub/service-rental/pkg/domain"
)

const (
	MinScore = 1
	MaxScore = 5

	maxCommentLength = 1000
)

// Rating is a user's score for a car after a completed booking.
type Rating struct {
	id        string
	userID    string
	carID     int
	bookingID string
	score     int
	comment   string
	createdAt time.Time
}

// NewRating creates a rating with a validated score.
func NewRating(userID string, carID int, bookingID string, score int, comment string, now time.Time) (*Rating, error) {
	if userID == "" {
		return nil, domain.NewValidationError("user ID is required")
	}
	if carID <= 0 {
		return nil, domain.NewValidationError("car ID is required")
	}
	if bookingID == "" {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if score < MinScore || score > MaxScore {
		return nil, domain.NewValidationError(fmt.Sprintf("rating must be between %d and %d, got %d", MinScore, MaxScore, score))
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > maxCommentLength {
		return nil, domain.NewValidationError("comment is too long")
	}

	return &Rating{
		id:        uuid.NewString(),
		userID:    userID,
		carID:     carID,
		bookingID: bookingID,
		score:     score,
		comment:   comment,
		createdAt: now.UTC(),
	}, nil
}

// Reconstruct rebuilds a Rating from persistence.
func Reconstruct(id, userID string, carID int, bookingID string, score int, comment string, createdAt time.Time) *Rating {
	return &Rating{
		id:        id,
		userID:    userID,
		carID:     carID,
		bookingID: bookingID,
		score:     score,
		comment:   comment,
		createdAt: createdAt,
	}
}

// Getters.
func (r *Rating) ID() string           { return r.id }
func (r *Rating) UserID() string       { return r.userID }
func (r *Rating) CarID() int           { return r.carID }
func (r *Rating) BookingID() string    { return r.bookingID }
func (r *Rating) Score() int           { return r.score }
func (r *Rating) Comment() string      { return r.comment }
func (r *Rating) CreatedAt() time.Time { return r.createdAt }

// Average returns the mean score of ratings, or 0 when there are none.
func Average(ratings []*Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.score
	}
	return float64(sum) / float64(len(ratings))
}
