package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	ratingDomain "github.com/carhub/service-rental/internal/domain/rating"
	"github.com/carhub/service-rental/internal/storage"
	"github.com/carhub/service-rental/pkg/domain"
)

// RatingRecord is the stored JSON form of a rating.
type RatingRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CarID     int       `json:"carId"`
	BookingID string    `json:"bookingId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// BlobRatingRepository keeps every rating in the "ratings" blob.
type BlobRatingRepository struct {
	ratings collection[[]RatingRecord]
}

// NewBlobRatingRepository creates a new BlobRatingRepository.
func NewBlobRatingRepository(store storage.Store, logger *zap.Logger) *BlobRatingRepository {
	return &BlobRatingRepository{
		ratings: newCollection(store, KeyRatings, emptySlice[RatingRecord](), logger),
	}
}

// FindAll returns every rating in stored order.
func (r *BlobRatingRepository) FindAll(ctx context.Context) ([]*ratingDomain.Rating, error) {
	return r.findWhere(ctx, func(*RatingRecord) bool { return true })
}

// FindByCarID returns the ratings of one car.
func (r *BlobRatingRepository) FindByCarID(ctx context.Context, carID int) ([]*ratingDomain.Rating, error) {
	return r.findWhere(ctx, func(rec *RatingRecord) bool { return rec.CarID == carID })
}

// FindByUserID returns the ratings one user gave.
func (r *BlobRatingRepository) FindByUserID(ctx context.Context, userID string) ([]*ratingDomain.Rating, error) {
	return r.findWhere(ctx, func(rec *RatingRecord) bool { return rec.UserID == userID })
}

// Add appends a rating, rejecting a second rating of the same booking by the same user.
func (r *BlobRatingRepository) Add(ctx context.Context, rt *ratingDomain.Rating) error {
	return r.ratings.update(ctx, func(records *[]RatingRecord) (bool, error) {
		for _, rec := range *records {
			if rec.UserID == rt.UserID() && rec.BookingID == rt.BookingID() {
				return false, domain.NewConflictError("booking has already been rated")
			}
		}
		*records = append(*records, RatingRecord{
			ID:        rt.ID(),
			UserID:    rt.UserID(),
			CarID:     rt.CarID(),
			BookingID: rt.BookingID(),
			Rating:    rt.Score(),
			Comment:   rt.Comment(),
			CreatedAt: rt.CreatedAt(),
		})
		return true, nil
	})
}

func (r *BlobRatingRepository) findWhere(ctx context.Context, keep func(*RatingRecord) bool) ([]*ratingDomain.Rating, error) {
	records, err := r.ratings.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*ratingDomain.Rating, 0)
	for i := range records {
		rec := &records[i]
		if keep(rec) {
			out = append(out, ratingDomain.Reconstruct(
				rec.ID, rec.UserID, rec.CarID, rec.BookingID, rec.Rating, rec.Comment, rec.CreatedAt,
			))
		}
	}
	return out, nil
}
