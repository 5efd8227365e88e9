package repository

import (
	"context"

	"go.uber.org/zap"

	carDomain "github.com/carhub/service-rental/internal/domain/car"
	"github.com/carhub/service-rental/internal/domain/compare"
	"github.com/carhub/service-rental/internal/storage"
)

// BlobCompareRepository keeps each user's compare list under "compareList:<user>".
// Full car records are stored so the list renders without a catalog lookup.
type BlobCompareRepository struct {
	store  storage.Store
	logger *zap.Logger
}

// NewBlobCompareRepository creates a new BlobCompareRepository.
func NewBlobCompareRepository(store storage.Store, logger *zap.Logger) *BlobCompareRepository {
	return &BlobCompareRepository{store: store, logger: logger}
}

func (r *BlobCompareRepository) list(userID string) collection[[]CarRecord] {
	return newCollection(r.store, compareListKey(userID), emptySlice[CarRecord](), r.logger)
}

// Load returns the user's compare list.
func (r *BlobCompareRepository) Load(ctx context.Context, userID string) (*compare.List, error) {
	records, err := r.list(userID).load(ctx)
	if err != nil {
		return nil, err
	}
	return toCompareList(records), nil
}

// Update runs fn over the user's compare list as one atomic read-modify-write.
func (r *BlobCompareRepository) Update(ctx context.Context, userID string, fn func(*compare.List) (bool, error)) error {
	return r.list(userID).update(ctx, func(records *[]CarRecord) (bool, error) {
		l := toCompareList(*records)
		write, err := fn(l)
		if err != nil || !write {
			return false, err
		}

		next := make([]CarRecord, 0, l.Len())
		for _, c := range l.Cars() {
			next = append(next, toCarRecord(c))
		}
		*records = next
		return true, nil
	})
}

func toCompareList(records []CarRecord) *compare.List {
	cars := make([]*carDomain.Car, len(records))
	for i := range records {
		cars[i] = toDomainCar(&records[i])
	}
	return compare.NewList(cars)
}
