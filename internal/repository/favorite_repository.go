package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/carhub/service-rental/internal/domain/favorite"
	"github.com/carhub/service-rental/internal/storage"
)

// BlobFavoriteRepository keeps the favorites of every user in the "favorites" blob.
type BlobFavoriteRepository struct {
	favorites collection[favorite.Favorites]
}

// NewBlobFavoriteRepository creates a new BlobFavoriteRepository.
func NewBlobFavoriteRepository(store storage.Store, logger *zap.Logger) *BlobFavoriteRepository {
	return &BlobFavoriteRepository{
		favorites: newCollection(store, KeyFavorites, func() favorite.Favorites { return favorite.Favorites{} }, logger),
	}
}

// Load returns the favorites map.
func (r *BlobFavoriteRepository) Load(ctx context.Context) (favorite.Favorites, error) {
	f, err := r.favorites.load(ctx)
	if err != nil {
		return nil, err
	}
	if f == nil {
		f = favorite.Favorites{}
	}
	return f, nil
}

// Update runs fn over the favorites map as one atomic read-modify-write.
func (r *BlobFavoriteRepository) Update(ctx context.Context, fn func(favorite.Favorites) (bool, error)) error {
	return r.favorites.update(ctx, func(f *favorite.Favorites) (bool, error) {
		if *f == nil {
			*f = favorite.Favorites{}
		}
		return fn(*f)
	})
}
