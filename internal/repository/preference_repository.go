package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/carhub/service-rental/internal/domain/preference"
	"github.com/carhub/service-rental/internal/storage"
)

// BlobPreferenceRepository keeps settings under "preferences:<user>" and
// dismissed banners under "dismissedBanners:<user>".
type BlobPreferenceRepository struct {
	store  storage.Store
	logger *zap.Logger
}

// NewBlobPreferenceRepository creates a new BlobPreferenceRepository.
func NewBlobPreferenceRepository(store storage.Store, logger *zap.Logger) *BlobPreferenceRepository {
	return &BlobPreferenceRepository{store: store, logger: logger}
}

func (r *BlobPreferenceRepository) prefs(userID string) collection[preference.Preferences] {
	return newCollection(r.store, preferencesKey(userID), preference.Default, r.logger)
}

func (r *BlobPreferenceRepository) banners(userID string) collection[preference.Banners] {
	return newCollection(r.store, dismissedBannersKey(userID), func() preference.Banners { return preference.Banners{} }, r.logger)
}

// Get returns the user's settings, defaulting unknown values.
func (r *BlobPreferenceRepository) Get(ctx context.Context, userID string) (preference.Preferences, error) {
	p, err := r.prefs(userID).load(ctx)
	if err != nil {
		return preference.Preferences{}, err
	}
	return p.Normalize(), nil
}

// Save replaces the user's settings.
func (r *BlobPreferenceRepository) Save(ctx context.Context, userID string, p preference.Preferences) error {
	return r.prefs(userID).save(ctx, p)
}

// Banners returns the banners the user dismissed.
func (r *BlobPreferenceRepository) Banners(ctx context.Context, userID string) (preference.Banners, error) {
	b, err := r.banners(userID).load(ctx)
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = preference.Banners{}
	}
	return b, nil
}

// UpdateBanners runs fn over the user's dismissed banners atomically.
func (r *BlobPreferenceRepository) UpdateBanners(ctx context.Context, userID string, fn func(*preference.Banners) (bool, error)) error {
	return r.banners(userID).update(ctx, func(b *preference.Banners) (bool, error) {
		return fn(b)
	})
}

// ResetBanners forgets every dismissed banner of the user.
func (r *BlobPreferenceRepository) ResetBanners(ctx context.Context, userID string) error {
	return r.banners(userID).save(ctx, preference.Banners{})
}
