package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/carhub/service-rental/internal/storage"
)

// Storage keys of the global collections.
const (
	KeyBookings  = "bookings"
	KeyCars      = "cars"
	KeyFavorites = "favorites"
	KeyRatings   = "ratings"
)

// Per-user keys.
func compareListKey(userID string) string      { return "compareList:" + userID }
func preferencesKey(userID string) string      { return "preferences:" + userID }
func dismissedBannersKey(userID string) string { return "dismissedBanners:" + userID }

// collection decodes one JSON blob into T. A missing blob yields the fallback
// value; a blob that is not valid JSON is logged and treated as empty.
type collection[T any] struct {
	store    storage.Store
	key      string
	fallback func() T
	logger   *zap.Logger
}

func newCollection[T any](store storage.Store, key string, fallback func() T, logger *zap.Logger) collection[T] {
	return collection[T]{store: store, key: key, fallback: fallback, logger: logger}
}

func (c collection[T]) load(ctx context.Context) (T, error) {
	raw, err := c.store.Get(ctx, c.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.fallback(), nil
		}
		var zero T
		return zero, fmt.Errorf("failed to read %s: %w", c.key, err)
	}
	return c.decode(raw), nil
}

// update runs fn over the decoded value inside one atomic read-modify-write.
func (c collection[T]) update(ctx context.Context, fn func(*T) (bool, error)) error {
	err := c.store.Update(ctx, c.key, func(current []byte) ([]byte, bool, error) {
		var value T
		if current == nil {
			value = c.fallback()
		} else {
			value = c.decode(current)
		}

		write, err := fn(&value)
		if err != nil || !write {
			return nil, false, err
		}

		next, err := json.Marshal(value)
		if err != nil {
			return nil, false, fmt.Errorf("failed to encode %s: %w", c.key, err)
		}
		return next, true, nil
	})
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", c.key, err)
	}
	return nil
}

func (c collection[T]) save(ctx context.Context, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.key, err)
	}
	if err := c.store.Set(ctx, c.key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.key, err)
	}
	return nil
}

func (c collection[T]) decode(raw []byte) T {
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		c.logger.Warn("discarding unreadable blob",
			zap.String("key", c.key),
			zap.Error(err),
		)
		var empty T
		return empty
	}
	return value
}

func emptySlice[E any]() func() []E {
	return func() []E { return []E{} }
}
