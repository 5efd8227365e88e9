package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/carhub/service-rental/internal/domain/favorite"
)

// FavoriteService implements the favorites use cases.
type FavoriteService struct {
	repo   favorite.Repository
	cars   *CarService
	logger *zap.Logger
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(repo favorite.Repository, cars *CarService, logger *zap.Logger) *FavoriteService {
	return &FavoriteService{repo: repo, cars: cars, logger: logger}
}

// AddToFavorites saves a car for the user. It returns false if it was already saved.
func (s *FavoriteService) AddToFavorites(ctx context.Context, userID string, carID int) (bool, error) {
	if _, err := s.cars.repo.FindByID(ctx, carID); err != nil {
		return false, err
	}

	var added bool
	err := s.repo.Update(ctx, func(f favorite.Favorites) (bool, error) {
		added = f.Add(userID, carID)
		return added, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}
	return added, nil
}

// RemoveFromFavorites drops a car from the user's favorites. It returns false
// if it was not saved.
func (s *FavoriteService) RemoveFromFavorites(ctx context.Context, userID string, carID int) (bool, error) {
	var removed bool
	err := s.repo.Update(ctx, func(f favorite.Favorites) (bool, error) {
		removed = f.Remove(userID, carID)
		return removed, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	return removed, nil
}

// GetFavoriteIDs returns the user's favorite car IDs in the order they were saved.
func (s *FavoriteService) GetFavoriteIDs(ctx context.Context, userID string) ([]int, error) {
	f, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	return f.IDs(userID), nil
}

// IsFavorite reports whether the user saved the car.
func (s *FavoriteService) IsFavorite(ctx context.Context, userID string, carID int) (bool, error) {
	f, err := s.repo.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load favorites: %w", err)
	}
	return f.Contains(userID, carID), nil
}

// FavoriteCars resolves the user's favorites against the catalog.
func (s *FavoriteService) FavoriteCars(ctx context.Context, userID string) ([]CarDTO, error) {
	ids, err := s.GetFavoriteIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.cars.findCars(ctx, ids)
}
