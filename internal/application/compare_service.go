package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/carhub/service-rental/internal/domain/compare"
)

// CompareService manages the side-by-side comparison list of each user.
type CompareService struct {
	repo   compare.Repository
	cars   *CarService
	logger *zap.Logger
}

// NewCompareService creates a new CompareService.
func NewCompareService(repo compare.Repository, cars *CarService, logger *zap.Logger) *CompareService {
	return &CompareService{repo: repo, cars: cars, logger: logger}
}

// List returns the cars the user is comparing.
func (s *CompareService) List(ctx context.Context, userID string) ([]CarDTO, error) {
	l, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load compare list: %w", err)
	}
	return toCarDTOs(l.Cars()), nil
}

// Add puts a catalog car into the user's compare list.
func (s *CompareService) Add(ctx context.Context, userID string, carID int) ([]CarDTO, error) {
	c, err := s.cars.repo.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}

	var result []CarDTO
	err = s.repo.Update(ctx, userID, func(l *compare.List) (bool, error) {
		if err := l.Add(c); err != nil {
			return false, err
		}
		result = toCarDTOs(l.Cars())
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Remove drops a car from the list. It returns false if it was not there.
func (s *CompareService) Remove(ctx context.Context, userID string, carID int) (bool, error) {
	var removed bool
	err := s.repo.Update(ctx, userID, func(l *compare.List) (bool, error) {
		removed = l.Remove(carID)
		return removed, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to update compare list: %w", err)
	}
	return removed, nil
}

// Clear empties the user's compare list.
func (s *CompareService) Clear(ctx context.Context, userID string) error {
	err := s.repo.Update(ctx, userID, func(l *compare.List) (bool, error) {
		l.Clear()
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear compare list: %w", err)
	}
	return nil
}
