// Package compare holds the side-by-side comparison list of a user.
package compare

import (
	"context"
	"fmt"

	"github.com/carhub/service-rental/internal/domain/car"
	"github.com/carhub/service-rental/pkg/domain"
)

// MaxCars is how many cars can be compared at once.
const MaxCars = 2

// List is an ordered set of at most MaxCars cars.
type List struct {
	cars []*car.Car
}

// NewList builds a list from stored cars, dropping duplicates and anything past MaxCars.
func NewList(cars []*car.Car) *List {
	l := &List{}
	for _, c := range cars {
		if len(l.cars) == MaxCars {
			break
		}
		if !l.Contains(c.ID()) {
			l.cars = append(l.cars, c)
		}
	}
	return l
}

// Cars returns the cars in insertion order.
func (l *List) Cars() []*car.Car {
	out := make([]*car.Car, len(l.cars))
	copy(out, l.cars)
	return out
}

// Len returns the number of cars in the list.
func (l *List) Len() int { return len(l.cars) }

// Contains reports whether the car is in the list.
func (l *List) Contains(carID int) bool {
	for _, c := range l.cars {
		if c.ID() == carID {
			return true
		}
	}
	return false
}

// Add appends c. Duplicates and a full list are rejected.
func (l *List) Add(c *car.Car) error {
	if l.Contains(c.ID()) {
		return domain.NewConflictError(fmt.Sprintf("car %d is already in the compare list", c.ID()))
	}
	if len(l.cars) >= MaxCars {
		return domain.NewValidationError(fmt.Sprintf("you can compare at most %d cars", MaxCars))
	}
	l.cars = append(l.cars, c)
	return nil
}

// Remove drops carID. It returns false if it was absent.
func (l *List) Remove(carID int) bool {
	for i, c := range l.cars {
		if c.ID() == carID {
			l.cars = append(l.cars[:i:i], l.cars[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the list.
func (l *List) Clear() { l.cars = nil }

// Repository persists one compare list per user.
type Repository interface {
	Load(ctx context.Context, userID string) (*List, error)
	Update(ctx context.Context, userID string, fn func(*List) (bool, error)) error
}
