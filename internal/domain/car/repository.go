package car

import "context"

// CarRepository defines persistence operations for the car catalog.
type CarRepository interface {
	FindAll(ctx context.Context) ([]*Car, error)
	FindByID(ctx context.Context, id int) (*Car, error)
	// NextID returns the identifier the next created car should use.
	NextID(ctx context.Context) (int, error)
	Save(ctx context.Context, car *Car) error
	Update(ctx context.Context, car *Car) error
	Delete(ctx context.Context, id int) error
}
