package application

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"

	bookingDomain "github.com/carhub/service-rental/internal/domain/booking"
	carDomain "github.com/carhub/service-rental/internal/domain/car"
	"github.com/carhub/service-rental/pkg/domain"
)

// CarRequest is the request DTO for creating or updating a car. On update,
// omitted fields keep their current value.
type CarRequest struct {
	Brand        string   `json:"brand"`
	Model        string   `json:"model"`
	Year         int      `json:"year"`
	Category     string   `json:"category"`
	PricePerDay  float64  `json:"price_per_day" binding:"gte=0"`
	Seats        int      `json:"seats" binding:"gte=0"`
	Transmission string   `json:"transmission"`
	FuelType     string   `json:"fuel_type"`
	ImageURL     string   `json:"image_url"`
	Features     []string `json:"features"`
	Location     string   `json:"location"`
}

func (r CarRequest) specs() carDomain.Specs {
	return carDomain.Specs{
		Brand:        r.Brand,
		Model:        r.Model,
		Year:         r.Year,
		Category:     carDomain.Category(r.Category),
		PricePerDay:  r.PricePerDay,
		Seats:        r.Seats,
		Transmission: carDomain.Transmission(r.Transmission),
		FuelType:     carDomain.FuelType(r.FuelType),
		ImageURL:     r.ImageURL,
		Features:     r.Features,
		Location:     r.Location,
	}
}

// CarDTO is the API response representation of a car.
type CarDTO struct {
	ID           int       `json:"id"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Category     string    `json:"category"`
	PricePerDay  float64   `json:"price_per_day"`
	Currency     string    `json:"currency"`
	Seats        int       `json:"seats"`
	Transmission string    `json:"transmission"`
	FuelType     string    `json:"fuel_type"`
	ImageURL     string    `json:"image_url,omitempty"`
	Features     []string  `json:"features"`
	Available    bool      `json:"available"`
	Location     string    `json:"location,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// CarService implements the catalog use cases.
type CarService struct {
	repo     carDomain.CarRepository
	bookings bookingDomain.BookingRepository
	clock    clock.Clock
	logger   *zap.Logger
}

// NewCarService creates a new CarService.
func NewCarService(
	repo carDomain.CarRepository,
	bookings bookingDomain.BookingRepository,
	clk clock.Clock,
	logger *zap.Logger,
) *CarService {
	return &CarService{repo: repo, bookings: bookings, clock: clk, logger: logger}
}

// ListCars returns one page of the filtered catalog.
func (s *CarService) ListCars(ctx context.Context, filter carDomain.Filter, page, limit int) ([]CarDTO, int64, error) {
	cars, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cars: %w", err)
	}
	matched := filter.Apply(cars)
	return toCarDTOs(domain.Paginate(matched, page, limit)), int64(len(matched)), nil
}

// GetCar returns a single car.
func (s *CarService) GetCar(ctx context.Context, id int) (*CarDTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toCarDTO(c)
	return &dto, nil
}

// SuggestRandom returns up to n available cars other than excludeID in random order.
func (s *CarService) SuggestRandom(ctx context.Context, excludeID, n int) ([]CarDTO, error) {
	cars, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	return toCarDTOs(carDomain.Suggest(cars, excludeID, n)), nil
}

// CreateCar adds a car to the catalog (admin).
func (s *CarService) CreateCar(ctx context.Context, req CarRequest) (*CarDTO, error) {
	id, err := s.repo.NextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate car ID: %w", err)
	}

	c, err := carDomain.NewCar(id, req.specs(), s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save car: %w", err)
	}

	s.logger.Info("car created", zap.Int("car_id", id), zap.String("name", c.DisplayName()))
	dto := toCarDTO(c)
	return &dto, nil
}

// UpdateCar applies a partial update to a car (admin).
func (s *CarService) UpdateCar(ctx context.Context, id int, req CarRequest) (*CarDTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Update(req.specs(), s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update car: %w", err)
	}
	dto := toCarDTO(c)
	return &dto, nil
}

// SetAvailability withdraws a car from booking or puts it back (admin).
func (s *CarService) SetAvailability(ctx context.Context, id int, available bool) (*CarDTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.SetAvailability(available, s.clock.Now())
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update car: %w", err)
	}
	dto := toCarDTO(c)
	return &dto, nil
}

// DeleteCar removes a car that has no active booking (admin).
func (s *CarService) DeleteCar(ctx context.Context, id int) error {
	bookings, err := s.bookings.FindByCarID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check car bookings: %w", err)
	}
	for _, bk := range bookings {
		if bk.Status() == bookingDomain.StatusActive {
			return domain.NewConflictError(fmt.Sprintf("car %d has an active booking", id))
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("car deleted", zap.Int("car_id", id))
	return nil
}

// findCars resolves ids against the catalog, skipping cars that no longer exist.
func (s *CarService) findCars(ctx context.Context, ids []int) ([]CarDTO, error) {
	cars, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	byID := make(map[int]*carDomain.Car, len(cars))
	for _, c := range cars {
		byID[c.ID()] = c
	}

	out := make([]CarDTO, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, toCarDTO(c))
		}
	}
	return out, nil
}

// --- Helpers ---

func toCarDTO(c *carDomain.Car) CarDTO {
	return CarDTO{
		ID:           c.ID(),
		Brand:        c.Brand(),
		Model:        c.Model(),
		Year:         c.Year(),
		Category:     string(c.Category()),
		PricePerDay:  c.PricePerDay(),
		Currency:     domain.CurrencyUSD,
		Seats:        c.Seats(),
		Transmission: string(c.Transmission()),
		FuelType:     string(c.FuelType()),
		ImageURL:     c.ImageURL(),
		Features:     c.Features(),
		Available:    c.Available(),
		Location:     c.Location(),
		UpdatedAt:    c.UpdatedAt(),
	}
}

func toCarDTOs(cars []*carDomain.Car) []CarDTO {
	dtos := make([]CarDTO, len(cars))
	for i, c := range cars {
		dtos[i] = toCarDTO(c)
	}
	return dtos
}
