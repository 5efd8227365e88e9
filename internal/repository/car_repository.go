package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	carDomain "github.com/carhub/service-rental/internal/domain/car"
	"github.com/carhub/service-rental/internal/storage"
	"github.com/carhub/service-rental/pkg/domain"
)

//go:embed seed/cars.json
var defaultCatalog []byte

// CarRecord is the stored JSON form of a car. Compare lists embed full
// records too.
type CarRecord struct {
	ID           int       `json:"id"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Category     string    `json:"category"`
	PricePerDay  float64   `json:"pricePerDay"`
	Seats        int       `json:"seats"`
	Transmission string    `json:"transmission"`
	FuelType     string    `json:"fuelType"`
	ImageURL     string    `json:"imageUrl"`
	Features     []string  `json:"features"`
	Available    bool      `json:"available"`
	Location     string    `json:"location"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// BlobCarRepository keeps the catalog in the "cars" blob. Until the first
// write the built-in catalog is served.
type BlobCarRepository struct {
	cars collection[[]CarRecord]
}

// NewBlobCarRepository creates a new BlobCarRepository.
func NewBlobCarRepository(store storage.Store, logger *zap.Logger) *BlobCarRepository {
	return &BlobCarRepository{
		cars: newCollection(store, KeyCars, seedCatalog, logger),
	}
}

// FindAll returns the catalog in stored order.
func (r *BlobCarRepository) FindAll(ctx context.Context) ([]*carDomain.Car, error) {
	records, err := r.cars.load(ctx)
	if err != nil {
		return nil, err
	}
	cars := make([]*carDomain.Car, len(records))
	for i := range records {
		cars[i] = toDomainCar(&records[i])
	}
	return cars, nil
}

// FindByID retrieves a car by its identifier.
func (r *BlobCarRepository) FindByID(ctx context.Context, id int) (*carDomain.Car, error) {
	records, err := r.cars.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return toDomainCar(&records[i]), nil
		}
	}
	return nil, domain.NewNotFoundError("Car", strconv.Itoa(id))
}

// NextID returns one more than the highest stored identifier.
func (r *BlobCarRepository) NextID(ctx context.Context) (int, error) {
	records, err := r.cars.load(ctx)
	if err != nil {
		return 0, err
	}
	highest := 0
	for _, rec := range records {
		if rec.ID > highest {
			highest = rec.ID
		}
	}
	return highest + 1, nil
}

// Save appends a new car.
func (r *BlobCarRepository) Save(ctx context.Context, c *carDomain.Car) error {
	return r.cars.update(ctx, func(records *[]CarRecord) (bool, error) {
		for _, rec := range *records {
			if rec.ID == c.ID() {
				return false, domain.NewConflictError(fmt.Sprintf("car %d already exists", c.ID()))
			}
		}
		*records = append(*records, toCarRecord(c))
		return true, nil
	})
}

// Update replaces an existing car.
func (r *BlobCarRepository) Update(ctx context.Context, c *carDomain.Car) error {
	return r.cars.update(ctx, func(records *[]CarRecord) (bool, error) {
		for i := range *records {
			if (*records)[i].ID == c.ID() {
				(*records)[i] = toCarRecord(c)
				return true, nil
			}
		}
		return false, domain.NewNotFoundError("Car", strconv.Itoa(c.ID()))
	})
}

// Delete removes a car from the catalog.
func (r *BlobCarRepository) Delete(ctx context.Context, id int) error {
	return r.cars.update(ctx, func(records *[]CarRecord) (bool, error) {
		for i := range *records {
			if (*records)[i].ID == id {
				*records = append((*records)[:i], (*records)[i+1:]...)
				return true, nil
			}
		}
		return false, domain.NewNotFoundError("Car", strconv.Itoa(id))
	})
}

func seedCatalog() []CarRecord {
	var records []CarRecord
	if err := json.Unmarshal(defaultCatalog, &records); err != nil {
		panic(fmt.Sprintf("embedded car catalog is invalid: %v", err))
	}
	return records
}

// --- Conversion Helpers ---

func toCarRecord(c *carDomain.Car) CarRecord {
	return CarRecord{
		ID:           c.ID(),
		Brand:        c.Brand(),
		Model:        c.Model(),
		Year:         c.Year(),
		Category:     string(c.Category()),
		PricePerDay:  c.PricePerDay(),
		Seats:        c.Seats(),
		Transmission: string(c.Transmission()),
		FuelType:     string(c.FuelType()),
		ImageURL:     c.ImageURL(),
		Features:     c.Features(),
		Available:    c.Available(),
		Location:     c.Location(),
		CreatedAt:    c.CreatedAt(),
		UpdatedAt:    c.UpdatedAt(),
	}
}

func toDomainCar(rec *CarRecord) *carDomain.Car {
	features := rec.Features
	if features == nil {
		features = []string{}
	}
	return carDomain.Reconstruct(
		rec.ID,
		carDomain.Specs{
			Brand:        rec.Brand,
			Model:        rec.Model,
			Year:         rec.Year,
			Category:     carDomain.Category(rec.Category),
			PricePerDay:  rec.PricePerDay,
			Seats:        rec.Seats,
			Transmission: carDomain.Transmission(rec.Transmission),
			FuelType:     carDomain.FuelType(rec.FuelType),
			ImageURL:     rec.ImageURL,
			Features:     features,
			Location:     rec.Location,
		},
		rec.Available,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
}
