package car

import (
	"fmt"
	"strings"
	"time"

	"github.com/carhub/service-rental/pkg/domain"
)

// Category groups cars for catalog filtering.
type Category string

const (
	CategoryEconomy Category = "economy"
	CategoryCompact Category = "compact"
	CategorySUV     Category = "suv"
	CategoryLuxury  Category = "luxury"
	CategoryVan     Category = "van"
)

// IsValid returns true if the category is recognized.
func (c Category) IsValid() bool {
	switch c {
	case CategoryEconomy, CategoryCompact, CategorySUV, CategoryLuxury, CategoryVan:
		return true
	}
	return false
}

// Transmission is the gearbox type.
type Transmission string

const (
	TransmissionAutomatic Transmission = "automatic"
	TransmissionManual    Transmission = "manual"
)

// IsValid returns true if the transmission is recognized.
func (t Transmission) IsValid() bool {
	return t == TransmissionAutomatic || t == TransmissionManual
}

// FuelType is the energy source of the car.
type FuelType string

const (
	FuelPetrol   FuelType = "petrol"
	FuelDiesel   FuelType = "diesel"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
)

// IsValid returns true if the fuel type is recognized.
func (f FuelType) IsValid() bool {
	switch f {
	case FuelPetrol, FuelDiesel, FuelElectric, FuelHybrid:
		return true
	}
	return false
}

// Specs groups the descriptive attributes of a car.
type Specs struct {
	Brand        string
	Model        string
	Year         int
	Category     Category
	PricePerDay  float64
	Seats        int
	Transmission Transmission
	FuelType     FuelType
	ImageURL     string
	Features     []string
	Location     string
}

// Validate checks the specs a catalog entry must satisfy. Model years up to
// one past now's year are accepted.
func (s Specs) Validate(now time.Time) error {
	if strings.TrimSpace(s.Brand) == "" {
		return domain.NewValidationError("brand is required")
	}
	if strings.TrimSpace(s.Model) == "" {
		return domain.NewValidationError("model is required")
	}
	if s.Year < 1950 || s.Year > now.Year()+1 {
		return domain.NewValidationError(fmt.Sprintf("invalid year: %d", s.Year))
	}
	if !s.Category.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid category: %s", s.Category))
	}
	if s.PricePerDay <= 0 {
		return domain.NewValidationError("price per day must be positive")
	}
	if s.Seats < 1 || s.Seats > 12 {
		return domain.NewValidationError(fmt.Sprintf("invalid seat count: %d", s.Seats))
	}
	if !s.Transmission.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid transmission: %s", s.Transmission))
	}
	if !s.FuelType.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid fuel type: %s", s.FuelType))
	}
	return nil
}

// Car is the aggregate root for a catalog entry.
type Car struct {
	id        int
	specs     Specs
	available bool
	createdAt time.Time
	updatedAt time.Time
}

// NewCar creates an available car with validated specs. IDs are assigned by
// the repository, so id is passed in.
func NewCar(id int, specs Specs, now time.Time) (*Car, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("car ID must be positive")
	}
	if err := specs.Validate(now); err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Car{
		id:        id,
		specs:     normalize(specs),
		available: true,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Car from persistence data (no validation).
func Reconstruct(id int, specs Specs, available bool, createdAt, updatedAt time.Time) *Car {
	return &Car{
		id:        id,
		specs:     specs,
		available: available,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

func (c *Car) ID() int                    { return c.id }
func (c *Car) Brand() string              { return c.specs.Brand }
func (c *Car) Model() string              { return c.specs.Model }
func (c *Car) Year() int                  { return c.specs.Year }
func (c *Car) Category() Category         { return c.specs.Category }
func (c *Car) PricePerDay() float64       { return c.specs.PricePerDay }
func (c *Car) Seats() int                 { return c.specs.Seats }
func (c *Car) Transmission() Transmission { return c.specs.Transmission }
func (c *Car) FuelType() FuelType         { return c.specs.FuelType }
func (c *Car) ImageURL() string           { return c.specs.ImageURL }
func (c *Car) Location() string           { return c.specs.Location }
func (c *Car) Available() bool            { return c.available }
func (c *Car) CreatedAt() time.Time       { return c.createdAt }
func (c *Car) UpdatedAt() time.Time       { return c.updatedAt }

// Features returns a copy of the feature list.
func (c *Car) Features() []string {
	out := make([]string, len(c.specs.Features))
	copy(out, c.specs.Features)
	return out
}

// Specs returns a copy of the descriptive attributes.
func (c *Car) Specs() Specs {
	s := c.specs
	s.Features = c.Features()
	return s
}

// DisplayName returns "Brand Model Year".
func (c *Car) DisplayName() string {
	return fmt.Sprintf("%s %s %d", c.specs.Brand, c.specs.Model, c.specs.Year)
}

// --- Behavior ---

// Update applies partial updates; zero values keep the current attribute.
// The merged result must still validate.
func (c *Car) Update(patch Specs, now time.Time) error {
	merged := c.specs
	if patch.Brand != "" {
		merged.Brand = patch.Brand
	}
	if patch.Model != "" {
		merged.Model = patch.Model
	}
	if patch.Year != 0 {
		merged.Year = patch.Year
	}
	if patch.Category != "" {
		merged.Category = patch.Category
	}
	if patch.PricePerDay != 0 {
		merged.PricePerDay = patch.PricePerDay
	}
	if patch.Seats != 0 {
		merged.Seats = patch.Seats
	}
	if patch.Transmission != "" {
		merged.Transmission = patch.Transmission
	}
	if patch.FuelType != "" {
		merged.FuelType = patch.FuelType
	}
	if patch.ImageURL != "" {
		merged.ImageURL = patch.ImageURL
	}
	if patch.Features != nil {
		merged.Features = patch.Features
	}
	if patch.Location != "" {
		merged.Location = patch.Location
	}

	if err := merged.Validate(now); err != nil {
		return err
	}
	c.specs = normalize(merged)
	c.updatedAt = now.UTC()
	return nil
}

// SetAvailability marks the car bookable or withdrawn from the catalog.
func (c *Car) SetAvailability(available bool, now time.Time) {
	c.available = available
	c.updatedAt = now.UTC()
}

func normalize(s Specs) Specs {
	s.Brand = strings.TrimSpace(s.Brand)
	s.Model = strings.TrimSpace(s.Model)
	if s.Features == nil {
		s.Features = []string{}
	} else {
		features := make([]string, len(s.Features))
		copy(features, s.Features)
		s.Features = features
	}
	return s
}
