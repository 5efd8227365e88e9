package booking

import (
	"fmt"
	"math"
	"time"
)

// PricingStrategy defines the interface for calculating rental prices.
type PricingStrategy interface {
	// Calculate returns the total price for the given parameters.
	Calculate(params PricingParams) (float64, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	PricePerDay float64
	StartDate   time.Time
	EndDate     time.Time
}

// DailyPricingStrategy charges the car's daily rate for every started day.
type DailyPricingStrategy struct{}

// NewDailyPricingStrategy creates a new DailyPricingStrategy.
func NewDailyPricingStrategy() *DailyPricingStrategy {
	return &DailyPricingStrategy{}
}

// Calculate computes days × pricePerDay, rounded to cents.
func (s *DailyPricingStrategy) Calculate(params PricingParams) (float64, error) {
	if params.PricePerDay < 0 {
		return 0, fmt.Errorf("price per day cannot be negative")
	}
	if params.EndDate.Before(params.StartDate) {
		return 0, fmt.Errorf("end date is before start date")
	}

	days := RentalDays(params.StartDate, params.EndDate)
	return math.Round(float64(days)*params.PricePerDay*100) / 100, nil
}

// RentalDays counts started 24h periods between start and end, at least one.
func RentalDays(start, end time.Time) int {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}
