package car

import (
	"sort"
	"strings"
)

// SortOrder selects the catalog ordering.
type SortOrder string

const (
	SortDefault   SortOrder = ""
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortYearDesc  SortOrder = "year_desc"
)

// Filter narrows the catalog. Zero values do not filter.
type Filter struct {
	Category      Category
	Transmission  Transmission
	FuelType      FuelType
	MaxPrice      float64
	MinSeats      int
	AvailableOnly bool
	Search        string
	Sort          SortOrder
}

// Matches reports whether c satisfies every set criterion.
func (f Filter) Matches(c *Car) bool {
	if f.Category != "" && c.specs.Category != f.Category {
		return false
	}
	if f.Transmission != "" && c.specs.Transmission != f.Transmission {
		return false
	}
	if f.FuelType != "" && c.specs.FuelType != f.FuelType {
		return false
	}
	if f.MaxPrice > 0 && c.specs.PricePerDay > f.MaxPrice {
		return false
	}
	if f.MinSeats > 0 && c.specs.Seats < f.MinSeats {
		return false
	}
	if f.AvailableOnly && !c.available {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		haystack := strings.ToLower(c.specs.Brand + " " + c.specs.Model + " " + c.specs.Location)
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

// Apply filters cars and sorts the result. The input slice is not modified.
func (f Filter) Apply(cars []*Car) []*Car {
	out := make([]*Car, 0, len(cars))
	for _, c := range cars {
		if f.Matches(c) {
			out = append(out, c)
		}
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].specs.PricePerDay < out[j].specs.PricePerDay })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].specs.PricePerDay > out[j].specs.PricePerDay })
	case SortYearDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].specs.Year > out[j].specs.Year })
	}
	return out
}
