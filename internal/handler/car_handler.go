package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/carhub/service-rental/internal/application"
	carDomain "github.com/carhub/service-rental/internal/domain/car"
	"github.com/carhub/service-rental/pkg/response"
)

const defaultSuggestions = 3

// CarHandler serves the public car catalog.
type CarHandler struct {
	cars    *application.CarService
	ratings *application.RatingService
}

// NewCarHandler creates a new CarHandler.
func NewCarHandler(cars *application.CarService, ratings *application.RatingService) *CarHandler {
	return &CarHandler{cars: cars, ratings: ratings}
}

// RegisterRoutes registers the catalog routes. They need no authentication.
func (h *CarHandler) RegisterRoutes(r *gin.RouterGroup) {
	cars := r.Group("/api/v1/cars")
	{
		cars.GET("", h.ListCars)
		cars.GET("/:id", h.GetCar)
		cars.GET("/:id/suggestions", h.Suggestions)
		cars.GET("/:id/ratings", h.CarRatings)
	}
}

// ListCars handles GET /api/v1/cars.
func (h *CarHandler) ListCars(c *gin.Context) {
	filter, ok := parseCarFilter(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	cars, total, err := h.cars.ListCars(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, cars, total, page, limit)
}

// GetCar handles GET /api/v1/cars/:id.
func (h *CarHandler) GetCar(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	result, err := h.cars.GetCar(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Suggestions handles GET /api/v1/cars/:id/suggestions?n=3.
func (h *CarHandler) Suggestions(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	n, err := strconv.Atoi(c.DefaultQuery("n", strconv.Itoa(defaultSuggestions)))
	if err != nil || n < 1 || n > 10 {
		response.BadRequest(c, "n must be between 1 and 10")
		return
	}

	result, err := h.cars.SuggestRandom(c.Request.Context(), id, n)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CarRatings handles GET /api/v1/cars/:id/ratings.
func (h *CarHandler) CarRatings(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	result, err := h.ratings.GetCarRatings(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func parseCarFilter(c *gin.Context) (carDomain.Filter, bool) {
	f := carDomain.Filter{
		Category:     carDomain.Category(c.Query("category")),
		Transmission: carDomain.Transmission(c.Query("transmission")),
		FuelType:     carDomain.FuelType(c.Query("fuel_type")),
		Search:       c.Query("q"),
		Sort:         carDomain.SortOrder(c.Query("sort")),
	}

	switch {
	case f.Category != "" && !f.Category.IsValid():
		response.BadRequest(c, "invalid category")
		return f, false
	case f.Transmission != "" && !f.Transmission.IsValid():
		response.BadRequest(c, "invalid transmission")
		return f, false
	case f.FuelType != "" && !f.FuelType.IsValid():
		response.BadRequest(c, "invalid fuel_type")
		return f, false
	}

	switch f.Sort {
	case carDomain.SortDefault, carDomain.SortPriceAsc, carDomain.SortPriceDesc, carDomain.SortYearDesc:
	default:
		response.BadRequest(c, "invalid sort")
		return f, false
	}

	if v := c.Query("max_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || p < 0 {
			response.BadRequest(c, "invalid max_price")
			return f, false
		}
		f.MaxPrice = p
	}
	if v := c.Query("seats"); v != "" {
		s, err := strconv.Atoi(v)
		if err != nil || s < 0 {
			response.BadRequest(c, "invalid seats")
			return f, false
		}
		f.MinSeats = s
	}
	f.AvailableOnly, _ = strconv.ParseBool(c.Query("available"))

	return f, true
}
