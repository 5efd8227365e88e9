package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/carhub/service-rental/internal/application"
	"github.com/carhub/service-rental/pkg/auth"
	"github.com/carhub/service-rental/pkg/middleware"
	"github.com/carhub/service-rental/pkg/response"
)

// AdminHandler handles admin HTTP requests for booking and fleet management.
type AdminHandler struct {
	bookings *application.BookingService
	cars     *application.CarService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, cars *application.CarService) *AdminHandler {
	return &AdminHandler{bookings: bookings, cars: cars}
}

type availabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.POST("/cars", h.CreateCar)
		admin.PUT("/cars/:id", h.UpdateCar)
		admin.PATCH("/cars/:id/availability", h.SetAvailability)
		admin.DELETE("/cars/:id", h.DeleteCar)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	bookings, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// CreateCar handles POST /api/v1/admin/cars.
func (h *AdminHandler) CreateCar(c *gin.Context) {
	var req application.CarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.cars.CreateCar(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateCar handles PUT /api/v1/admin/cars/:id. Zero fields are left unchanged.
func (h *AdminHandler) UpdateCar(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	var req application.CarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.cars.UpdateCar(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SetAvailability handles PATCH /api/v1/admin/cars/:id/availability.
func (h *AdminHandler) SetAvailability(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.cars.SetAvailability(c.Request.Context(), id, *req.Available)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteCar handles DELETE /api/v1/admin/cars/:id.
func (h *AdminHandler) DeleteCar(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	if err := h.cars.DeleteCar(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
