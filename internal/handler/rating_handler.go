package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carhub/service-rental/internal/application"
	"github.com/carhub/service-rental/pkg/auth"
	"github.com/carhub/service-rental/pkg/middleware"
	"github.com/carhub/service-rental/pkg/response"
)

// RatingHandler handles HTTP requests for car ratings.
type RatingHandler struct {
	service *application.RatingService
}

// NewRatingHandler creates a new RatingHandler.
func NewRatingHandler(service *application.RatingService) *RatingHandler {
	return &RatingHandler{service: service}
}

// RegisterRoutes registers all rating routes.
func (h *RatingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	ratings := r.Group("/api/v1/ratings")
	ratings.Use(authMW)
	{
		ratings.POST("", middleware.RequireRole(auth.RoleCustomer), h.AddRating)
		ratings.GET("/bookings/:id", h.HasRatedBooking)
	}
}

// AddRating handles POST /api/v1/ratings.
func (h *RatingHandler) AddRating(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.AddRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AddRating(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// HasRatedBooking handles GET /api/v1/ratings/bookings/:id.
func (h *RatingHandler) HasRatedBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rated, err := h.service.HasRatedBooking(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"rated": rated})
}
