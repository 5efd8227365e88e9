package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carhub/service-rental/internal/application"
	"github.com/carhub/service-rental/pkg/auth"
	"github.com/carhub/service-rental/pkg/middleware"
	"github.com/carhub/service-rental/pkg/response"
)

// AccountHandler handles the per-user state: favorites, compare list,
// preferences and the dashboard.
type AccountHandler struct {
	favorites   *application.FavoriteService
	compare     *application.CompareService
	preferences *application.PreferenceService
	dashboard   *application.DashboardService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(
	favorites *application.FavoriteService,
	compare *application.CompareService,
	preferences *application.PreferenceService,
	dashboard *application.DashboardService,
) *AccountHandler {
	return &AccountHandler{
		favorites:   favorites,
		compare:     compare,
		preferences: preferences,
		dashboard:   dashboard,
	}
}

// RegisterRoutes registers all account routes.
func (h *AccountHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	favorites := r.Group("/api/v1/favorites")
	favorites.Use(authMW)
	{
		favorites.GET("", h.ListFavorites)
		favorites.GET("/ids", h.FavoriteIDs)
		favorites.POST("/:carId", h.AddFavorite)
		favorites.DELETE("/:carId", h.RemoveFavorite)
	}

	compare := r.Group("/api/v1/compare")
	compare.Use(authMW)
	{
		compare.GET("", h.CompareList)
		compare.POST("/:carId", h.AddToCompare)
		compare.DELETE("/:carId", h.RemoveFromCompare)
		compare.DELETE("", h.ClearCompare)
	}

	prefs := r.Group("/api/v1/preferences")
	prefs.Use(authMW)
	{
		prefs.GET("", h.GetPreferences)
		prefs.PATCH("", h.UpdatePreferences)
		prefs.POST("/banners/:id/dismiss", h.DismissBanner)
		prefs.DELETE("/banners", h.ResetBanners)
	}

	r.GET("/api/v1/dashboard", authMW, h.Dashboard)
}

// ListFavorites handles GET /api/v1/favorites.
func (h *AccountHandler) ListFavorites(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.favorites.FavoriteCars(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// FavoriteIDs handles GET /api/v1/favorites/ids.
func (h *AccountHandler) FavoriteIDs(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ids, err := h.favorites.GetFavoriteIDs(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, ids)
}

// AddFavorite handles POST /api/v1/favorites/:carId.
func (h *AccountHandler) AddFavorite(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	carID, ok := parseIntParam(c, "carId")
	if !ok {
		return
	}

	added, err := h.favorites.AddToFavorites(c.Request.Context(), userID, carID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"added": added})
}

// RemoveFavorite handles DELETE /api/v1/favorites/:carId.
func (h *AccountHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	carID, ok := parseIntParam(c, "carId")
	if !ok {
		return
	}

	removed, err := h.favorites.RemoveFromFavorites(c.Request.Context(), userID, carID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"removed": removed})
}

// CompareList handles GET /api/v1/compare.
func (h *AccountHandler) CompareList(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.compare.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AddToCompare handles POST /api/v1/compare/:carId.
func (h *AccountHandler) AddToCompare(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	carID, ok := parseIntParam(c, "carId")
	if !ok {
		return
	}

	result, err := h.compare.Add(c.Request.Context(), userID, carID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RemoveFromCompare handles DELETE /api/v1/compare/:carId.
func (h *AccountHandler) RemoveFromCompare(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	carID, ok := parseIntParam(c, "carId")
	if !ok {
		return
	}

	removed, err := h.compare.Remove(c.Request.Context(), userID, carID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"removed": removed})
}

// ClearCompare handles DELETE /api/v1/compare.
func (h *AccountHandler) ClearCompare(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.compare.Clear(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, []application.CarDTO{})
}

// GetPreferences handles GET /api/v1/preferences.
func (h *AccountHandler) GetPreferences(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.preferences.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdatePreferences handles PATCH /api/v1/preferences.
func (h *AccountHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.preferences.Update(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DismissBanner handles POST /api/v1/preferences/banners/:id/dismiss.
func (h *AccountHandler) DismissBanner(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	dismissed, err := h.preferences.DismissBanner(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"dismissed": dismissed})
}

// ResetBanners handles DELETE /api/v1/preferences/banners.
func (h *AccountHandler) ResetBanners(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.preferences.ResetBanners(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"reset": true})
}

// Dashboard handles GET /api/v1/dashboard.
func (h *AccountHandler) Dashboard(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.dashboard.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
