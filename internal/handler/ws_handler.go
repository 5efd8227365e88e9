package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carhub/service-rental/internal/realtime"
	"github.com/carhub/service-rental/pkg/auth"
	"github.com/carhub/service-rental/pkg/middleware"
)

// WSHandler upgrades authenticated dashboards to a websocket for push notifications.
type WSHandler struct {
	hub    *realtime.Hub
	logger *zap.Logger
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *realtime.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

// RegisterRoutes registers GET /ws. Browsers pass the token as ?token=.
func (h *WSHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	r.GET("/ws", middleware.AuthMiddleware(jwtManager), h.Connect)
}

// Connect handles GET /ws.
func (h *WSHandler) Connect(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	// The upgrader has already written an HTTP error on failure.
	if err := h.hub.Serve(c.Writer, c.Request, userID); err != nil {
		h.logger.Debug("websocket upgrade failed", zap.String("user_id", userID), zap.Error(err))
	}
}
