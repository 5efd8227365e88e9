package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carhub/service-rental/internal/application"
	"github.com/carhub/service-rental/pkg/auth"
	"github.com/carhub/service-rental/pkg/middleware"
	"github.com/carhub/service-rental/pkg/response"
)

// InvoiceHandler serves booking invoices.
type InvoiceHandler struct {
	service *application.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(service *application.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// RegisterRoutes registers the invoice routes under the bookings prefix.
func (h *InvoiceHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	invoices := r.Group("/api/v1/bookings")
	invoices.Use(authMW)
	{
		invoices.GET("/:id/invoice", h.DownloadInvoice)
		invoices.POST("/:id/invoice/email", h.EmailInvoice)
	}
}

// DownloadInvoice handles GET /api/v1/bookings/:id/invoice.
func (h *InvoiceHandler) DownloadInvoice(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	inv, err := h.service.Generate(c.Request.Context(), userID, middleware.IsAdmin(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+inv.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", inv.PDF)
}

// EmailInvoice handles POST /api/v1/bookings/:id/invoice/email.
func (h *InvoiceHandler) EmailInvoice(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sent, err := h.service.EmailInvoice(c.Request.Context(), userID, middleware.IsAdmin(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"sent": sent})
}
