package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carhub/service-rental/pkg/domain"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    *meta       `json:"meta,omitempty"`
}

type meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Success writes a 200 response wrapping data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 response wrapping data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, envelope{
		Success: true,
		Data:    items,
		Meta:    &meta{Total: total, Page: page, Limit: limit, TotalPages: totalPages},
	})
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, envelope{Error: message})
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Error: message})
}

// Forbidden writes a 403 response.
func Forbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, envelope{Error: message})
}

// Error maps a domain error to its HTTP status and writes it.
func Error(c *gin.Context, err error) {
	var (
		notFound     *domain.NotFoundError
		validation   *domain.ValidationError
		conflict     *domain.ConflictError
		forbidden    *domain.ForbiddenError
		invalidState *domain.InvalidStateError
	)

	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.As(err, &notFound):
		status, message = http.StatusNotFound, notFound.Error()
	case errors.As(err, &validation):
		status, message = http.StatusBadRequest, validation.Error()
	case errors.As(err, &conflict):
		status, message = http.StatusConflict, conflict.Error()
	case errors.As(err, &forbidden):
		status, message = http.StatusForbidden, forbidden.Error()
	case errors.As(err, &invalidState):
		status, message = http.StatusUnprocessableEntity, invalidState.Error()
	default:
		_ = c.Error(err)
	}

	c.AbortWithStatusJSON(status, envelope{Error: message})
}
