package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/carhub/service-rental/pkg/domain"
)

func TestError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.NewNotFoundError("Booking", "b1"), http.StatusNotFound},
		{"validation", domain.NewValidationError("bad"), http.StatusBadRequest},
		{"conflict", fmt.Errorf("wrapped: %w", domain.NewConflictError("stale")), http.StatusConflict},
		{"forbidden", domain.NewForbiddenError("no"), http.StatusForbidden},
		{"invalid state", domain.NewInvalidStateError("cancelled", "active"), http.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			Error(c, tt.err)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
