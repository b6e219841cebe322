package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/opsease/backend/internal/interfaces/http/dto"
	"github.com/opsease/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

const testUserID = "user-1"

// withUser simulates the JWT middleware for handler tests
func withUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, id)
		c.Next()
	}
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestBaseHandler_SuccessResponses(t *testing.T) {
	h := &BaseHandler{}

	c, w := newTestContext()
	h.Success(c, map[string]string{"key": "value"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)

	c, w = newTestContext()
	h.SuccessWithMeta(c, []string{"a", "b"}, 100, 1, 10)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(100), resp.Meta.Total)
	assert.Equal(t, 10, resp.Meta.TotalPages)

	c, w = newTestContext()
	h.Created(c, map[string]string{"id": "123"})
	assert.Equal(t, http.StatusCreated, w.Code)

	router := gin.New()
	router.DELETE("/test", h.NoContent)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/test", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
		message      string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "Resource not found"},
		{"already exists", shared.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS", "Resource already exists"},
		{"invalid input", shared.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT", "Invalid input provided"},
		{"unauthorized", shared.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "Not authorized to perform this action"},
		{"invalid state", shared.ErrInvalidState, http.StatusUnprocessableEntity, "INVALID_STATE", "Operation not allowed in current state"},
		{"concurrency", shared.ErrConcurrencyConflict, http.StatusConflict, "CONCURRENCY_CONFLICT", "Resource was modified by another process"},
		{"unavailable", shared.ErrUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service is not available"},
		{"domain validation code", shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive"), http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be positive"},
		{"wrapped domain error", fmt.Errorf("saving: %w", shared.NewDomainError("NOT_FOUND", "Invoice not found")), http.StatusNotFound, "NOT_FOUND", "Invoice not found"},
		{"infrastructure error", fmt.Errorf("failed to load ledger entries: %w", assert.AnError), http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()
			c.Set(middleware.RequestIDKey, "req-123")

			(&BaseHandler{}).HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
			assert.Equal(t, "req-123", resp.Error.RequestID)
		})
	}

	t.Run("nil is a no-op", func(t *testing.T) {
		c, w := newTestContext()
		(&BaseHandler{}).HandleError(c, nil)
		assert.Empty(t, w.Body.Bytes())
	})
}

func TestBaseHandler_RequireUserAndPathID(t *testing.T) {
	h := &BaseHandler{}
	router := gin.New()
	router.GET("/open/:id", func(c *gin.Context) {
		if _, ok := h.requireUser(c); !ok {
			return
		}
		c.Status(http.StatusOK)
	})
	router.GET("/items/:id", withUser(testUserID), func(c *gin.Context) {
		if _, ok := h.pathID(c, "item"); !ok {
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open/1", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid item ID format", decodeResponse(t, w).Error.Message)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/6f1c2a9e-8f0e-4e38-9d8f-9b2a3c4d5e6f", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
