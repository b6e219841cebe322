package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func() error

func (f pingerFunc) Ping() error { return f() }

func (f pingerFunc) Stats() (sql.DBStats, error) {
	return sql.DBStats{OpenConnections: 3, InUse: 1, Idle: 2}, nil
}

func serveSystem(h *SystemHandler, path string) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/system/info", h.GetSystemInfo)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("database up", func(t *testing.T) {
		w := serveSystem(NewSystemHandler(pingerFunc(func() error { return nil }), "opsease", "1.0.0"), "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, "up", data["database"])
		pool := data["connections"].(map[string]any)
		assert.EqualValues(t, 3, pool["open"])
		assert.EqualValues(t, 1, pool["inUse"])
	})

	t.Run("database down", func(t *testing.T) {
		w := serveSystem(NewSystemHandler(pingerFunc(func() error { return errors.New("connection refused") }), "opsease", "1.0.0"), "/health")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "degraded", data["status"])
		assert.Equal(t, "down", data["database"])
	})

	t.Run("no database", func(t *testing.T) {
		w := serveSystem(NewSystemHandler(nil, "opsease", "1.0.0"), "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "not_configured", decodeResponse(t, w).Data.(map[string]any)["database"])
	})
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	w := serveSystem(NewSystemHandler(nil, "opsease-ledger", "2.3.1"), "/system/info")
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "opsease-ledger", data["name"])
	assert.Equal(t, "2.3.1", data["version"])
	assert.Equal(t, runtime.Version(), data["goVersion"])
	assert.NotEmpty(t, data["uptime"])
}
