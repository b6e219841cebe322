package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/opsease/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
)

func swaggerRouter(cfg config.SwaggerConfig, jwt gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return router
}

func swaggerRequest(router http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		w := swaggerRequest(swaggerRouter(config.SwaggerConfig{Enabled: false}, nil), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)
	})

	t.Run("enabled without restrictions", func(t *testing.T) {
		w := swaggerRequest(swaggerRouter(config.SwaggerConfig{Enabled: true}, nil), "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	allowList := config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8", "192.168.1.100", "bogus", "::1"}}
	tests := []struct {
		remote string
		code   int
	}{
		{"10.20.30.40:5555", http.StatusOK},
		{"192.168.1.100:80", http.StatusOK},
		{"192.168.1.101:80", http.StatusForbidden},
		{"[::1]:8080", http.StatusOK},
		{"203.0.113.9:443", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run("allow list "+tt.remote, func(t *testing.T) {
			w := swaggerRequest(swaggerRouter(allowList, nil), tt.remote)
			assert.Equal(t, tt.code, w.Code)
		})
	}

	t.Run("require auth delegates to jwt middleware", func(t *testing.T) {
		deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
		w := swaggerRequest(swaggerRouter(config.SwaggerConfig{Enabled: true, RequireAuth: true}, deny), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		allow := func(c *gin.Context) {}
		w = swaggerRequest(swaggerRouter(config.SwaggerConfig{Enabled: true, RequireAuth: true}, allow), "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestParseAllowList(t *testing.T) {
	prefixes := parseAllowList([]string{" 172.16.0.0/12 ", "::ffff:10.1.1.1", "nope", "300.1.1.1"})
	assert.Len(t, prefixes, 2)
	assert.True(t, ipAllowed("172.20.1.1", prefixes))
	assert.True(t, ipAllowed("10.1.1.1", prefixes))
	assert.False(t, ipAllowed("not-an-ip", prefixes))
}
