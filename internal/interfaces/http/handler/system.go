package handler

import (
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opsease/backend/internal/infrastructure/logger"
	"github.com/opsease/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// DBPinger reports whether the database answers and how its pool is used
type DBPinger interface {
	Ping() error
	Stats() (sql.DBStats, error)
}

// SystemHandler serves the unauthenticated health and info endpoints
type SystemHandler struct {
	BaseHandler
	db        DBPinger
	name      string
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. db may be nil, in which
// case the health check reports the database as not configured.
func NewSystemHandler(db DBPinger, name, version string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		name:      name,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check result
// @name HandlerHealthResponse
type HealthResponse struct {
	Status      string     `json:"status" example:"ok"`
	Database    string     `json:"database" example:"up"`
	Connections *PoolStats `json:"connections,omitempty"`
	Uptime      string     `json:"uptime" example:"1h30m45s"`
}

// PoolStats is the database connection pool at the time of the check
type PoolStats struct {
	Open      int   `json:"open" example:"4"`
	InUse     int   `json:"inUse" example:"1"`
	Idle      int   `json:"idle" example:"3"`
	WaitCount int64 `json:"waitCount" example:"0"`
}

// Health godoc
// @ID           health
// @Summary      Health check
// @Description  Pings the database. Returns 503 when it does not answer.
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthResponse]
// @Failure      503 {object} APIResponse[HealthResponse]
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "up",
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
	}

	switch {
	case h.db == nil:
		resp.Database = "not_configured"
	default:
		if err := h.db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("health check: database ping failed", zap.Error(err))
			resp.Status = "degraded"
			resp.Database = "down"
			c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
			return
		}
		if st, err := h.db.Stats(); err == nil {
			resp.Connections = &PoolStats{Open: st.OpenConnections, InUse: st.InUse, Idle: st.Idle, WaitCount: st.WaitCount}
		}
	}

	h.Success(c, resp)
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"opsease-ledger"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"goVersion" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Description  Returns the service name, version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
