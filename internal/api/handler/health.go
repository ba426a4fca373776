package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verustcode/reportforge/consts"
	"github.com/verustcode/reportforge/pkg/logger"
)

// HealthHandler reports liveness and archive availability
type HealthHandler struct {
	// checkDB pings the archive; nil when the archive is disabled
	checkDB func() error
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checkDB func() error) *HealthHandler {
	return &HealthHandler{checkDB: checkDB}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":  "ok",
		"version": consts.Version,
		"uptime":  consts.GetUptime().Round(time.Second).String(),
	}

	if h.checkDB == nil {
		body["database"] = "disabled"
		c.JSON(http.StatusOK, body)
		return
	}

	if err := h.checkDB(); err != nil {
		logger.Warn("Health check failed", zap.Error(err))
		body["status"] = "degraded"
		body["database"] = "unavailable"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	body["database"] = "ok"
	c.JSON(http.StatusOK, body)
}
