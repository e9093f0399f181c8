package handlers

import (
	"net/http"
	"time"

	"github.com/Ayash-Bera/hirescout/backend/internal/health"
	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/gin-gonic/gin"
)

type HealthReporter interface {
	CheckAll() health.OverallHealth
}

type HealthHandler struct {
	checker HealthReporter
	service string
}

func NewHealthHandler(checker HealthReporter, service string) *HealthHandler {
	return &HealthHandler{checker: checker, service: service}
}

// HandleHealth answers 503 only when a required dependency is unhealthy;
// degraded services still serve searches.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	overall := h.checker.CheckAll()

	services := make(map[string]string, len(overall.Services))
	for _, s := range overall.Services {
		services[s.Name] = s.Status
	}

	code := http.StatusOK
	if overall.Status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, models.HealthResponse{
		Status:    overall.Status,
		Service:   h.service,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
	})
}

// HandleDetailedHealth returns per-service timings and errors.
func (h *HealthHandler) HandleDetailedHealth(c *gin.Context) {
	overall := h.checker.CheckAll()

	code := http.StatusOK
	if overall.Status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, overall)
}
