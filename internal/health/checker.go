package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

type DatabasePinger interface {
	PingDatabase() error
	PingRedis() error
}

type IndexCounter interface {
	Count() (uint64, error)
}

type ConfiguredChecker interface {
	IsConfigured() bool
}

type HealthCache interface {
	CacheSystemHealth(ctx context.Context, health map[string]string, expiration time.Duration) error
}

// HealthChecker manages health checks for all services
type HealthChecker struct {
	db         DatabasePinger
	index      IndexCounter
	embeddings ConfiguredChecker
	cache      HealthCache
	healthRepo models.SystemHealthRepository
	logger     *logrus.Logger
}

// NewHealthChecker wires the dependencies to probe. cache and healthRepo may
// be nil.
func NewHealthChecker(db DatabasePinger, index IndexCounter, embeddings ConfiguredChecker, cache HealthCache, healthRepo models.SystemHealthRepository, logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		db:         db,
		index:      index,
		embeddings: embeddings,
		cache:      cache,
		healthRepo: healthRepo,
		logger:     logger,
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

var errEmbeddingsDisabled = errors.New("OPENAI_API_KEY not set, semantic search uses text ranking only")

// CheckPostgreSQL checks PostgreSQL database health
func (h *HealthChecker) CheckPostgreSQL() ServiceHealth {
	return h.probe("postgresql", StatusUnhealthy, h.db.PingDatabase)
}

// CheckRedis reports degraded rather than unhealthy; search works without cache.
func (h *HealthChecker) CheckRedis() ServiceHealth {
	return h.probe("redis", StatusDegraded, h.db.PingRedis)
}

// CheckFacetIndex fails when the index cannot be read or holds no profiles.
func (h *HealthChecker) CheckFacetIndex() ServiceHealth {
	return h.probe("facet_index", StatusDegraded, func() error {
		count, err := h.index.Count()
		if err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("facet index is empty")
		}
		return nil
	})
}

func (h *HealthChecker) CheckEmbeddings() ServiceHealth {
	return h.probe("embeddings", StatusDegraded, func() error {
		if h.embeddings == nil || !h.embeddings.IsConfigured() {
			return errEmbeddingsDisabled
		}
		return nil
	})
}

func (h *HealthChecker) probe(name, failedStatus string, check func() error) ServiceHealth {
	start := time.Now()
	err := check()
	responseTime := int(time.Since(start).Milliseconds())

	status := StatusHealthy
	errorMsg := ""
	if err != nil {
		status = failedStatus
		errorMsg = err.Error()
		h.logger.WithFields(logrus.Fields{
			"service": name,
			"status":  status,
		}).WithError(err).Warn("Health check failed")
	}

	if h.healthRepo != nil {
		if err := h.healthRepo.UpdateServiceHealth(name, status, responseTime, errorMsg); err != nil {
			h.logger.WithError(err).Debug("Failed to record service health")
		}
	}

	return ServiceHealth{
		Name:         name,
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckAll performs health checks on all services
func (h *HealthChecker) CheckAll() OverallHealth {
	services := []ServiceHealth{
		h.CheckPostgreSQL(),
		h.CheckRedis(),
		h.CheckFacetIndex(),
		h.CheckEmbeddings(),
	}

	return OverallHealth{
		Status:   Overall(services),
		Services: services,
		Uptime:   h.getUptime(),
	}
}

// Overall is the worst status among services.
func Overall(services []ServiceHealth) string {
	overallStatus := StatusHealthy
	for _, service := range services {
		if service.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
		if service.Status == StatusDegraded {
			overallStatus = StatusDegraded
		}
	}
	return overallStatus
}

var startTime = time.Now()

func (h *HealthChecker) getUptime() string {
	return time.Since(startTime).Round(time.Second).String()
}

// PeriodicHealthCheck runs health checks periodically
func (h *HealthChecker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			health := h.CheckAll()

			if h.cache != nil {
				statuses := make(map[string]string, len(health.Services))
				for _, service := range health.Services {
					statuses[service.Name] = service.Status
				}
				cacheCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				if err := h.cache.CacheSystemHealth(cacheCtx, statuses, 2*interval); err != nil {
					h.logger.WithError(err).Error("Failed to cache health status")
				}
				cancel()
			}

			h.logger.WithField("status", health.Status).Debug("Periodic health check completed")
		}
	}
}
