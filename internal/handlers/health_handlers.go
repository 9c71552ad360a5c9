package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"acta/internal/caching"
	"acta/internal/storage"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 3 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and readiness endpoints
type HealthHandlers struct {
	db      Pinger
	cache   caching.CacheService
	store   storage.ObjectStore
	version string
	started time.Time
}

func NewHealthHandlers(db Pinger, cache caching.CacheService, store storage.ObjectStore, version string) *HealthHandlers {
	return &HealthHandlers{
		db:      db,
		cache:   cache,
		store:   store,
		version: version,
		started: time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

// HealthCheck reports every dependency. A failing dependency degrades the
// status but the process is still considered alive.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	health, healthy := h.check(c.Request().Context())

	statusCode := http.StatusOK
	if !healthy {
		statusCode = http.StatusPartialContent
	}
	return c.JSON(statusCode, health)
}

// ReadinessCheck answers 503 until every dependency responds.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	health, healthy := h.check(c.Request().Context())
	if !healthy {
		health.Status = "not_ready"
		return c.JSON(http.StatusServiceUnavailable, health)
	}
	health.Status = "ready"
	return c.JSON(http.StatusOK, health)
}

func (h *HealthHandlers) check(ctx context.Context) (*HealthStatus, bool) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string, 3),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Version:   h.version,
	}

	checks := map[string]func(context.Context) error{
		"database": h.db.Ping,
		"redis":    h.cache.Ping,
		"storage":  h.checkStorage,
	}
	healthy := true
	for name, check := range checks {
		if err := check(ctx); err != nil {
			health.Services[name] = "unhealthy"
			healthy = false
			continue
		}
		health.Services[name] = "healthy"
	}
	if !healthy {
		health.Status = "degraded"
	}
	return health, healthy
}

func (h *HealthHandlers) checkStorage(ctx context.Context) error {
	ok, err := h.store.BucketExists(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket missing")
	}
	return nil
}
