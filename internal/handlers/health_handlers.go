package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/disparabot/admin/internal/caching"
)

// HealthHandlers answers the probes. Redis is the only hard local dependency;
// the upstream API is probed lazily by real traffic.
type HealthHandlers struct {
	cache caching.CacheService
}

func NewHealthHandlers(cache caching.CacheService) *HealthHandlers {
	return &HealthHandlers{cache: cache}
}

// Health is the liveness probe: the process answers, it is alive.
func (h *HealthHandlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready additionally checks the Redis connection, since sessions and flashes
// cannot work without it.
func (h *HealthHandlers) Ready(c echo.Context) error {
	if err := h.cache.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"redis":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
