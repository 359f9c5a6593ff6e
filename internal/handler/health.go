package handler

import (
	"context"
	"log"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether the database answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness together with database reachability.
type HealthHandler struct {
	DB      Pinger
	Started time.Time
}

// NewHealthHandler returns a HealthHandler whose uptime starts now.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{DB: db, Started: time.Now()}
}

// Health handles GET /api/health.  It answers 503 when the database does
// not respond within two seconds.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	now := time.Now().UTC()

	if err := h.DB.PingContext(ctx); err != nil {
		log.Printf("health: database check failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status":    "unhealthy",
			"timestamp": now.Format(time.RFC3339),
			"database":  "disconnected",
			"error":     err.Error(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "healthy",
		"timestamp": now.Format(time.RFC3339),
		"database":  "connected",
		"uptime":    time.Since(h.Started).Seconds(),
		"goVersion": runtime.Version(),
	})
}
