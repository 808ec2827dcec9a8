package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobscribe/internal/logging"
	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

// Version is reported by the health endpoints; overridden at build time
var Version = "dev"

var startTime = time.Now()

// HealthHandler reports liveness plus whether a batch is running
func HealthHandler(ctrl BatchController) echo.HandlerFunc {
	return func(c echo.Context) error {
		logging.GetGlobalLogger().Debug("Health check requested", map[string]interface{}{
			"request_id": requestID(c),
		})

		checks := map[string]string{
			"api":     "ok",
			"batches": "idle",
		}
		status := "healthy"

		if !ctrl.IsHealthy() {
			checks["batches"] = "stopped"
			status = "degraded"
		} else if id, ok := ctrl.Running(); ok {
			checks["batches"] = "running " + id
		}

		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   Version,
			Uptime:    utils.FormatDuration(time.Since(startTime)),
			Checks:    checks,
			Hosts:     ctrl.HostStats(),
		})
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    utils.FormatDuration(time.Since(startTime)),
	})
}
