package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"jobscribe/internal/api/handlers"
	"jobscribe/internal/api/middleware"
	"jobscribe/internal/config"
)

// SetupRoutes configures all control panel routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, ctrl handlers.BatchController) {
	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig(cfg.Server.AllowedOrigins))
	e.Use(middleware.RequestValidation(cfg.Server.MaxBodyBytes))
	e.Use(middleware.TimeoutConfig(cfg.Server.RequestTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler(ctrl))
		health.GET("/live", handlers.LivenessHandler)
	}

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		batches := v1.Group("/batches")
		{
			batches.POST("", handlers.StartBatchHandler(ctrl))
			batches.GET("", handlers.ListBatchesHandler(ctrl))
			batches.GET("/:id", handlers.GetBatchHandler(ctrl))
			batches.POST("/:id/stop", handlers.StopBatchHandler(ctrl))
			batches.DELETE("/:id/logs", handlers.ClearBatchLogsHandler(ctrl))
		}
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "jobscribe control panel",
			"version": handlers.Version,
			"status":  "running",
		})
	})
}
