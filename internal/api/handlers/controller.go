package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobscribe/internal/background"
	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

// BatchController is the part of the batch manager the control panel drives
type BatchController interface {
	StartBatch(urls []string, opts models.BatchOptions) (string, error)
	Stop(id string) error
	Status(id string) (models.BatchSnapshot, error)
	List() []models.BatchSnapshot
	ClearLogs(id string) error
	Running() (string, bool)
	IsHealthy() bool
	HostStats() map[string]map[string]interface{}
}

// requestID returns the id assigned by the request middleware, or a fresh one
func requestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok && id != "" {
		return id
	}
	return utils.GenerateRequestID()
}

func errorResponse(c echo.Context, status int, code, message string) error {
	return c.JSON(status, models.ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: requestID(c),
		Timestamp: time.Now(),
	})
}

// batchError maps manager errors onto HTTP answers
func batchError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, background.ErrBatchNotFound):
		return errorResponse(c, http.StatusNotFound, "batch_not_found", err.Error())
	case errors.Is(err, background.ErrBatchRunning):
		return errorResponse(c, http.StatusConflict, "batch_running", err.Error())
	case utils.IsKind(err, utils.KindValidation):
		return errorResponse(c, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		return errorResponse(c, utils.StatusCode(err), "batch_error", err.Error())
	}
}
