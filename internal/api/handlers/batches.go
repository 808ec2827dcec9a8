package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"jobscribe/internal/logging"
	"jobscribe/internal/validation"
	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

var validate = validation.New()

// StartBatchHandler accepts a URL list and starts a background batch
func StartBatchHandler(ctrl BatchController) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logging.GetGlobalLogger().WithField("request_id", requestID(c))

		var req models.StartBatchRequest
		if err := c.Bind(&req); err != nil {
			logger.Warn("Failed to bind batch request", map[string]interface{}{
				"error": err.Error(),
			})
			return errorResponse(c, http.StatusBadRequest, "invalid_request", "Invalid request format")
		}

		if err := validate.Struct(&req); err != nil {
			logger.Warn("Batch request validation failed", map[string]interface{}{
				"error": err.Error(),
			})
			return errorResponse(c, http.StatusBadRequest, "validation_failed", err.Error())
		}

		// both inputs go through the same line parser so comments and
		// collection URLs behave as they do in URL files
		text := strings.Join(req.URLs, "\n")
		if req.URLsText != "" {
			text += "\n" + req.URLsText
		}
		list := utils.ParseURLText(text)

		if len(list.Valid) == 0 {
			return errorResponse(c, http.StatusBadRequest, "validation_failed", "no valid job URLs provided")
		}

		id, err := ctrl.StartBatch(list.Valid, req.Options)
		if err != nil {
			logger.Warn("Batch rejected", map[string]interface{}{
				"error": err.Error(),
			})
			return batchError(c, err)
		}

		logger.Info("Batch accepted", map[string]interface{}{
			"batch_id": id,
			"total":    len(list.Valid),
			"skipped":  len(list.Skipped),
		})

		skipped := list.Skipped
		if skipped == nil {
			skipped = []string{}
		}
		return c.JSON(http.StatusAccepted, models.StartBatchResponse{
			BatchID:   id,
			State:     models.BatchStateAccepted,
			Total:     len(list.Valid),
			Skipped:   skipped,
			Message:   "Batch accepted for processing",
			Timestamp: time.Now(),
		})
	}
}

// ListBatchesHandler lists every known batch, newest first
func ListBatchesHandler(ctrl BatchController) echo.HandlerFunc {
	return func(c echo.Context) error {
		batches := ctrl.List()
		return c.JSON(http.StatusOK, models.BatchListResponse{
			Batches: batches,
			Count:   len(batches),
		})
	}
}

// GetBatchHandler returns one batch snapshot
func GetBatchHandler(ctrl BatchController) echo.HandlerFunc {
	return func(c echo.Context) error {
		snap, err := ctrl.Status(c.Param("id"))
		if err != nil {
			return batchError(c, err)
		}
		return c.JSON(http.StatusOK, snap)
	}
}

// StopBatchHandler asks a batch to stop after its current record
func StopBatchHandler(ctrl BatchController) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		if err := ctrl.Stop(id); err != nil {
			return batchError(c, err)
		}

		snap, err := ctrl.Status(id)
		if err != nil {
			return batchError(c, err)
		}
		return c.JSON(http.StatusAccepted, snap)
	}
}

// ClearBatchLogsHandler empties a batch's log tail
func ClearBatchLogsHandler(ctrl BatchController) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := ctrl.ClearLogs(c.Param("id")); err != nil {
			return batchError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
