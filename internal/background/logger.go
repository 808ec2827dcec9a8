package background

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"jobscribe/internal/logging"
	"jobscribe/internal/logging/types"
	"jobscribe/pkg/models"
)

// BatchLogger records batch lifecycle events: application log lines for each
// transition and one JSON completion line for log collectors.
type BatchLogger struct {
	logger types.Logger
	out    io.Writer
}

// NewBatchLogger creates a lifecycle logger writing completion lines to stdout
func NewBatchLogger() *BatchLogger {
	return &BatchLogger{
		logger: logging.GetGlobalLogger(),
		out:    os.Stdout,
	}
}

// BatchCompletionLog is the structured completion entry
type BatchCompletionLog struct {
	BatchID        string    `json:"batchId"`
	Status         string    `json:"status"`
	Total          int       `json:"total"`
	Successful     int       `json:"successful"`
	Failed         int       `json:"failed"`
	Skipped        int       `json:"skipped"`
	FailedURLs     []string  `json:"failedUrls,omitempty"`
	Error          string    `json:"error,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Operation      string    `json:"operation"`
	ProcessingTime string    `json:"processing_time"`
}

// LogBatchAccepted logs when a batch is accepted for processing
func (l *BatchLogger) LogBatchAccepted(batchID string, total int) {
	l.logger.Info("Batch accepted", map[string]interface{}{
		"batch_id": batchID,
		"total":    total,
		"status":   models.BatchStateAccepted,
	})
}

// LogBatchStart logs when a batch starts processing
func (l *BatchLogger) LogBatchStart(batchID string) {
	l.logger.Info("Batch started", map[string]interface{}{
		"batch_id": batchID,
		"status":   models.BatchStateProcessing,
	})
}

// LogBatchCompletion logs the final snapshot and writes the completion line
func (l *BatchLogger) LogBatchCompletion(snap models.BatchSnapshot) error {
	entry := CreateBatchCompletionLog(snap)

	fields := map[string]interface{}{
		"batch_id":        snap.ID,
		"status":          snap.State,
		"successful":      snap.SuccessCount,
		"failed":          snap.FailureCount,
		"skipped":         snap.SkippedCount,
		"processing_time": entry.ProcessingTime,
	}
	if snap.State == models.BatchStateFailure {
		fields["error"] = snap.Error
		l.logger.Error("Batch failed", fields)
	} else {
		l.logger.Info("Batch completed", fields)
	}

	return WriteStructuredLog(l.out, entry)
}

// CreateBatchCompletionLog creates a BatchCompletionLog from a final snapshot
func CreateBatchCompletionLog(snap models.BatchSnapshot) *BatchCompletionLog {
	processingTime := "0s"
	if snap.FinishedAt != nil {
		processingTime = snap.FinishedAt.Sub(snap.StartedAt).Round(time.Millisecond).String()
	}

	return &BatchCompletionLog{
		BatchID:        snap.ID,
		Status:         string(snap.State),
		Total:          snap.Total,
		Successful:     snap.SuccessCount,
		Failed:         snap.FailureCount,
		Skipped:        snap.SkippedCount,
		FailedURLs:     snap.FailedURLs,
		Error:          snap.Error,
		Timestamp:      time.Now(),
		Operation:      "batch",
		ProcessingTime: processingTime,
	}
}

// WriteStructuredLog writes one JSON line to w
func WriteStructuredLog(w io.Writer, logEntry interface{}) error {
	jsonData, err := json.Marshal(logEntry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	if _, err := w.Write(append(jsonData, '\n')); err != nil {
		return fmt.Errorf("failed to write log entry: %w", err)
	}
	return nil
}
