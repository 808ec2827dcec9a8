package models

import (
	"time"
)

// BatchState represents the lifecycle state of a batch
type BatchState string

const (
	BatchStateAccepted   BatchState = "ACCEPTED"
	BatchStateProcessing BatchState = "PROCESSING"
	BatchStateSuccess    BatchState = "SUCCESS"
	BatchStateStopped    BatchState = "STOPPED"
	BatchStateFailure    BatchState = "FAILURE"
)

// Terminal reports whether no more progress will be made
func (s BatchState) Terminal() bool {
	return s == BatchStateSuccess || s == BatchStateStopped || s == BatchStateFailure
}

// BatchSnapshot is a read-only copy of a batch's progress
type BatchSnapshot struct {
	ID           string     `json:"batchId"`
	State        BatchState `json:"state"`
	Progress     int        `json:"progress"`
	Total        int        `json:"total"`
	CurrentURL   string     `json:"currentUrl"`
	SuccessCount int        `json:"successCount"`
	FailureCount int        `json:"failureCount"`
	SkippedCount int        `json:"skippedCount"`
	FailedURLs   []string   `json:"failedUrls"`
	LogTail      []string   `json:"logTail"`
	Error        string     `json:"error,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
}
