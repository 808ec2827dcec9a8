package models

import "time"

// StartBatchResponse is the immediate answer to a start request
type StartBatchResponse struct {
	BatchID   string     `json:"batchId"`
	State     BatchState `json:"state"`
	Total     int        `json:"total"`
	Skipped   []string   `json:"skipped"`
	Message   string     `json:"message"`
	Timestamp time.Time  `json:"timestamp"`
}

// BatchListResponse lists known batches, newest first
type BatchListResponse struct {
	Batches []BatchSnapshot `json:"batches"`
	Count   int             `json:"count"`
}

// HealthResponse is returned by the health endpoints. Checks maps a
// subsystem to a short state such as "ok", "idle" or "running <id>".
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
	// Hosts holds per-host navigation counts from the rate limiter
	Hosts map[string]map[string]interface{} `json:"hosts,omitempty"`
}

// ErrorResponse is the body of every non-2xx control panel answer
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}
