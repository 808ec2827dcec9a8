package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure so callers can decide how far it propagates
type ErrorKind string

const (
	KindNavigation       ErrorKind = "NavigationError"
	KindFieldMiss        ErrorKind = "ExtractionFieldMiss"
	KindReadinessTimeout ErrorKind = "ReadinessTimeout"
	KindPersistence      ErrorKind = "PersistenceError"
	KindSessionFatal     ErrorKind = "SessionFatalError"
	KindValidation       ErrorKind = "ValidationError"
)

// ScrapeError is the application error carried between the scraping layers.
// Code mirrors the HTTP status the control panel answers with.
type ScrapeError struct {
	Kind    ErrorKind `json:"kind"`
	Code    int       `json:"code"`
	Message string    `json:"message"`
	URL     string    `json:"url,omitempty"`
	Err     error     `json:"-"`
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// Is matches any ScrapeError of the same kind, so errors.Is(err, &ScrapeError{Kind: KindNavigation}) works
func (e *ScrapeError) Is(target error) bool {
	var other *ScrapeError
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// Common error constructors
func NewNavigationError(url, message string, err error) *ScrapeError {
	return &ScrapeError{
		Kind:    KindNavigation,
		Code:    http.StatusUnprocessableEntity,
		Message: message,
		URL:     url,
		Err:     err,
	}
}

func NewFieldMiss(field string) *ScrapeError {
	return &ScrapeError{
		Kind:    KindFieldMiss,
		Code:    http.StatusOK,
		Message: fmt.Sprintf("no strategy produced a value for %s", field),
	}
}

func NewReadinessTimeout(url, waitedFor string) *ScrapeError {
	return &ScrapeError{
		Kind:    KindReadinessTimeout,
		Code:    http.StatusRequestTimeout,
		Message: fmt.Sprintf("timed out waiting for %s", waitedFor),
		URL:     url,
	}
}

func NewPersistenceError(message string, err error) *ScrapeError {
	return &ScrapeError{
		Kind:    KindPersistence,
		Code:    http.StatusInternalServerError,
		Message: message,
		Err:     err,
	}
}

func NewSessionFatalError(message string, err error) *ScrapeError {
	return &ScrapeError{
		Kind:    KindSessionFatal,
		Code:    http.StatusServiceUnavailable,
		Message: message,
		Err:     err,
	}
}

func NewValidationError(detail string) *ScrapeError {
	return &ScrapeError{
		Kind:    KindValidation,
		Code:    http.StatusBadRequest,
		Message: "Validation failed: " + detail,
	}
}

// IsKind reports whether err (or anything it wraps) is a ScrapeError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// StatusCode returns the HTTP status associated with err, defaulting to 500
func StatusCode(err error) int {
	var se *ScrapeError
	if errors.As(err, &se) && se.Code != 0 {
		return se.Code
	}
	return http.StatusInternalServerError
}
