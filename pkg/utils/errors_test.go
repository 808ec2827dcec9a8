package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrapeErrorClassification(t *testing.T) {
	cause := errors.New("net::ERR_NAME_NOT_RESOLVED")
	err := fmt.Errorf("scrape: %w", NewNavigationError("https://x", "failed to load listing", cause))

	assert.True(t, IsKind(err, KindNavigation))
	assert.False(t, IsKind(err, KindSessionFatal))
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, &ScrapeError{Kind: KindNavigation})
	assert.Equal(t, http.StatusUnprocessableEntity, StatusCode(err))
	assert.Contains(t, err.Error(), "failed to load listing: net::ERR_NAME_NOT_RESOLVED")
}

func TestStatusCodeDefaults(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("plain")))
	assert.Equal(t, http.StatusBadRequest, StatusCode(NewValidationError("no URLs")))
}
