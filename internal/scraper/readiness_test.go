package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscribe/internal/browser"
	"jobscribe/internal/logging"
	"jobscribe/pkg/utils"
)

const listingURL = "https://www.linkedin.com/jobs/view/4012345678/"

func testNavigator() *Navigator {
	nav := NewNavigator(ReadinessOptions{
		NavigationTimeout:   time.Second,
		IdleTimeout:         time.Second,
		RenderGrace:         time.Second,
		OverlayProbeTimeout: time.Millisecond,
		ExpandTimeout:       time.Millisecond,
		ConsentLabels:       []string{"Accept", "Accepteren"},
	}, logging.NewNopLogger())
	nav.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return nav
}

func TestNavigateReady(t *testing.T) {
	page := &fakePage{
		idleErr: browser.ErrIdleTimeout,
		clickable: map[string]bool{
			"button|Accept":                 true,
			"button|Accepteren":             true,
			"#job-details button|Show more": true,
			"main button|Show more":         true,
		},
	}
	session := &fakeSession{page: page}

	got, err := testNavigator().Navigate(context.Background(), session, listingURL)
	require.NoError(t, err, "an idle timeout must not fail readiness")
	assert.Same(t, page, got)

	assert.Equal(t, []string{listingURL}, page.navigated)
	assert.Equal(t, 1, page.escapes)
	// stops at the first consent label and the first expand scope that matches
	assert.Equal(t, []string{"button|Accept", "#job-details button|Show more"}, page.clicks)
	assert.Zero(t, page.closed)
}

func TestNavigateExpiredListing(t *testing.T) {
	tests := []struct {
		name     string
		finalURL string
	}{
		{"expired marker", "https://www.linkedin.com/jobs/view/4012345678/?trk=EXPIRED_JOB"},
		{"redirected away", "https://www.linkedin.com/jobs/search/?keywords=analyst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := &fakePage{finalURL: tt.finalURL}

			got, err := testNavigator().Navigate(context.Background(), &fakeSession{page: page}, listingURL)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, utils.IsKind(err, utils.KindNavigation))
			assert.Contains(t, err.Error(), "expired")
			assert.Equal(t, 1, page.closed)
			assert.Empty(t, page.clicks)
		})
	}
}

func TestNavigateLoadFailure(t *testing.T) {
	cause := errors.New("net::ERR_CONNECTION_RESET")
	page := &fakePage{navigateErr: cause}

	_, err := testNavigator().Navigate(context.Background(), &fakeSession{page: page}, listingURL)
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindNavigation))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, page.closed)
}

func TestNavigateSessionGone(t *testing.T) {
	session := &fakeSession{newPageErr: errors.New("browser disconnected")}

	_, err := testNavigator().Navigate(context.Background(), session, listingURL)
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindNavigation))
}

func TestNavigateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page := &fakePage{}
	_, err := testNavigator().Navigate(ctx, &fakeSession{page: page}, listingURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, page.closed)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
