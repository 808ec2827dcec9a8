package scraper

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobscribe/internal/browser"
	"jobscribe/internal/config"
	"jobscribe/internal/logging/types"
	"jobscribe/pkg/utils"
)

// ReadinessState is a step of the page readiness sequence
type ReadinessState string

const (
	StateNavigating         ReadinessState = "Navigating"
	StateAwaitingRender     ReadinessState = "AwaitingRender"
	StateDismissingOverlays ReadinessState = "DismissingOverlays"
	StateVerifyingContent   ReadinessState = "VerifyingContent"
	StateReady              ReadinessState = "Ready"
	StateExpired            ReadinessState = "Expired"
	StateFailed             ReadinessState = "Failed"
)

const (
	expandLabel     = "Show more"
	expiredListing  = "job listing has expired or is no longer available"
	publicExpandSel = ".description__text button"
)

var expandScopes = []string{"#job-details", ".jobs-description", "main", "body"}

// ReadinessOptions bounds every wait of the readiness sequence
type ReadinessOptions struct {
	NavigationTimeout   time.Duration
	IdleTimeout         time.Duration
	RenderGrace         time.Duration
	OverlayProbeTimeout time.Duration
	ExpandTimeout       time.Duration
	ConsentLabels       []string
	ListingPath         string
	ExpiredMarker       string
}

// ReadinessOptionsFromConfig copies the scraper section of cfg
func ReadinessOptionsFromConfig(cfg *config.Config) ReadinessOptions {
	return ReadinessOptions{
		NavigationTimeout:   cfg.Scraper.NavigationTimeout,
		IdleTimeout:         cfg.Scraper.IdleTimeout,
		RenderGrace:         cfg.Scraper.RenderGrace,
		OverlayProbeTimeout: cfg.Scraper.OverlayProbeTimeout,
		ExpandTimeout:       cfg.Scraper.ExpandTimeout,
		ConsentLabels:       cfg.Scraper.ConsentLabels,
		ListingPath:         cfg.Scraper.ListingPath,
		ExpiredMarker:       cfg.Scraper.ExpiredMarker,
	}
}

// Navigator opens a listing and waits until it is worth extracting from.
// Readiness is a layered heuristic: network quiet, a grace delay, overlays
// dismissed and the final URL still being a listing view. Only the URL
// check is a hard gate.
type Navigator struct {
	opts   ReadinessOptions
	logger types.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewNavigator creates a Navigator
func NewNavigator(opts ReadinessOptions, logger types.Logger) *Navigator {
	if opts.ListingPath == "" {
		opts.ListingPath = "/jobs/view/"
	}
	if opts.ExpiredMarker == "" {
		opts.ExpiredMarker = "expired"
	}
	return &Navigator{opts: opts, logger: logger, sleep: sleepContext}
}

// Navigate opens url in a new page of session and returns the page once it
// is ready. The caller owns the returned page and must close it. On error
// the page has already been closed.
func (n *Navigator) Navigate(ctx context.Context, session browser.Session, url string) (browser.Page, error) {
	n.enter(StateNavigating, url)

	page, err := session.NewPage(ctx)
	if err != nil {
		n.enter(StateFailed, url)
		return nil, utils.NewNavigationError(url, "failed to open page", err)
	}

	if err := n.load(ctx, page, url); err != nil {
		n.enter(StateFailed, url)
		_ = page.Close()
		return nil, utils.NewNavigationError(url, "failed to load listing", err)
	}

	n.enter(StateAwaitingRender, url)
	if err := n.awaitRender(ctx, page, url); err != nil {
		n.enter(StateFailed, url)
		_ = page.Close()
		return nil, utils.NewNavigationError(url, "interrupted while waiting for render", err)
	}

	n.enter(StateDismissingOverlays, url)
	n.dismissOverlays(ctx, page)

	n.enter(StateVerifyingContent, url)
	current, err := page.URL()
	if err != nil {
		n.enter(StateFailed, url)
		_ = page.Close()
		return nil, utils.NewNavigationError(url, "failed to read page URL", err)
	}
	if !n.isListingView(current) {
		n.enter(StateExpired, url)
		_ = page.Close()
		return nil, utils.NewNavigationError(url, expiredListing, nil)
	}
	n.expandDescription(ctx, page)

	n.enter(StateReady, url)
	return page, nil
}

func (n *Navigator) load(ctx context.Context, page browser.Page, url string) error {
	navCtx := ctx
	if n.opts.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, n.opts.NavigationTimeout)
		defer cancel()
	}
	return page.Navigate(navCtx, url)
}

// awaitRender only fails when ctx itself is done; a slow network is tolerated
func (n *Navigator) awaitRender(ctx context.Context, page browser.Page, url string) error {
	if n.opts.IdleTimeout > 0 {
		err := page.WaitNetworkIdle(ctx, n.opts.IdleTimeout)
		switch {
		case err == nil:
		case errors.Is(err, browser.ErrIdleTimeout):
			timeout := utils.NewReadinessTimeout(url, "network idle")
			n.logger.Debug("Proceeding without network idle", map[string]interface{}{
				"url":     url,
				"kind":    timeout.Kind,
				"timeout": n.opts.IdleTimeout.String(),
			})
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			n.logger.Debug("Network idle wait failed", map[string]interface{}{
				"url":   url,
				"error": err.Error(),
			})
		}
	}

	return n.sleep(ctx, n.opts.RenderGrace)
}

// dismissOverlays closes modals and accepts the first consent banner found.
// Nothing here is required to succeed.
func (n *Navigator) dismissOverlays(ctx context.Context, page browser.Page) {
	if err := page.PressEscape(ctx); err != nil {
		n.logger.Debug("Escape key failed", map[string]interface{}{"error": err.Error()})
	}

	for _, label := range n.opts.ConsentLabels {
		clicked, err := page.ClickText(ctx, "button", label, n.opts.OverlayProbeTimeout)
		if err != nil {
			n.logger.Debug("Consent click failed", map[string]interface{}{
				"label": label,
				"error": err.Error(),
			})
			continue
		}
		if clicked {
			n.logger.Debug("Accepted consent banner", map[string]interface{}{"label": label})
			return
		}
	}
}

// expandDescription clicks the first visible "Show more" near the description
func (n *Navigator) expandDescription(ctx context.Context, page browser.Page) {
	selectors := []string{publicExpandSel}
	for _, scope := range expandScopes {
		selectors = append(selectors, scope+" button")
	}

	for _, selector := range selectors {
		clicked, err := page.ClickText(ctx, selector, expandLabel, n.opts.ExpandTimeout)
		if err != nil {
			n.logger.Debug("Expand click failed", map[string]interface{}{
				"selector": selector,
				"error":    err.Error(),
			})
			continue
		}
		if clicked {
			n.logger.Debug("Expanded description", map[string]interface{}{"selector": selector})
			return
		}
	}
}

func (n *Navigator) isListingView(current string) bool {
	lower := strings.ToLower(current)
	return strings.Contains(lower, strings.ToLower(n.opts.ListingPath)) &&
		!strings.Contains(lower, strings.ToLower(n.opts.ExpiredMarker))
}

func (n *Navigator) enter(state ReadinessState, url string) {
	n.logger.Debug("Readiness state", map[string]interface{}{
		"state": state,
		"url":   url,
	})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
