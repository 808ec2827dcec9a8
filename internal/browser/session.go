// Package browser owns the navigable session used by the scraper: a single
// Chrome instance driven over CDP, handing out one page per listing.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrIdleTimeout is returned by Page.WaitNetworkIdle when the page kept
// issuing requests for the whole wait.
var ErrIdleTimeout = errors.New("network did not become idle")

// Session is a navigable browser session. It is created by the batch that
// uses it and closed by the same owner.
type Session interface {
	// NewPage opens a blank tab
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single tab. All blocking calls are bounded by ctx or an explicit timeout.
type Page interface {
	// Navigate loads url and returns once the initial document is parsed,
	// without waiting for subresources.
	Navigate(ctx context.Context, url string) error

	// WaitNetworkIdle waits until no request has been in flight for a short
	// quiet period, giving up with ErrIdleTimeout after timeout.
	WaitNetworkIdle(ctx context.Context, timeout time.Duration) error

	// PressEscape sends an Escape key press to the focused frame
	PressEscape(ctx context.Context) error

	// ClickText looks up to timeout for an element matching selector whose
	// text contains text (case-sensitive). A visible match is clicked with a
	// synthetic DOM click that ignores overlays; clicked reports whether that happened.
	ClickText(ctx context.Context, selector, text string, timeout time.Duration) (clicked bool, err error)

	// URL returns the page's current address, after any redirects
	URL() (string, error)

	// HTML returns a serialized snapshot of the current DOM
	HTML() (string, error)

	Close() error
}

// Options describe how a session is launched
type Options struct {
	Headless   bool
	Stealth    bool
	UserAgent  string
	Bin        string // explicit browser binary, otherwise autodetected
	NoSandbox  bool
	ProfileDir string // persisted user-data dir, empty for a throwaway profile

	// CreateProfile allows a missing ProfileDir to be created (login flow only)
	CreateProfile bool
}

// Factory opens sessions; the batch orchestrator takes one so tests can swap Chrome out
type Factory func(ctx context.Context, opts Options) (Session, error)
