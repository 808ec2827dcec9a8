package browser

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"jobscribe/internal/logging"
	"jobscribe/internal/logging/types"
	"jobscribe/pkg/utils"
)

// networkQuietPeriod is how long the page must go without requests to count as idle
const networkQuietPeriod = 500 * time.Millisecond

// RodSession is a Session backed by one launched Chrome process
type RodSession struct {
	opts     Options
	launcher *launcher.Launcher
	browser  *rod.Browser
	logger   types.Logger
}

// NewRodSession launches Chrome and connects to it. Launch problems are
// SessionFatalErrors: nothing in the batch can proceed without a browser.
func NewRodSession(ctx context.Context, opts Options) (Session, error) {
	logger := logging.GetGlobalLogger()

	if opts.ProfileDir != "" {
		if err := ensureProfileDir(opts.ProfileDir, opts.CreateProfile); err != nil {
			return nil, utils.NewSessionFatalError("browser profile is not usable", err)
		}
	}

	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox).
		Delete("enable-automation").
		Set("disable-blink-features", "AutomationControlled").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-session-crashed-bubble").
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage")

	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}

	if chromePath := SystemChromePath(opts.Bin); chromePath != "" {
		l = l.Bin(chromePath)
		logger.Debug("Using system Chrome browser", map[string]interface{}{
			"chrome_path": chromePath,
		})
	} else {
		logger.Warn("System Chrome not found, rod will download a browser")
	}

	if opts.UserAgent != "" {
		l = l.Set("user-agent", opts.UserAgent)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, utils.NewSessionFatalError("failed to launch browser", err)
	}

	browser := rod.New().Context(ctx).ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, utils.NewSessionFatalError("failed to connect to browser", err)
	}

	logger.Info("Browser session started", map[string]interface{}{
		"headless":        opts.Headless,
		"stealth":         opts.Stealth,
		"persisted_login": opts.ProfileDir != "",
	})

	return &RodSession{
		opts:     opts,
		launcher: l,
		browser:  browser,
		logger:   logger,
	}, nil
}

// NewPage opens a tab, with stealth patches when enabled
func (s *RodSession) NewPage(ctx context.Context) (Page, error) {
	var (
		page *rod.Page
		err  error
	)

	if s.opts.Stealth {
		page, err = stealth.Page(s.browser)
	} else {
		page, err = s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		s.logger.Warn("Failed to set viewport", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if s.opts.UserAgent != "" {
		err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      s.opts.UserAgent,
			AcceptLanguage: "en-US,en;q=0.9",
		})
		if err != nil {
			s.logger.Warn("Failed to set user agent", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// bring the new tab forward; a restored profile may have older tabs open
	_, _ = page.Activate()

	return &rodPage{page: page}, nil
}

// Close shuts Chrome down. Throwaway profiles are removed; persisted ones stay.
func (s *RodSession) Close() error {
	err := s.browser.Close()

	if s.opts.ProfileDir == "" {
		s.launcher.Cleanup()
	} else {
		s.launcher.Kill()
	}

	s.logger.Info("Browser session closed")
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)

	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("navigation to %s did not finish: %w", url, err)
	}
	return nil
}

func (p *rodPage) WaitNetworkIdle(ctx context.Context, timeout time.Duration) error {
	idleCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := rod.Try(func() {
		p.page.Context(idleCtx).WaitRequestIdle(networkQuietPeriod, nil, nil, nil)()
	})
	if idleCtx.Err() != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrIdleTimeout
	}
	return err
}

func (p *rodPage) PressEscape(ctx context.Context) error {
	return p.page.Context(ctx).Keyboard.Press(input.Escape)
}

func (p *rodPage) ClickText(ctx context.Context, selector, text string, timeout time.Duration) (bool, error) {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	el, err := p.page.Context(probeCtx).ElementR(selector, regexp.QuoteMeta(text))
	if err != nil {
		// not found within the probe window
		return false, nil
	}
	el = el.Context(ctx)

	visible, err := el.Visible()
	if err != nil || !visible {
		return false, nil
	}

	if _, err := el.Eval(`() => this.click()`); err != nil {
		return false, fmt.Errorf("failed to click %q: %w", text, err)
	}
	return true, nil
}

func (p *rodPage) URL() (string, error) {
	info, err := p.page.Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", err)
	}
	return info.URL, nil
}

func (p *rodPage) HTML() (string, error) {
	html, err := p.page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get page HTML: %w", err)
	}
	return html, nil
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

func ensureProfileDir(dir string, create bool) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return fmt.Errorf("%s is not a directory", dir)
	case os.IsNotExist(err) && create:
		return os.MkdirAll(dir, 0o700)
	case os.IsNotExist(err):
		return fmt.Errorf("profile %s not found, run the login command first", dir)
	default:
		return err
	}
}
