package scraper

import (
	"context"
	"sync"
	"time"

	"jobscribe/internal/browser"
)

type fakePage struct {
	mu sync.Mutex

	navigateErr error
	idleErr     error
	urlErr      error
	finalURL    string
	html        string
	clickable   map[string]bool

	navigated []string
	clicks    []string
	escapes   int
	closed    int
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, url)
	if p.finalURL == "" {
		p.finalURL = url
	}
	return p.navigateErr
}

func (p *fakePage) WaitNetworkIdle(ctx context.Context, _ time.Duration) error {
	if p.idleErr != nil {
		return p.idleErr
	}
	return ctx.Err()
}

func (p *fakePage) PressEscape(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.escapes++
	return nil
}

func (p *fakePage) ClickText(_ context.Context, selector, text string, _ time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := selector + "|" + text
	if p.clickable[key] {
		p.clicks = append(p.clicks, key)
		return true, nil
	}
	return false, nil
}

func (p *fakePage) URL() (string, error) {
	return p.finalURL, p.urlErr
}

func (p *fakePage) HTML() (string, error) {
	return p.html, nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

type fakeSession struct {
	page       *fakePage
	newPageErr error
	opened     int
}

func (s *fakeSession) NewPage(context.Context) (browser.Page, error) {
	if s.newPageErr != nil {
		return nil, s.newPageErr
	}
	s.opened++
	return s.page, nil
}

func (s *fakeSession) Close() error { return nil }
