// Package scraper drives a browser session through one listing: open it,
// wait until it is ready, snapshot it and hand the snapshot to the extractor.
package scraper

import (
	"context"
	"fmt"
	"time"

	"jobscribe/internal/browser"
	"jobscribe/internal/config"
	"jobscribe/internal/extractor"
	"jobscribe/internal/logging"
	"jobscribe/internal/logging/types"
	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

// Pipeline scrapes one listing URL with an already open session
type Pipeline interface {
	Scrape(ctx context.Context, session browser.Session, url string) (models.Record, error)
}

// ListingScraper is the Pipeline backed by a Navigator and an extractor Engine
type ListingScraper struct {
	navigator *Navigator
	engine    *extractor.Engine
	limiter   *HostLimiter
	logger    types.Logger
}

// NewListingScraper wires a scraper from configuration
func NewListingScraper(cfg *config.Config) *ListingScraper {
	logger := logging.GetGlobalLogger().WithField("component", "scraper")
	return &ListingScraper{
		navigator: NewNavigator(ReadinessOptionsFromConfig(cfg), logger),
		engine:    extractor.NewEngine().WithLogger(logger),
		limiter:   NewHostLimiter(cfg.Scraper.RateLimit, logger),
		logger:    logger,
	}
}

// NewListingScraperWith builds a scraper from explicit parts
func NewListingScraperWith(navigator *Navigator, engine *extractor.Engine, limiter *HostLimiter, logger types.Logger) *ListingScraper {
	return &ListingScraper{
		navigator: navigator,
		engine:    engine,
		limiter:   limiter,
		logger:    logger,
	}
}

// StatsReporter is implemented by pipelines that track per-host navigation
type StatsReporter interface {
	HostStats() map[string]map[string]interface{}
}

// HostStats reports per-host request and failure counts from the limiter
func (s *ListingScraper) HostStats() map[string]map[string]interface{} {
	return s.limiter.Stats()
}

// Scrape navigates to url, extracts a record and closes the page again
func (s *ListingScraper) Scrape(ctx context.Context, session browser.Session, url string) (models.Record, error) {
	startTime := time.Now()

	if err := s.limiter.Wait(ctx, url); err != nil {
		return models.Record{}, utils.NewNavigationError(url, "rate limiter wait interrupted", err)
	}

	page, err := s.navigator.Navigate(ctx, session, url)
	if err != nil {
		s.limiter.RecordFailure(url)
		return models.Record{}, err
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			s.logger.Debug("Failed to close page", map[string]interface{}{
				"url":   url,
				"error": cerr.Error(),
			})
		}
	}()

	html, err := page.HTML()
	if err != nil {
		s.limiter.RecordFailure(url)
		return models.Record{}, utils.NewNavigationError(url, "failed to read page content", err)
	}

	s.limiter.RecordSuccess(url)

	outcome, err := s.engine.Extract(html, url)
	if err != nil {
		return models.Record{}, fmt.Errorf("extraction failed for %s: %w", url, err)
	}

	s.logger.Info("Listing extracted", map[string]interface{}{
		"url":             url,
		"id":              outcome.Record.ID,
		"title":           outcome.Record.Title,
		"company":         outcome.Record.CompanyName,
		"missing_fields":  outcome.Misses,
		"processing_time": time.Since(startTime).String(),
	})

	return outcome.Record, nil
}
