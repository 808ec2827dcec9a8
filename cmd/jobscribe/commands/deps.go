package commands

import (
	"fmt"

	"jobscribe/internal/background"
	"jobscribe/internal/browser"
	"jobscribe/internal/config"
	"jobscribe/internal/dedup"
	"jobscribe/internal/exporter"
	"jobscribe/internal/logging"
	"jobscribe/internal/scraper"
	"jobscribe/internal/store"
)

// buildDependencies opens the optional stores named in cfg. The returned
// cleanup closes whatever was opened.
func buildDependencies(cfg *config.Config) (background.Dependencies, func(), error) {
	logger := logging.GetGlobalLogger()

	deps := background.Dependencies{
		Config:   cfg,
		Pipeline: scraper.NewListingScraper(cfg),
		Sessions: browser.NewRodSession,
		Logger:   logger,
	}

	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("Failed to close dependency", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}

	if cfg.Storage.SQLitePath != "" {
		mirror, err := store.OpenSQLite(config.ExpandHome(cfg.Storage.SQLitePath))
		if err != nil {
			return deps, cleanup, fmt.Errorf("failed to open sqlite mirror: %w", err)
		}
		deps.Mirror = mirror
		closers = append(closers, mirror.Close)
	}

	if cfg.Export.Enabled {
		publisher, err := exporter.NewSpacesPublisher(cfg)
		if err != nil {
			cleanup()
			return deps, func() {}, fmt.Errorf("failed to configure export: %w", err)
		}
		deps.Exporter = exporter.NewRecordExporter(publisher)
	}

	if cfg.Dedup.Enabled {
		tracker, err := dedup.NewRedisTracker(cfg)
		if err != nil {
			cleanup()
			return deps, func() {}, fmt.Errorf("failed to connect seen tracker: %w", err)
		}
		deps.Seen = tracker
	} else {
		deps.Seen = dedup.NewMemoryTracker(cfg.Dedup.TTL)
	}
	closers = append(closers, deps.Seen.Close)

	return deps, cleanup, nil
}
