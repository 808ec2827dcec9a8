package logging

import (
	"fmt"
	"sync"

	"jobscribe/internal/config"
	"jobscribe/internal/logging/adapters"
	"jobscribe/internal/logging/types"
)

// Manager owns the process-wide logger and the adapters built from config
type Manager struct {
	factory *AdapterFactory
	logger  *MultiLogger
}

// NewManager creates a new logging manager
func NewManager() *Manager {
	return &Manager{
		factory: NewAdapterFactory(),
		logger:  NewMultiLogger(),
	}
}

// Initialize builds adapters from cfg.Logging. Without adapters a single
// stderr console adapter in cfg.Logging.Format is used.
func (m *Manager) Initialize(cfg *config.Config) error {
	level, ok := types.ParseLevel(cfg.Logging.Level)
	if !ok {
		return fmt.Errorf("unknown log level %q", cfg.Logging.Level)
	}
	m.logger.SetLevel(level)

	enabled := 0
	for _, ac := range cfg.Logging.Adapters {
		if !ac.Enabled {
			continue
		}

		adapter, err := m.factory.CreateAdapter(AdapterConfig{
			Name:    ac.Name,
			Type:    ac.Type,
			Enabled: ac.Enabled,
			Options: ac.Options,
		})
		if err != nil {
			return fmt.Errorf("failed to create adapter %s: %w", ac.Name, err)
		}

		if err := m.logger.AddAdapter(adapter); err != nil {
			return fmt.Errorf("failed to add adapter %s: %w", ac.Name, err)
		}
		enabled++
	}

	if enabled == 0 {
		return m.logger.AddAdapter(adapters.NewStdoutAdapter("console", adapters.StdoutConfig{
			Format: cfg.Logging.Format,
			Stream: "stderr",
		}))
	}
	return nil
}

// GetLogger returns the initialized logger
func (m *Manager) GetLogger() Logger {
	return m.logger
}

// Close closes the logging system
func (m *Manager) Close() error {
	return m.logger.Close()
}

var (
	globalMu      sync.Mutex
	globalManager *Manager
)

// InitializeLogging initializes the global logging system
func InitializeLogging(cfg *config.Config) error {
	manager := NewManager()
	if err := manager.Initialize(cfg); err != nil {
		return err
	}

	globalMu.Lock()
	previous := globalManager
	globalManager = manager
	globalMu.Unlock()

	if previous != nil {
		_ = previous.Close()
	}
	return nil
}

// GetGlobalLogger returns the global logger, creating a stderr fallback if
// InitializeLogging was never called
func GetGlobalLogger() Logger {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		manager := NewManager()
		_ = manager.logger.AddAdapter(adapters.NewStdoutAdapter("fallback", adapters.StdoutConfig{
			Format: "text",
			Stream: "stderr",
		}))
		globalManager = manager
	}
	return globalManager.GetLogger()
}

// CloseLogging closes the global logging system
func CloseLogging() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager != nil {
		return globalManager.Close()
	}
	return nil
}

// NewNopLogger returns a logger without adapters, for tests and library callers
func NewNopLogger() Logger {
	return NewMultiLogger()
}
