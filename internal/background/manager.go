package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"jobscribe/internal/browser"
	"jobscribe/internal/config"
	"jobscribe/internal/dedup"
	"jobscribe/internal/exporter"
	"jobscribe/internal/logging"
	"jobscribe/internal/logging/types"
	"jobscribe/internal/render"
	"jobscribe/internal/scraper"
	"jobscribe/internal/store"
	"jobscribe/internal/validation"
	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

const cleanupInterval = time.Hour

// Dependencies are the long-lived collaborators every batch shares
type Dependencies struct {
	Config   *config.Config
	Pipeline scraper.Pipeline
	Sessions browser.Factory
	Mirror   *store.SQLiteStore // optional
	Seen     dedup.Tracker      // optional, used when a batch asks for SkipSeen
	Exporter *exporter.RecordExporter
	Logger   types.Logger
}

// BatchConfigFor resolves per-batch options against the configuration
func (d Dependencies) BatchConfigFor(opts models.BatchOptions) BatchConfig {
	cfg := d.Config
	if cfg == nil {
		cfg = config.Default()
	}

	outputDir := utils.GetStringOrDefault(opts.OutputDir, cfg.Output.Dir)
	documentDir := utils.GetStringOrDefault(opts.DocumentDir, utils.GetStringOrDefault(cfg.Output.DocumentDir, outputDir))

	sessionOpts := browser.Options{
		Headless:  opts.HeadlessOr(cfg.Scraper.HeadlessMode),
		Stealth:   cfg.Scraper.StealthMode,
		UserAgent: cfg.Scraper.UserAgent,
		Bin:       cfg.Browser.Bin,
		NoSandbox: cfg.Browser.NoSandbox,
	}
	if opts.UsePersistedSession {
		sessionOpts.ProfileDir = config.ExpandHome(utils.GetStringOrDefault(opts.SessionProfilePath, cfg.Browser.ProfileDir))
	}

	bc := BatchConfig{
		Pipeline:       d.Pipeline,
		Sessions:       d.Sessions,
		SessionOptions: sessionOpts,
		Collection:     store.NewJSONStore(cfg.CollectionPath(outputDir)),
		Mirror:         d.Mirror,
		Exporter:       d.Exporter,
		DocumentDir:    documentDir,
		DelayMin:       cfg.Batch.DelayMin,
		DelayMax:       cfg.Batch.DelayMax,
		LogTailSize:    cfg.Batch.LogTailSize,
		Logger:         d.Logger,
	}
	if opts.CreateDocument {
		bc.Renderer = render.NewRenderer(render.OptionsFromConfig(cfg))
	}
	if opts.SkipSeen {
		bc.Seen = d.Seen
	}
	return bc
}

// Manager is the control surface front ends drive batches through.
// At most one batch runs at a time since batches would contend for the
// same browser profile and collection file.
type Manager struct {
	deps      Dependencies
	store     BatchStore
	lifecycle *BatchLogger
	logger    types.Logger
	validate  *validator.Validate
	maxAge    time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	running *Batch

	// configure lets tests adjust a batch before it starts
	configure func(*Batch)
}

// NewManager creates a batch manager; call Start before submitting batches
func NewManager(deps Dependencies) *Manager {
	if deps.Logger == nil {
		deps.Logger = logging.GetGlobalLogger()
	}

	maxAge := 24 * time.Hour
	if deps.Config != nil && deps.Config.Batch.MaxBatchAge > 0 {
		maxAge = deps.Config.Batch.MaxBatchAge
	}

	return &Manager{
		deps:      deps,
		store:     NewInMemoryBatchStore(),
		lifecycle: NewBatchLogger(),
		logger:    deps.Logger,
		validate:  validation.New(),
		maxAge:    maxAge,
	}
}

// Start starts the manager and its cleanup routine
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return fmt.Errorf("batch manager already running")
	}

	m.ctx, m.cancel = context.WithCancel(ctx)
	m.started = true

	m.wg.Add(1)
	go m.cleanupRoutine()

	m.logger.Info("Batch manager started", map[string]interface{}{
		"max_batch_age": m.maxAge.String(),
	})
	return nil
}

// StartBatch validates the URLs and options and runs the batch in the
// background, returning its handle.
func (m *Manager) StartBatch(urls []string, opts models.BatchOptions) (string, error) {
	var valid []string
	for _, raw := range urls {
		candidate := utils.NormalizeListingURL(raw)
		if utils.IsListingURL(candidate) {
			valid = append(valid, candidate)
		}
	}
	if len(valid) == 0 {
		return "", utils.NewValidationError("no valid job URLs provided")
	}

	if err := m.validate.Struct(opts); err != nil {
		return "", utils.NewValidationError(err.Error())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return "", fmt.Errorf("batch manager is not running")
	}
	if m.running != nil && !m.running.Snapshot().State.Terminal() {
		return "", ErrBatchRunning
	}

	id := utils.GenerateRequestID()
	batch := NewBatch(id, valid, m.deps.BatchConfigFor(opts))
	if m.configure != nil {
		m.configure(batch)
	}

	m.store.Store(batch)
	m.running = batch
	m.lifecycle.LogBatchAccepted(id, len(valid))

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		m.lifecycle.LogBatchStart(id)
		snap := batch.Run(m.ctx)
		if err := m.lifecycle.LogBatchCompletion(snap); err != nil {
			m.logger.Error("Failed to write batch completion log", map[string]interface{}{
				"batch_id": id,
				"error":    err.Error(),
			})
		}
	}()

	return id, nil
}

// Stop requests a cooperative stop; the record in flight still completes
func (m *Manager) Stop(id string) error {
	batch, err := m.store.Get(id)
	if err != nil {
		return err
	}

	batch.Stop()
	m.logger.Info("Batch stop requested", map[string]interface{}{
		"batch_id": id,
	})
	return nil
}

// Status returns a snapshot of one batch
func (m *Manager) Status(id string) (models.BatchSnapshot, error) {
	batch, err := m.store.Get(id)
	if err != nil {
		return models.BatchSnapshot{}, err
	}
	return batch.Snapshot(), nil
}

// List returns snapshots of every known batch, newest first
func (m *Manager) List() []models.BatchSnapshot {
	return snapshots(m.store.List())
}

// ClearLogs empties a batch's log tail
func (m *Manager) ClearLogs(id string) error {
	batch, err := m.store.Get(id)
	if err != nil {
		return err
	}
	batch.ClearLogs()
	return nil
}

// Running returns the handle of the batch in progress, if any
func (m *Manager) Running() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running == nil || m.running.Snapshot().State.Terminal() {
		return "", false
	}
	return m.running.ID(), true
}

// HostStats returns the pipeline's per-host navigation counts, or nil when
// the pipeline does not track them
func (m *Manager) HostStats() map[string]map[string]interface{} {
	if reporter, ok := m.deps.Pipeline.(scraper.StatsReporter); ok {
		return reporter.HostStats()
	}
	return nil
}

// IsHealthy reports whether the manager accepts batches
func (m *Manager) IsHealthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Shutdown stops the running batch and waits for it, bounded by ctx
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return nil
	}
	if m.running != nil {
		m.running.Stop()
	}
	m.mu.Unlock()

	m.logger.Info("Stopping batch manager...")

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	// the cleanup routine only exits on cancel, so let the batch finish first
	var err error
	select {
	case <-m.batchDone():
	case <-ctx.Done():
		err = fmt.Errorf("batch manager shutdown timed out: %w", ctx.Err())
	}
	m.cancel()

	if err == nil {
		select {
		case <-done:
			m.logger.Info("Batch manager stopped gracefully")
		case <-ctx.Done():
			err = fmt.Errorf("batch manager shutdown timed out: %w", ctx.Err())
		}
	}
	if err != nil {
		m.logger.Warn("Batch manager shutdown timed out")
	}

	m.mu.Lock()
	m.started = false
	m.mu.Unlock()
	return err
}

func (m *Manager) batchDone() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return m.running.Done()
}

// cleanupRoutine periodically forgets old finished batches
func (m *Manager) cleanupRoutine() {
	defer m.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if removed := m.store.Cleanup(m.maxAge); removed > 0 {
				m.logger.Debug("Cleaned up finished batches", map[string]interface{}{
					"removed": removed,
				})
			}
		}
	}
}
