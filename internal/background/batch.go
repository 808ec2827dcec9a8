// Package background runs scrape batches off the request path: a Batch owns
// one browser session and walks its URL list in order, and the Manager hands
// batches out to front ends and keeps their snapshots around.
package background

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"jobscribe/internal/browser"
	"jobscribe/internal/dedup"
	"jobscribe/internal/exporter"
	"jobscribe/internal/logging"
	"jobscribe/internal/logging/types"
	"jobscribe/internal/render"
	"jobscribe/internal/scraper"
	"jobscribe/internal/store"
	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

const defaultLogTailSize = 500

// BatchConfig is everything a single batch needs to run
type BatchConfig struct {
	Pipeline       scraper.Pipeline
	Sessions       browser.Factory
	SessionOptions browser.Options

	Collection  *store.JSONStore
	Mirror      *store.SQLiteStore // optional
	Renderer    *render.Renderer   // nil unless documents were requested
	DocumentDir string

	Seen     dedup.Tracker            // optional, consulted and updated per listing id
	Exporter *exporter.RecordExporter // optional, best effort

	DelayMin    time.Duration
	DelayMax    time.Duration
	LogTailSize int

	Logger types.Logger
}

// Batch scrapes a list of URLs with one session. Its progress is written only
// by the goroutine running Run and read through Snapshot.
type Batch struct {
	id   string
	urls []string
	cfg  BatchConfig

	mu         sync.Mutex
	state      models.BatchState
	progress   int
	currentURL string
	success    int
	failure    int
	skipped    int
	failedURLs []string
	logTail    []string
	errMsg     string
	startedAt  time.Time
	finishedAt *time.Time
	onLog      func(line string)

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}

	// delay picks the pause between two records
	delay func() time.Duration
}

// NewBatch creates an ACCEPTED batch; nothing runs until Run is called
func NewBatch(id string, urls []string, cfg BatchConfig) *Batch {
	if cfg.Logger == nil {
		cfg.Logger = logging.GetGlobalLogger()
	}
	if cfg.LogTailSize <= 0 {
		cfg.LogTailSize = defaultLogTailSize
	}

	b := &Batch{
		id:        id,
		urls:      append([]string(nil), urls...),
		cfg:       cfg,
		state:     models.BatchStateAccepted,
		startedAt: time.Now(),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	b.delay = b.randomDelay
	return b
}

// ID returns the batch handle
func (b *Batch) ID() string {
	return b.id
}

// OnLog registers a callback receiving every status line as it is produced.
// The callback runs on the batch goroutine and must not block for long.
func (b *Batch) OnLog(fn func(line string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onLog = fn
}

// Stop asks the batch to halt after the record in flight
func (b *Batch) Stop() {
	b.stopOnce.Do(func() { close(b.stopCh) })
}

// Done is closed once Run has returned
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// ClearLogs empties the log tail; counts are kept
func (b *Batch) ClearLogs() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logTail = nil
}

// Snapshot returns a copy of the current progress
func (b *Batch) Snapshot() models.BatchSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := models.BatchSnapshot{
		ID:           b.id,
		State:        b.state,
		Progress:     b.progress,
		Total:        len(b.urls),
		CurrentURL:   b.currentURL,
		SuccessCount: b.success,
		FailureCount: b.failure,
		SkippedCount: b.skipped,
		FailedURLs:   append([]string{}, b.failedURLs...),
		LogTail:      append([]string{}, b.logTail...),
		Error:        b.errMsg,
		StartedAt:    b.startedAt,
	}
	if b.finishedAt != nil {
		finished := *b.finishedAt
		snap.FinishedAt = &finished
	}
	return snap
}

// Run processes every URL in order and returns the final snapshot. Per-URL
// failures are recorded and skipped over; only a fatal session error or a
// stop request ends the batch early.
func (b *Batch) Run(ctx context.Context) models.BatchSnapshot {
	defer close(b.done)

	logger := b.cfg.Logger.WithField("batch_id", b.id)
	b.setState(models.BatchStateProcessing)

	session, err := b.cfg.Sessions(ctx, b.cfg.SessionOptions)
	if err != nil {
		if !utils.IsKind(err, utils.KindSessionFatal) {
			err = utils.NewSessionFatalError("failed to start browser session", err)
		}
		b.logf("❌ %s", err.Error())
		logger.Error("Batch aborted before the first URL", map[string]interface{}{
			"error": err.Error(),
		})
		return b.finish(models.BatchStateFailure, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("Failed to close browser session", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	total := len(b.urls)
	b.logf("📋 Found %d jobs to scrape", total)

	var fatal error
	for i, url := range b.urls {
		if b.stopRequested(ctx) {
			break
		}

		b.begin(url)
		b.logf("[%d/%d] Scraping: %s...", i+1, total, utils.Truncate(url, 60))

		record, err := b.process(ctx, session, url)
		switch {
		case errors.Is(err, errAlreadySeen):
			b.recordSkip()
			b.logf("  ⏭️  Already scraped, skipping")
		case err != nil:
			b.recordFailure(url)
			b.logf("  ❌ Failed: %s", err.Error())
			logger.Warn("Listing failed", map[string]interface{}{
				"url":   url,
				"kind":  errorKind(err),
				"error": err.Error(),
			})
			if utils.IsKind(err, utils.KindSessionFatal) {
				fatal = err
			}
		default:
			b.recordSuccess()
			b.logf("  ✅ %s at %s", record.Title, record.CompanyName)
		}

		if fatal != nil {
			break
		}
		if i < total-1 && !b.stopRequested(ctx) {
			b.pause(ctx)
		}
	}

	snap := b.Snapshot()
	b.logf("%s", strings.Repeat("=", 50))
	b.logf("📊 Batch complete!")
	b.logf("   ✅ Successful: %d", snap.SuccessCount)
	b.logf("   ❌ Failed: %d", snap.FailureCount)
	if snap.SkippedCount > 0 {
		b.logf("   ⏭️  Skipped: %d", snap.SkippedCount)
	}
	if len(snap.FailedURLs) > 0 {
		b.logf("   Failed URLs:")
		for _, url := range snap.FailedURLs {
			b.logf("   - %s", url)
		}
	}

	switch {
	case fatal != nil:
		return b.finish(models.BatchStateFailure, fatal)
	case b.stopRequested(ctx):
		b.logf("⏹️  Stopped after %d of %d", snap.Progress, total)
		return b.finish(models.BatchStateStopped, nil)
	default:
		return b.finish(models.BatchStateSuccess, nil)
	}
}

var errAlreadySeen = errors.New("listing already scraped")

// process scrapes one URL and persists the record. The collection merge is
// authoritative; the mirror and the export are best effort.
func (b *Batch) process(ctx context.Context, session browser.Session, url string) (models.Record, error) {
	id := utils.ExtractListingID(url)
	if b.cfg.Seen != nil && id != "" {
		seen, err := b.cfg.Seen.Seen(ctx, id)
		if err != nil {
			b.cfg.Logger.Warn("Seen tracker lookup failed", map[string]interface{}{
				"id":    id,
				"error": err.Error(),
			})
		} else if seen {
			return models.Record{}, errAlreadySeen
		}
	}

	record, err := b.cfg.Pipeline.Scrape(ctx, session, url)
	if err != nil {
		return models.Record{}, err
	}

	if err := b.cfg.Collection.Merge(record); err != nil {
		return record, err
	}

	if b.cfg.Mirror != nil {
		if err := b.cfg.Mirror.Upsert(ctx, record); err != nil {
			b.cfg.Logger.Warn("Failed to mirror record", map[string]interface{}{
				"id":    record.ID,
				"error": err.Error(),
			})
		}
	}

	if b.cfg.Renderer != nil {
		path, err := b.cfg.Renderer.Write(record, b.cfg.DocumentDir)
		if err != nil {
			return record, err
		}
		b.logf("  📝 %s", path)
	}

	if b.cfg.Exporter != nil {
		var doc *render.Document
		if b.cfg.Renderer != nil {
			rendered := b.cfg.Renderer.Render(record)
			doc = &rendered
		}
		if _, err := b.cfg.Exporter.Export(ctx, record, doc); err != nil {
			b.cfg.Logger.Warn("Failed to export record", map[string]interface{}{
				"id":    record.ID,
				"error": err.Error(),
			})
		}
	}

	if b.cfg.Seen != nil && record.ID != "" {
		if err := b.cfg.Seen.MarkSeen(ctx, record.ID); err != nil {
			b.cfg.Logger.Warn("Failed to mark listing as seen", map[string]interface{}{
				"id":    record.ID,
				"error": err.Error(),
			})
		}
	}

	return record, nil
}

func (b *Batch) stopRequested(ctx context.Context) bool {
	select {
	case <-b.stopCh:
		return true
	default:
		return ctx.Err() != nil
	}
}

// pause waits the politeness delay, returning early on stop
func (b *Batch) pause(ctx context.Context) {
	d := b.delay()
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-b.stopCh:
	case <-ctx.Done():
	}
}

func (b *Batch) randomDelay() time.Duration {
	lo, hi := b.cfg.DelayMin, b.cfg.DelayMax
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int63n(int64(hi-lo)+1))
}

func (b *Batch) setState(state models.BatchState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = state
}

func (b *Batch) begin(url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentURL = url
}

func (b *Batch) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.success++
	b.progress++
}

func (b *Batch) recordFailure(url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failure++
	b.progress++
	b.failedURLs = append(b.failedURLs, url)
}

func (b *Batch) recordSkip() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.skipped++
	b.progress++
}

func (b *Batch) finish(state models.BatchState, err error) models.BatchSnapshot {
	now := time.Now()

	b.mu.Lock()
	b.state = state
	b.currentURL = ""
	b.finishedAt = &now
	if err != nil {
		b.errMsg = err.Error()
	}
	b.mu.Unlock()

	return b.Snapshot()
}

// logf appends a status line to the tail and forwards it to the OnLog callback
func (b *Batch) logf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)

	b.mu.Lock()
	b.logTail = append(b.logTail, line)
	if overflow := len(b.logTail) - b.cfg.LogTailSize; overflow > 0 {
		b.logTail = append([]string(nil), b.logTail[overflow:]...)
	}
	onLog := b.onLog
	b.mu.Unlock()

	if onLog != nil {
		onLog(line)
	}
}

func errorKind(err error) string {
	var se *utils.ScrapeError
	if errors.As(err, &se) {
		return string(se.Kind)
	}
	return "unknown"
}
