package background

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscribe/internal/config"
	"jobscribe/internal/logging"
	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

func testManager(t *testing.T, pipeline *fakePipeline) *Manager {
	t.Helper()

	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()

	m := NewManager(Dependencies{
		Config:   cfg,
		Pipeline: pipeline,
		Sessions: sessionFactory(&fakeSession{}),
		Logger:   logging.NewNopLogger(),
	})
	m.lifecycle.logger = logging.NewNopLogger()
	m.lifecycle.out = &discard{}
	m.configure = func(b *Batch) {
		b.delay = func() time.Duration { return 0 }
	}

	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Shutdown(ctx)
	})
	return m
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func waitForState(t *testing.T, m *Manager, id string, terminal bool) models.BatchSnapshot {
	t.Helper()

	var snap models.BatchSnapshot
	require.Eventually(t, func() bool {
		var err error
		if snap, err = m.Status(id); err != nil {
			return false
		}
		return snap.State.Terminal() == terminal && snap.State != models.BatchStateAccepted
	}, 5*time.Second, 5*time.Millisecond)
	return snap
}

func TestManagerRunsBatchToCompletion(t *testing.T) {
	m := testManager(t, &fakePipeline{})

	id, err := m.StartBatch([]string{urlA, "https://example.com/nope", urlB}, models.BatchOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	snap := waitForState(t, m, id, true)
	assert.Equal(t, models.BatchStateSuccess, snap.State)
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, 2, snap.SuccessCount)

	list := m.List()
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	_, running := m.Running()
	assert.False(t, running)
}

func TestManagerRejectsSecondBatch(t *testing.T) {
	pipeline := &fakePipeline{release: make(chan struct{})}
	m := testManager(t, pipeline)

	first, err := m.StartBatch([]string{urlA}, models.BatchOptions{})
	require.NoError(t, err)
	waitForState(t, m, first, false)

	_, err = m.StartBatch([]string{urlB}, models.BatchOptions{})
	assert.ErrorIs(t, err, ErrBatchRunning)

	running, ok := m.Running()
	assert.True(t, ok)
	assert.Equal(t, first, running)

	close(pipeline.release)
	waitForState(t, m, first, true)

	second, err := m.StartBatch([]string{urlB}, models.BatchOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestManagerRejectsEmptyURLList(t *testing.T) {
	m := testManager(t, &fakePipeline{})

	_, err := m.StartBatch([]string{"https://example.com/jobs/1", "  "}, models.BatchOptions{})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	assert.Empty(t, m.List())
}

func TestManagerValidatesOptions(t *testing.T) {
	m := testManager(t, &fakePipeline{})

	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'a'
	}
	_, err := m.StartBatch([]string{urlA}, models.BatchOptions{OutputDir: string(long)})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestManagerStopAndClearLogs(t *testing.T) {
	pipeline := &fakePipeline{release: make(chan struct{})}
	m := testManager(t, pipeline)

	id, err := m.StartBatch([]string{urlA, urlB, urlC}, models.BatchOptions{})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(pipeline.called()) == 1 }, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, m.Stop(id))
	close(pipeline.release)

	snap := waitForState(t, m, id, true)
	assert.Equal(t, models.BatchStateStopped, snap.State)
	assert.Equal(t, 1, snap.Progress)
	assert.NotEmpty(t, snap.LogTail)

	require.NoError(t, m.ClearLogs(id))
	snap, err = m.Status(id)
	require.NoError(t, err)
	assert.Empty(t, snap.LogTail)
}

func TestManagerUnknownBatch(t *testing.T) {
	m := testManager(t, &fakePipeline{})

	_, err := m.Status("missing")
	assert.ErrorIs(t, err, ErrBatchNotFound)
	assert.ErrorIs(t, m.Stop("missing"), ErrBatchNotFound)
	assert.ErrorIs(t, m.ClearLogs("missing"), ErrBatchNotFound)
}

func TestManagerNotStarted(t *testing.T) {
	m := NewManager(Dependencies{Config: config.Default(), Logger: logging.NewNopLogger()})

	_, err := m.StartBatch([]string{urlA}, models.BatchOptions{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrBatchRunning))
	assert.False(t, m.IsHealthy())
}

func TestBatchConfigFor(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = "/data/out"
	cfg.Scraper.HeadlessMode = true
	cfg.Browser.ProfileDir = "/profiles/default"

	deps := Dependencies{Config: cfg}

	bc := deps.BatchConfigFor(models.BatchOptions{})
	assert.Equal(t, filepath.Join("/data/out", "jobs.json"), bc.Collection.Path)
	assert.Equal(t, "/data/out", bc.DocumentDir)
	assert.Nil(t, bc.Renderer)
	assert.Nil(t, bc.Seen)
	assert.True(t, bc.SessionOptions.Headless)
	assert.Empty(t, bc.SessionOptions.ProfileDir)

	headed := false
	bc = deps.BatchConfigFor(models.BatchOptions{
		CreateDocument:      true,
		Headless:            &headed,
		OutputDir:           "/tmp/json",
		DocumentDir:         "/tmp/md",
		UsePersistedSession: true,
	})
	assert.Equal(t, filepath.Join("/tmp/json", "jobs.json"), bc.Collection.Path)
	assert.Equal(t, "/tmp/md", bc.DocumentDir)
	assert.NotNil(t, bc.Renderer)
	assert.False(t, bc.SessionOptions.Headless)
	assert.Equal(t, "/profiles/default", bc.SessionOptions.ProfileDir)

	bc = deps.BatchConfigFor(models.BatchOptions{UsePersistedSession: true, SessionProfilePath: "/profiles/other"})
	assert.Equal(t, "/profiles/other", bc.SessionOptions.ProfileDir)
}

func TestInMemoryBatchStoreCleanup(t *testing.T) {
	s := NewInMemoryBatchStore()

	old := NewBatch("old", nil, BatchConfig{Logger: logging.NewNopLogger()})
	old.finish(models.BatchStateSuccess, nil)
	past := time.Now().Add(-48 * time.Hour)
	old.finishedAt = &past

	active := NewBatch("active", nil, BatchConfig{Logger: logging.NewNopLogger()})

	s.Store(old)
	s.Store(active)

	assert.Equal(t, 1, s.Cleanup(24*time.Hour))
	_, err := s.Get("old")
	assert.ErrorIs(t, err, ErrBatchNotFound)
	_, err = s.Get("active")
	assert.NoError(t, err)
}

type reportingPipeline struct {
	*fakePipeline
}

func (reportingPipeline) HostStats() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{"www.linkedin.com": {"requests": int64(2)}}
}

func TestManagerHostStats(t *testing.T) {
	m := NewManager(Dependencies{Config: config.Default(), Pipeline: &fakePipeline{}, Logger: logging.NewNopLogger()})
	assert.Nil(t, m.HostStats())

	m = NewManager(Dependencies{
		Config:   config.Default(),
		Pipeline: reportingPipeline{&fakePipeline{}},
		Logger:   logging.NewNopLogger(),
	})
	stats := m.HostStats()
	require.Contains(t, stats, "www.linkedin.com")
	assert.EqualValues(t, 2, stats["www.linkedin.com"]["requests"])
}
