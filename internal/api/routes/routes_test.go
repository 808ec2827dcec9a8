package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscribe/internal/background"
	"jobscribe/internal/config"
	"jobscribe/pkg/models"
)

type fakeController struct {
	mu       sync.Mutex
	running  string
	started  [][]string
	options  []models.BatchOptions
	batches  map[string]models.BatchSnapshot
	stopped  []string
	cleared  []string
	nextID   int
	disabled bool
	hosts    map[string]map[string]interface{}
}

func newFakeController() *fakeController {
	return &fakeController{batches: make(map[string]models.BatchSnapshot)}
}

func (f *fakeController) StartBatch(urls []string, opts models.BatchOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running != "" {
		return "", background.ErrBatchRunning
	}
	f.nextID++
	id := "batch-" + string(rune('0'+f.nextID))
	f.running = id
	f.started = append(f.started, urls)
	f.options = append(f.options, opts)
	f.batches[id] = models.BatchSnapshot{
		ID:        id,
		State:     models.BatchStateProcessing,
		Total:     len(urls),
		LogTail:   []string{"[1/1] Scraping: ..."},
		StartedAt: time.Now(),
	}
	return id, nil
}

func (f *fakeController) Stop(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.batches[id]; !ok {
		return background.ErrBatchNotFound
	}
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeController) Status(id string) (models.BatchSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.batches[id]
	if !ok {
		return models.BatchSnapshot{}, background.ErrBatchNotFound
	}
	return snap, nil
}

func (f *fakeController) List() []models.BatchSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.BatchSnapshot, 0, len(f.batches))
	for _, snap := range f.batches {
		out = append(out, snap)
	}
	return out
}

func (f *fakeController) ClearLogs(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.batches[id]
	if !ok {
		return background.ErrBatchNotFound
	}
	snap.LogTail = nil
	f.batches[id] = snap
	f.cleared = append(f.cleared, id)
	return nil
}

func (f *fakeController) Running() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running, f.running != ""
}

func (f *fakeController) IsHealthy() bool {
	return !f.disabled
}

func (f *fakeController) HostStats() map[string]map[string]interface{} {
	return f.hosts
}

func newServer(ctrl *fakeController) *echo.Echo {
	e := echo.New()
	SetupRoutes(e, config.Default(), ctrl)
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestStartBatch(t *testing.T) {
	ctrl := newFakeController()
	e := newServer(ctrl)

	body := `{
		"urls": ["https://www.linkedin.com/jobs/view/4011111111/"],
		"urlsText": "# saved\nhttps://www.linkedin.com/jobs/collections/recommended/?currentJobId=4022222222\nhttps://example.com/nope\n",
		"options": {"createDocument": true, "outputDir": "./out"}
	}`
	rec := do(e, http.MethodPost, "/api/v1/batches", body)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	var resp models.StartBatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "batch-1", resp.BatchID)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, []string{"https://example.com/nope"}, resp.Skipped)

	require.Len(t, ctrl.started, 1)
	assert.Equal(t, []string{
		"https://www.linkedin.com/jobs/view/4011111111/",
		"https://www.linkedin.com/jobs/view/4022222222/",
	}, ctrl.started[0])
	assert.True(t, ctrl.options[0].CreateDocument)
	assert.Equal(t, "./out", ctrl.options[0].OutputDir)
}

func TestStartBatchRejectsSecondBatch(t *testing.T) {
	ctrl := newFakeController()
	e := newServer(ctrl)

	body := `{"urls": ["https://www.linkedin.com/jobs/view/4011111111/"]}`
	require.Equal(t, http.StatusAccepted, do(e, http.MethodPost, "/api/v1/batches", body).Code)

	rec := do(e, http.MethodPost, "/api/v1/batches", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "batch_running", resp.Error)
	assert.NotEmpty(t, resp.RequestID)
}

func TestStartBatchRejectsEmptyList(t *testing.T) {
	ctrl := newFakeController()
	e := newServer(ctrl)

	tests := []struct {
		name string
		body string
	}{
		{"no urls", `{}`},
		{"only comments", `{"urlsText": "# nothing here\n\n"}`},
		{"only invalid", `{"urls": ["https://example.com/jobs/1"]}`},
		{"malformed json", `{"urls": [`},
		{"bad option path", `{"urls": ["https://www.linkedin.com/jobs/view/4011111111/"], "options": {"outputDir": "a\u0000b"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/api/v1/batches", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
	assert.Empty(t, ctrl.started)
}

func TestBatchStatusStopAndLogs(t *testing.T) {
	ctrl := newFakeController()
	e := newServer(ctrl)

	id, err := ctrl.StartBatch([]string{"https://www.linkedin.com/jobs/view/4011111111/"}, models.BatchOptions{})
	require.NoError(t, err)

	rec := do(e, http.MethodGet, "/api/v1/batches/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap models.BatchSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, id, snap.ID)
	assert.Equal(t, models.BatchStateProcessing, snap.State)

	rec = do(e, http.MethodGet, "/api/v1/batches", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list models.BatchListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	rec = do(e, http.MethodPost, "/api/v1/batches/"+id+"/stop", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{id}, ctrl.stopped)

	rec = do(e, http.MethodDelete, "/api/v1/batches/"+id+"/logs", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{id}, ctrl.cleared)
}

func TestUnknownBatchIsNotFound(t *testing.T) {
	e := newServer(newFakeController())

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/batches/missing"},
		{http.MethodPost, "/api/v1/batches/missing/stop"},
		{http.MethodDelete, "/api/v1/batches/missing/logs"},
	} {
		rec := do(e, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.path)
	}
}

func TestHealth(t *testing.T) {
	ctrl := newFakeController()
	e := newServer(ctrl)

	rec := do(e, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "idle", resp.Checks["batches"])
	assert.Empty(t, resp.Hosts)

	ctrl.hosts = map[string]map[string]interface{}{
		"www.linkedin.com": {"requests": 4, "failures": 1},
	}
	rec = do(e, http.MethodGet, "/health", "")
	resp = models.HealthResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Hosts, "www.linkedin.com")
	assert.EqualValues(t, 4, resp.Hosts["www.linkedin.com"]["requests"])
	assert.EqualValues(t, 1, resp.Hosts["www.linkedin.com"]["failures"])

	ctrl.disabled = true
	rec = do(e, http.MethodGet, "/health", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
}

func TestRequestIDIsPropagated(t *testing.T) {
	e := newServer(newFakeController())

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(echo.HeaderXRequestID))
}
