package background

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"jobscribe/internal/browser"
	"jobscribe/internal/logging"
	"jobscribe/internal/store"
	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

const (
	urlA = "https://www.linkedin.com/jobs/view/4011111111/"
	urlB = "https://www.linkedin.com/jobs/view/4022222222/"
	urlC = "https://www.linkedin.com/jobs/view/4033333333/"
)

type fakeSession struct {
	mu     sync.Mutex
	closed int
}

func (s *fakeSession) NewPage(context.Context) (browser.Page, error) {
	return nil, errors.New("pages are not used by the fake pipeline")
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *fakeSession) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakePipeline struct {
	mu      sync.Mutex
	errs    map[string]error
	calls   []string
	onCall  func(url string)
	release chan struct{}
}

func (p *fakePipeline) Scrape(ctx context.Context, _ browser.Session, url string) (models.Record, error) {
	p.mu.Lock()
	p.calls = append(p.calls, url)
	onCall, release := p.onCall, p.release
	p.mu.Unlock()

	if onCall != nil {
		onCall(url)
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return models.Record{}, ctx.Err()
		}
	}

	if err := p.errs[url]; err != nil {
		return models.Record{}, err
	}

	id := utils.ExtractListingID(url)
	return models.Record{
		ID:          id,
		Title:       "Engineer " + id,
		CompanyName: "Acme",
		JobURL:      url,
	}, nil
}

func (p *fakePipeline) called() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func sessionFactory(session *fakeSession) browser.Factory {
	return func(context.Context, browser.Options) (browser.Session, error) {
		return session, nil
	}
}

// testBatch builds a batch writing into a temp dir with no politeness delay
func testBatch(t *testing.T, urls []string, pipeline *fakePipeline, session *fakeSession) (*Batch, *store.JSONStore) {
	t.Helper()

	collection := store.NewJSONStore(filepath.Join(t.TempDir(), "jobs.json"))
	batch := NewBatch("batch-1", urls, BatchConfig{
		Pipeline:   pipeline,
		Sessions:   sessionFactory(session),
		Collection: collection,
		Logger:     logging.NewNopLogger(),
	})
	batch.delay = func() time.Duration { return 0 }
	return batch, collection
}

func waitDone(t *testing.T, batch *Batch) {
	t.Helper()
	select {
	case <-batch.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("batch did not finish")
	}
}
