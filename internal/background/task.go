package background

import (
	"errors"
	"sort"
	"sync"
	"time"

	"jobscribe/pkg/models"
)

var (
	// ErrBatchRunning is returned when a batch is started while another holds the session
	ErrBatchRunning = errors.New("a batch is already running")

	// ErrBatchNotFound is returned for unknown or expired handles
	ErrBatchNotFound = errors.New("batch not found")
)

// BatchStore keeps batches addressable by handle after they finish
type BatchStore interface {
	Store(batch *Batch)
	Get(id string) (*Batch, error)
	Delete(id string)
	// Cleanup removes finished batches older than maxAge and reports how many went
	Cleanup(maxAge time.Duration) int
	// List returns every batch, newest first
	List() []*Batch
}

// InMemoryBatchStore implements BatchStore using in-memory storage
type InMemoryBatchStore struct {
	mu      sync.RWMutex
	batches map[string]*Batch
}

// NewInMemoryBatchStore creates a new in-memory batch store
func NewInMemoryBatchStore() *InMemoryBatchStore {
	return &InMemoryBatchStore{
		batches: make(map[string]*Batch),
	}
}

func (s *InMemoryBatchStore) Store(batch *Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[batch.ID()] = batch
}

func (s *InMemoryBatchStore) Get(id string) (*Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch, ok := s.batches[id]
	if !ok {
		return nil, ErrBatchNotFound
	}
	return batch, nil
}

func (s *InMemoryBatchStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.batches, id)
}

func (s *InMemoryBatchStore) Cleanup(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, batch := range s.batches {
		snap := batch.Snapshot()
		if snap.State.Terminal() && snap.FinishedAt != nil && snap.FinishedAt.Before(cutoff) {
			delete(s.batches, id)
			removed++
		}
	}
	return removed
}

func (s *InMemoryBatchStore) List() []*Batch {
	s.mu.RLock()
	batches := make([]*Batch, 0, len(s.batches))
	for _, batch := range s.batches {
		batches = append(batches, batch)
	}
	s.mu.RUnlock()

	sort.Slice(batches, func(i, j int) bool {
		return batches[i].startedAt.After(batches[j].startedAt)
	})
	return batches
}

// snapshots copies the progress of each batch
func snapshots(batches []*Batch) []models.BatchSnapshot {
	out := make([]models.BatchSnapshot, 0, len(batches))
	for _, batch := range batches {
		out = append(out, batch.Snapshot())
	}
	return out
}
