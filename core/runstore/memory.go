package runstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps runs in memory for tests or one-shot simulations.
type MemoryStore struct {
	mu   sync.Mutex
	runs []Run
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Append stores a copy of the run.
func (s *MemoryStore) Append(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

// Query returns runs matching q, oldest first.
func (s *MemoryStore) Query(_ context.Context, q Query) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []Run
	for _, r := range s.runs {
		if q.Match(r) {
			res = append(res, r)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return ApplyLimit(res, q.Limit), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
