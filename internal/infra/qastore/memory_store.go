package qastore

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/iknowall-bot/internal/domain/qa"
)

// MemoryStore is an in-memory implementation of the Q&A store for tests/dev.
// A snapshot only survives as long as the process.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot *qa.Snapshot
	trending map[string]int64
	displays map[string]string
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		trending: make(map[string]int64),
		displays: make(map[string]string),
	}
}

// SaveSnapshot implements qa.Store.
func (s *MemoryStore) SaveSnapshot(_ context.Context, snapshot qa.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &snapshot
	return nil
}

// LoadSnapshot implements qa.Store.
func (s *MemoryStore) LoadSnapshot(_ context.Context) (qa.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return qa.Snapshot{}, false, nil
	}
	return *s.snapshot, true, nil
}

// IncrementQuery bumps the counter for a canonical question and records a display string.
func (s *MemoryStore) IncrementQuery(_ context.Context, canonical, display string) error {
	if canonical == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trending[canonical]++
	if _, exists := s.displays[canonical]; !exists {
		s.displays[canonical] = display
	}
	return nil
}

// TopQueries returns the most frequent canonical questions.
func (s *MemoryStore) TopQueries(_ context.Context, limit int) ([]qa.TrendingQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = qa.DefaultTrendingLimit
	}
	items := make([]qa.TrendingQuery, 0, len(s.trending))
	for canonical, count := range s.trending {
		display := s.displays[canonical]
		if display == "" {
			display = canonical
		}
		items = append(items, qa.TrendingQuery{Query: display, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Query < items[j].Query
		}
		return items[i].Count > items[j].Count
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

var _ qa.Store = (*MemoryStore)(nil)
