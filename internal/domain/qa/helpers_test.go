package qa

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var errSourceDown = errors.New("docs api unavailable")

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type stubSource struct {
	mu    sync.Mutex
	text  string
	err   error
	calls atomic.Int32
	block chan struct{}
}

func (s *stubSource) FetchText(ctx context.Context) (string, error) {
	s.calls.Add(1)
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text, s.err
}

func (s *stubSource) set(text string, err error) {
	s.mu.Lock()
	s.text, s.err = text, err
	s.mu.Unlock()
}

type stubStore struct {
	mu        sync.Mutex
	snapshot  *Snapshot
	saveErr   error
	counts    map[string]int64
	displays  map[string]string
	top       []TrendingQuery
	topErr    error
	topLimit  int
	saveCalls int
}

func newStubStore() *stubStore {
	return &stubStore{counts: map[string]int64{}, displays: map[string]string{}}
}

func (s *stubStore) SaveSnapshot(_ context.Context, snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.snapshot = &snapshot
	return nil
}

func (s *stubStore) LoadSnapshot(context.Context) (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return Snapshot{}, false, nil
	}
	return *s.snapshot, true, nil
}

func (s *stubStore) IncrementQuery(_ context.Context, canonical, display string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[canonical]++
	if _, ok := s.displays[canonical]; !ok {
		s.displays[canonical] = display
	}
	return nil
}

func (s *stubStore) TopQueries(_ context.Context, limit int) ([]TrendingQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topLimit = limit
	return s.top, s.topErr
}

type stubQueryLog struct {
	mu      sync.Mutex
	records []QueryRecord
	misses  []MissedQuery
	err     error
}

func (l *stubQueryLog) Record(_ context.Context, record QueryRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.records = append(l.records, record)
	return nil
}

func (l *stubQueryLog) TopMisses(context.Context, int) ([]MissedQuery, error) {
	return l.misses, l.err
}

func newTestCache(source DocumentSource, store Store, clock *fakeClock) *Cache {
	cache := NewCache(Config{RefreshInterval: time.Hour}, source, store, newTestLogger())
	cache.now = clock.Now
	return cache
}
