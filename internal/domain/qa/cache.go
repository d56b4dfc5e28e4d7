package qa

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/yanqian/iknowall-bot/pkg/errors"
)

const refreshKey = "refresh"

// Cache owns the live AnswerStore and rebuilds it from the document source
// once the refresh interval has elapsed. Readers never block on a rebuild
// they did not start and always see a fully built store.
type Cache struct {
	source    DocumentSource
	snapshots Store
	interval  time.Duration
	plan      []MatchMode
	logger    *slog.Logger
	now       func() time.Time

	live    atomic.Pointer[AnswerStore]
	group   singleflight.Group
	fetches atomic.Uint64

	mu              sync.RWMutex
	lastRefreshedAt time.Time
	lastErr         error
	fromSnapshot    bool
}

// NewCache builds an empty cache; the first query triggers the initial fetch.
// snapshots may be nil.
func NewCache(cfg Config, source DocumentSource, snapshots Store, logger *slog.Logger) *Cache {
	return &Cache{
		source:    source,
		snapshots: snapshots,
		interval:  cfg.RefreshInterval,
		plan:      SanitizeMatchers(cfg.Matchers),
		logger:    logger.With("component", "qa.cache"),
		now:       time.Now,
	}
}

// EnsureFresh rebuilds the store when it is stale. A failed fetch keeps the
// previous store, leaves the refresh timestamp alone and returns a fetch_error.
func (c *Cache) EnsureFresh(ctx context.Context) error {
	if !c.Stale() {
		return nil
	}
	_, err, _ := c.group.Do(refreshKey, func() (any, error) {
		// another flight may have finished between the check and Do
		if !c.Stale() {
			return uint64(0), nil
		}
		return c.fetch(ctx)
	})
	return err
}

// Refresh rebuilds the store regardless of the interval. When a refresh is
// already fetching, Refresh waits for it and then fetches again unless that
// fetch started after the call.
func (c *Cache) Refresh(ctx context.Context) error {
	called := c.fetches.Load()
	for {
		v, err, _ := c.group.Do(refreshKey, func() (any, error) {
			return c.fetch(ctx)
		})
		if started, _ := v.(uint64); started > called {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return apperrors.Wrap(apperrors.CodeFetch, "document fetch canceled", ctxErr)
		}
	}
}

// fetch runs one refresh inside the flight. The flight is shared by every
// waiter, so it does not inherit the leader's cancellation; sources bound
// their own timeouts.
func (c *Cache) fetch(ctx context.Context) (uint64, error) {
	seq := c.fetches.Add(1)
	return seq, c.refresh(context.WithoutCancel(ctx))
}

// Query refreshes best effort and looks the text up in the current store.
func (c *Cache) Query(ctx context.Context, text string) (Match, bool) {
	_ = c.EnsureFresh(ctx) // logged by refresh; stale data keeps serving
	return c.Current().Lookup(text)
}

// Current returns the live store, nil before the first successful load.
func (c *Cache) Current() *AnswerStore {
	return c.live.Load()
}

// Loaded reports whether any store, fetched or restored, is live.
func (c *Cache) Loaded() bool {
	return c.live.Load() != nil
}

// Stale reports whether the refresh interval has elapsed since the last successful refresh.
func (c *Cache) Stale() bool {
	c.mu.RLock()
	last := c.lastRefreshedAt
	c.mu.RUnlock()
	if last.IsZero() {
		return true
	}
	return c.now().Sub(last) >= c.interval
}

// Status snapshots the cache state.
func (c *Cache) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	status := Status{
		Entries:         c.live.Load().Len(),
		Loaded:          c.live.Load() != nil,
		Stale:           c.lastRefreshedAt.IsZero() || c.now().Sub(c.lastRefreshedAt) >= c.interval,
		LastRefreshedAt: c.lastRefreshedAt,
		RefreshInterval: c.interval.String(),
		FromSnapshot:    c.fromSnapshot,
	}
	if c.lastErr != nil {
		status.LastError = c.lastErr.Error()
	}
	return status
}

// Run refreshes on a ticker until ctx is done. Query-time checks keep working
// alongside it.
func (c *Cache) Run(ctx context.Context) error {
	if c.interval <= 0 {
		<-ctx.Done()
		return nil
	}
	_ = c.EnsureFresh(ctx)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = c.EnsureFresh(ctx)
		}
	}
}

func (c *Cache) refresh(ctx context.Context) error {
	start := c.now()
	text, err := c.source.FetchText(ctx)
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		c.logger.Warn("qa document fetch failed, serving stale answers", "error", err, "loaded", c.Loaded())
		if !c.Loaded() {
			c.restoreSnapshot(ctx)
		}
		return apperrors.Wrap(apperrors.CodeFetch, "document fetch failed", err)
	}

	store := NewAnswerStore(Parse(text), c.plan)
	c.live.Store(store)

	fetchedAt := c.now()
	c.mu.Lock()
	c.lastRefreshedAt = fetchedAt
	c.lastErr = nil
	c.fromSnapshot = false
	c.mu.Unlock()

	if store.Len() == 0 {
		c.logger.Warn("qa document parsed to zero entries")
	}
	c.logger.Info("qa cache refreshed", "entries", store.Len(), "latency_ms", fetchedAt.Sub(start).Milliseconds())

	if c.snapshots != nil {
		if err := c.snapshots.SaveSnapshot(ctx, Snapshot{Text: text, FetchedAt: fetchedAt}); err != nil {
			c.logger.Warn("qa snapshot save failed", "error", err)
		}
	}
	return nil
}

// restoreSnapshot serves the last good document while the source is down.
// The refresh timestamp stays zero so the next call retries the source.
func (c *Cache) restoreSnapshot(ctx context.Context) {
	if c.snapshots == nil {
		return
	}
	snapshot, ok, err := c.snapshots.LoadSnapshot(ctx)
	if err != nil {
		c.logger.Warn("qa snapshot load failed", "error", err)
		return
	}
	if !ok {
		return
	}
	store := NewAnswerStore(Parse(snapshot.Text), c.plan)
	if !c.live.CompareAndSwap(nil, store) {
		return
	}
	c.mu.Lock()
	c.fromSnapshot = true
	c.mu.Unlock()
	c.logger.Info("qa cache restored from snapshot", "entries", store.Len(), "fetched_at", snapshot.FetchedAt)
}
