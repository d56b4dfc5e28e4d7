package querylog

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/iknowall-bot/internal/domain/qa"
)

const defaultMemoryCapacity = 10000

// MemoryRepository keeps the most recent query records in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	capacity int
	records  []qa.QueryRecord
}

// NewMemoryRepository constructs a bounded in-memory log.
func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	return &MemoryRepository{capacity: capacity}
}

// Record implements qa.QueryLog.
func (r *MemoryRepository) Record(_ context.Context, record qa.QueryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	if over := len(r.records) - r.capacity; over > 0 {
		r.records = append([]qa.QueryRecord(nil), r.records[over:]...)
	}
	return nil
}

// TopMisses implements qa.QueryLog.
func (r *MemoryRepository) TopMisses(_ context.Context, limit int) ([]qa.MissedQuery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byQuery := make(map[string]*qa.MissedQuery)
	for _, rec := range r.records {
		if rec.Outcome != qa.OutcomeNotFound {
			continue
		}
		miss, ok := byQuery[rec.Query]
		if !ok {
			miss = &qa.MissedQuery{Query: rec.Query}
			byQuery[rec.Query] = miss
		}
		miss.Count++
		if rec.CreatedAt.After(miss.LastSeen) {
			miss.LastSeen = rec.CreatedAt
		}
	}
	out := make([]qa.MissedQuery, 0, len(byQuery))
	for _, miss := range byQuery {
		out = append(out, *miss)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ qa.QueryLog = (*MemoryRepository)(nil)
