package qa

import "context"

// DocumentSource returns the full text of the Q&A document.
// Implementations own their own request timeout.
type DocumentSource interface {
	FetchText(ctx context.Context) (string, error)
}

// Store keeps the last good document and the trending counters.
type Store interface {
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
	LoadSnapshot(ctx context.Context) (Snapshot, bool, error)
	IncrementQuery(ctx context.Context, canonical, display string) error
	TopQueries(ctx context.Context, limit int) ([]TrendingQuery, error)
}

// QueryLog records every answered query.
type QueryLog interface {
	Record(ctx context.Context, record QueryRecord) error
	TopMisses(ctx context.Context, limit int) ([]MissedQuery, error)
}
