package querylog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/iknowall-bot/internal/domain/qa"
)

func TestMemoryRepositoryTopMisses(t *testing.T) {
	repo := NewMemoryRepository(0)
	ctx := context.Background()
	base := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

	records := []qa.QueryRecord{
		{ID: "1", Query: "wetin be love", Outcome: qa.OutcomeNotFound, CreatedAt: base},
		{ID: "2", Query: "hello", Outcome: qa.OutcomeMatched, Mode: qa.MatchModeExact, CreatedAt: base},
		{ID: "3", Query: "wetin be love", Outcome: qa.OutcomeNotFound, CreatedAt: base.Add(time.Minute)},
		{ID: "4", Query: "who win match", Outcome: qa.OutcomeNotFound, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "5", Query: "what is life", Outcome: qa.OutcomeUnavailable, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, rec := range records {
		require.NoError(t, repo.Record(ctx, rec))
	}

	misses, err := repo.TopMisses(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []qa.MissedQuery{
		{Query: "wetin be love", Count: 2, LastSeen: base.Add(time.Minute)},
		{Query: "who win match", Count: 1, LastSeen: base.Add(2 * time.Minute)},
	}, misses)

	misses, err = repo.TopMisses(ctx, 1)
	require.NoError(t, err)
	require.Len(t, misses, 1)
}

func TestMemoryRepositoryIsBounded(t *testing.T) {
	repo := NewMemoryRepository(2)
	ctx := context.Background()
	for _, q := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Record(ctx, qa.QueryRecord{Query: q, Outcome: qa.OutcomeNotFound}))
	}

	misses, err := repo.TopMisses(ctx, 0)
	require.NoError(t, err)
	require.Len(t, misses, 2)
	for _, miss := range misses {
		require.NotEqual(t, "a", miss.Query)
	}
}
