package querylog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/iknowall-bot/internal/domain/qa"
)

// Schema creates the query log table when it is missing.
const Schema = `
CREATE TABLE IF NOT EXISTS qa_queries (
	id         UUID PRIMARY KEY,
	query      TEXT NOT NULL,
	outcome    TEXT NOT NULL,
	mode       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS qa_queries_outcome_idx ON qa_queries (outcome, query);
`

// PostgresRepository implements qa.QueryLog using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate applies Schema.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, Schema)
	return err
}

// Record inserts one query row.
func (r *PostgresRepository) Record(ctx context.Context, record qa.QueryRecord) error {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		id = uuid.New()
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO qa_queries (id, query, outcome, mode, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, record.Query, record.Outcome, string(record.Mode), record.CreatedAt)
	return err
}

// TopMisses aggregates unanswered queries, most frequent first.
func (r *PostgresRepository) TopMisses(ctx context.Context, limit int) ([]qa.MissedQuery, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT query, COUNT(*) AS hits, MAX(created_at) AS last_seen
		FROM qa_queries
		WHERE outcome = $1
		GROUP BY query
		ORDER BY hits DESC, last_seen DESC
		LIMIT $2
	`, qa.OutcomeNotFound, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []qa.MissedQuery
	for rows.Next() {
		var miss qa.MissedQuery
		if err := rows.Scan(&miss.Query, &miss.Count, &miss.LastSeen); err != nil {
			return nil, err
		}
		out = append(out, miss)
	}
	return out, rows.Err()
}

var _ qa.QueryLog = (*PostgresRepository)(nil)
