package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores usage records in the relational database.
type PostgresRepository struct {
	pool rowQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("quota: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithExec(exec rowQuerier) *PostgresRepository {
	if exec == nil {
		panic("quota: exec required")
	}
	return &PostgresRepository{pool: exec}
}

// CountInWindow counts usage inside [start, end). The bounds are explicit
// timestamps, not date-string prefixes, so month length never matters.
func (r *PostgresRepository) CountInWindow(ctx context.Context, userID string, kind ServiceKind, start, end time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM usage_records
		WHERE user_id = $1
		  AND service_kind = $2
		  AND occurred_at >= $3
		  AND occurred_at < $4
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID, kind, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("quota: count usage: %w", err)
	}
	return count, nil
}

// Insert appends one usage record.
func (r *PostgresRepository) Insert(ctx context.Context, rec UsageRecord) error {
	query := `
		INSERT INTO usage_records (user_id, service_kind, occurred_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.pool.Exec(ctx, query, rec.UserID, rec.Kind, rec.OccurredAt); err != nil {
		return fmt.Errorf("quota: insert usage: %w", err)
	}
	return nil
}
