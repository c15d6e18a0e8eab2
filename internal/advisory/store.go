package advisory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/quota"
)

// Record is one persisted advisory result, kept for the user's history.
type Record struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Kind      quota.ServiceKind `json:"service_kind"`
	Input     string            `json:"input"`
	Result    Result            `json:"result"`
	CreatedAt time.Time         `json:"created_at"`
}

// Store persists advisory results. Writes are best effort from the
// caller's perspective: a failed insert must not fail the advisory call.
type Store interface {
	Insert(ctx context.Context, rec *Record) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Record, error)
}

type storeQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore keeps advisory history in the relational database. The
// structured result is stored as a jsonb column.
type PostgresStore struct {
	pool storeQuerier
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("advisory: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

func newPostgresStoreWithExec(exec storeQuerier) *PostgresStore {
	if exec == nil {
		panic("advisory: exec required")
	}
	return &PostgresStore{pool: exec}
}

// Insert appends one advisory record.
func (s *PostgresStore) Insert(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO advisory_results
			(id, user_id, service_kind, input_text, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.pool.Exec(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Kind,
		rec.Input,
		rec.Result,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("advisory: insert record: %w", err)
	}
	return nil
}

// ListByUser returns the user's advisory history, newest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	query := `
		SELECT id, user_id, service_kind, input_text, result, created_at
		FROM advisory_results
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("advisory: list records: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Kind,
			&rec.Input,
			&rec.Result,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("advisory: scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("advisory: list records: %w", err)
	}
	return records, nil
}

// InMemoryStore keeps records in process memory, for tests and local runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Insert(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *rec)
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID string, limit, offset int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Record, 0, limit)
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].UserID != userID {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		matched = append(matched, s.records[i])
		if len(matched) == limit {
			break
		}
	}
	return matched, nil
}
