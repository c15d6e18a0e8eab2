package quota

import (
	"context"
	"sync"
	"time"
)

// Repository stores metered-usage records. Records are append-only and
// never mutated or deleted.
type Repository interface {
	// CountInWindow counts records for (userID, kind) with occurredAt in
	// the half-open interval [start, end).
	CountInWindow(ctx context.Context, userID string, kind ServiceKind, start, end time.Time) (int, error)

	// Insert appends one usage record.
	Insert(ctx context.Context, rec UsageRecord) error
}

// InMemoryRepository keeps usage records in a slice, for tests and local
// runs.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records []UsageRecord
}

// NewInMemoryRepository creates an empty usage store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) CountInWindow(ctx context.Context, userID string, kind ServiceKind, start, end time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, rec := range r.records {
		if rec.UserID == userID && rec.Kind == kind &&
			!rec.OccurredAt.Before(start) && rec.OccurredAt.Before(end) {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryRepository) Insert(ctx context.Context, rec UsageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}
