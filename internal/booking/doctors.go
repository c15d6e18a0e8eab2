package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/nishanthgowda94486-cpu/sensidoc.com/pkg/logging"
)

// DoctorDirectory answers whether a doctor exists and is verified for
// booking. Unknown doctors report false, not an error.
type DoctorDirectory interface {
	IsVerified(ctx context.Context, doctorID string) (bool, error)
}

// PostgresDoctorDirectory reads the verification flag from the doctors table.
type PostgresDoctorDirectory struct {
	pool rowQuerier
}

// NewPostgresDoctorDirectory initializes a directory backed by pgx.
func NewPostgresDoctorDirectory(pool rowQuerier) *PostgresDoctorDirectory {
	if pool == nil {
		panic("booking: pgx pool required")
	}
	return &PostgresDoctorDirectory{pool: pool}
}

// IsVerified returns the doctor's verification flag.
func (d *PostgresDoctorDirectory) IsVerified(ctx context.Context, doctorID string) (bool, error) {
	query := `SELECT is_verified FROM doctors WHERE id = $1`
	var verified bool
	if err := d.pool.QueryRow(ctx, query, doctorID).Scan(&verified); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("booking: select doctor: %w", err)
	}
	return verified, nil
}

// CachedDoctorDirectory puts a Redis cache in front of another directory.
// The flag is read on every booking and changes rarely; cache failures
// degrade to the inner directory, never to an error.
type CachedDoctorDirectory struct {
	inner  DoctorDirectory
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedDoctorDirectory wraps inner with a Redis cache.
func NewCachedDoctorDirectory(inner DoctorDirectory, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedDoctorDirectory {
	if inner == nil {
		panic("booking: inner directory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedDoctorDirectory{inner: inner, client: client, ttl: ttl, logger: logger}
}

func doctorCacheKey(doctorID string) string {
	return "doctor:verified:" + doctorID
}

// IsVerified consults the cache first and falls back to the inner directory.
func (d *CachedDoctorDirectory) IsVerified(ctx context.Context, doctorID string) (bool, error) {
	if d.client != nil {
		val, err := d.client.Get(ctx, doctorCacheKey(doctorID)).Result()
		switch {
		case err == nil:
			return val == "1", nil
		case !errors.Is(err, redis.Nil):
			d.logger.Warn("doctor cache read failed", "error", err, "doctor_id", doctorID)
		}
	}

	verified, err := d.inner.IsVerified(ctx, doctorID)
	if err != nil {
		return false, err
	}

	if d.client != nil {
		val := "0"
		if verified {
			val = "1"
		}
		if err := d.client.Set(ctx, doctorCacheKey(doctorID), val, d.ttl).Err(); err != nil {
			d.logger.Warn("doctor cache write failed", "error", err, "doctor_id", doctorID)
		}
	}
	return verified, nil
}

// StaticDoctorDirectory is a fixed directory for tests and local runs.
type StaticDoctorDirectory struct {
	verified map[string]bool
}

// NewStaticDoctorDirectory builds a directory from a verified-flag map.
func NewStaticDoctorDirectory(verified map[string]bool) *StaticDoctorDirectory {
	if verified == nil {
		verified = make(map[string]bool)
	}
	return &StaticDoctorDirectory{verified: verified}
}

func (d *StaticDoctorDirectory) IsVerified(ctx context.Context, doctorID string) (bool, error) {
	return d.verified[doctorID], nil
}
