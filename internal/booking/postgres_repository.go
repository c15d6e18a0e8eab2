package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database. Slot
// uniqueness is enforced by a partial unique index over active statuses, so
// the conflict check and the insert are one atomic statement.
type PostgresRepository struct {
	pool rowQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("booking: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithExec(exec rowQuerier) *PostgresRepository {
	if exec == nil {
		panic("booking: exec required")
	}
	return &PostgresRepository{pool: exec}
}

// Create inserts the appointment. A conflicting active slot makes the
// statement a no-op, reported as ErrSlotTaken.
func (r *PostgresRepository) Create(ctx context.Context, a *Appointment) error {
	query := `
		INSERT INTO appointments
			(id, patient_id, doctor_id, appointment_date, appointment_time,
			 consultation_kind, status, symptom_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (doctor_id, appointment_date, appointment_time)
			WHERE status IN ('pending', 'confirmed')
		DO NOTHING
	`
	ct, err := r.pool.Exec(ctx, query,
		a.ID,
		a.PatientID,
		a.DoctorID,
		a.Date,
		a.Time,
		a.Kind,
		a.Status,
		a.SymptomNotes,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("booking: insert appointment: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrSlotTaken
	}
	return nil
}

// GetByID fetches one appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id,
		       to_char(appointment_date, 'YYYY-MM-DD'),
		       to_char(appointment_time, 'HH24:MI'),
		       consultation_kind, status,
		       symptom_notes, clinical_notes, prescription_text,
		       created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	var a Appointment
	if err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&a.Date,
		&a.Time,
		&a.Kind,
		&a.Status,
		&a.SymptomNotes,
		&a.ClinicalNotes,
		&a.PrescriptionText,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("booking: select appointment: %w", err)
	}
	return &a, nil
}

// UpdateStatus persists the lifecycle fields of the appointment. The
// UPDATE is conditional on the status the caller read, so two racing
// transitions cannot both commit: the loser matches zero rows and the
// stale write is discarded.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, a *Appointment, from Status) error {
	query := `
		UPDATE appointments
		SET status = $2,
		    clinical_notes = $3,
		    prescription_text = $4,
		    updated_at = $5
		WHERE id = $1 AND status = $6
	`
	ct, err := r.pool.Exec(ctx, query,
		a.ID,
		a.Status,
		a.ClinicalNotes,
		a.PrescriptionText,
		a.UpdatedAt,
		from,
	)
	if err != nil {
		// Moving back to an active status can collide with a booking that
		// took the released slot in the meantime.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotTaken
		}
		return fmt.Errorf("booking: update status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		// Either the appointment is gone or a concurrent transition moved
		// it first; re-read to tell the two apart.
		if _, err := r.GetByID(ctx, a.ID); err != nil {
			return err
		}
		return ErrInvalidTransition
	}
	return nil
}
