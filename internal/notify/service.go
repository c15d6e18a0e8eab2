package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nishanthgowda94486-cpu/sensidoc.com/pkg/logging"
)

// Confirmation carries what a booking confirmation email needs.
type Confirmation struct {
	AppointmentID string
	PatientID     string
	DoctorID      string
	Date          string
	Time          string
	Kind          string
}

// ContactDirectory resolves a user id to a deliverable address.
type ContactDirectory interface {
	Contact(ctx context.Context, userID string) (name, email string, err error)
}

type pgRow interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresContactDirectory reads contact details from the users table.
type PostgresContactDirectory struct {
	pool pgRow
}

func NewPostgresContactDirectory(pool pgRow) *PostgresContactDirectory {
	if pool == nil {
		panic("notify: pgx pool required")
	}
	return &PostgresContactDirectory{pool: pool}
}

func (d *PostgresContactDirectory) Contact(ctx context.Context, userID string) (string, string, error) {
	query := `SELECT full_name, email FROM users WHERE id = $1`
	var name, email string
	if err := d.pool.QueryRow(ctx, query, userID).Scan(&name, &email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", fmt.Errorf("notify: no contact for user %s", userID)
		}
		return "", "", fmt.Errorf("notify: select contact: %w", err)
	}
	return name, email, nil
}

// Service sends best-effort booking confirmations. Delivery failures are
// logged and swallowed; they never reach the booking caller.
type Service struct {
	email    EmailSender
	contacts ContactDirectory
	logger   *logging.Logger
}

// NewService creates a notification service. Both email and contacts may be
// nil, in which case confirmations are skipped.
func NewService(email EmailSender, contacts ContactDirectory, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, contacts: contacts, logger: logger}
}

// BookingConfirmed emails the patient that their booking was received.
func (s *Service) BookingConfirmed(ctx context.Context, c Confirmation) {
	if s == nil || s.email == nil || s.contacts == nil {
		return
	}

	name, addr, err := s.contacts.Contact(ctx, c.PatientID)
	if err != nil {
		s.logger.Warn("booking confirmation skipped", "error", err, "appointment_id", c.AppointmentID)
		return
	}

	msg := EmailMessage{
		To:      addr,
		ToName:  name,
		Subject: "Your SensiDoc appointment request",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour %s appointment on %s at %s has been received and is awaiting the doctor's confirmation.\n\nThe SensiDoc team",
			name, c.Kind, c.Date, c.Time,
		),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Warn("booking confirmation delivery failed", "error", err, "appointment_id", c.AppointmentID)
	}
}
