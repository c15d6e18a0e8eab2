package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/identity"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/notify"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/observability/metrics"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/pkg/logging"
)

var bookingTracer = otel.Tracer("sensidoc.internal.booking")

// Notifier delivers best-effort booking confirmations.
type Notifier interface {
	BookingConfirmed(ctx context.Context, c notify.Confirmation)
}

// Scheduler validates booking requests, reserves slots against the ledger
// and drives the appointment status lifecycle.
type Scheduler struct {
	repo     Repository
	doctors  DoctorDirectory
	notifier Notifier
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewScheduler constructs a booking scheduler. notifier and m may be nil.
func NewScheduler(repo Repository, doctors DoctorDirectory, notifier Notifier, m *metrics.BookingMetrics, logger *logging.Logger) *Scheduler {
	if repo == nil {
		panic("booking: repository required")
	}
	if doctors == nil {
		panic("booking: doctor directory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		repo:     repo,
		doctors:  doctors,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Book reserves the slot and creates a pending appointment. The conflict
// check and insert are one atomic unit inside the repository, so two
// concurrent calls for the same slot yield exactly one appointment and one
// ErrSlotTaken.
func (s *Scheduler) Book(ctx context.Context, cmd BookCommand) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("sensidoc.doctor_id", cmd.DoctorID),
		attribute.String("sensidoc.slot", cmd.Date+" "+cmd.Time),
	)

	if err := cmd.Validate(s.now().UTC()); err != nil {
		s.metrics.ObserveBooking("invalid")
		return nil, err
	}

	verified, err := s.doctors.IsVerified(ctx, cmd.DoctorID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !verified {
		s.metrics.ObserveBooking("doctor_unavailable")
		return nil, ErrDoctorUnavailable
	}

	now := s.now().UTC()
	a := &Appointment{
		ID:           uuid.NewString(),
		PatientID:    cmd.PatientID,
		DoctorID:     cmd.DoctorID,
		Date:         cmd.Date,
		Time:         cmd.Time,
		Kind:         cmd.Kind,
		Status:       StatusPending,
		SymptomNotes: cmd.SymptomNotes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.metrics.ObserveBooking("slot_taken")
			return nil, ErrSlotTaken
		}
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveBooking("created")
	s.logger.Info("appointment booked",
		"appointment_id", a.ID,
		"doctor_id", a.DoctorID,
		"date", a.Date,
		"time", a.Time,
	)

	if s.notifier != nil {
		// Fire-and-forget: delivery must never block or fail the booking.
		confirmation := notify.Confirmation{
			AppointmentID: a.ID,
			PatientID:     a.PatientID,
			DoctorID:      a.DoctorID,
			Date:          a.Date,
			Time:          a.Time,
			Kind:          string(a.Kind),
		}
		go s.notifier.BookingConfirmed(context.WithoutCancel(ctx), confirmation)
	}

	return a, nil
}

// Transition moves the appointment through its lifecycle on behalf of the
// actor. An actor with no relation to the appointment is rejected before
// the transition table is consulted.
func (s *Scheduler) Transition(ctx context.Context, appointmentID string, actor identity.Identity, to Status, patch *NotesPatch) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("sensidoc.appointment_id", appointmentID),
		attribute.String("sensidoc.to_status", string(to)),
	)

	if !to.IsValid() || to == StatusPending {
		s.metrics.ObserveTransition(string(to), "invalid")
		return nil, ErrInvalidTransition
	}

	a, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	related, allowedFor := a.relation(actor.UserID, actor.Role)
	if !related {
		s.metrics.ObserveTransition(string(to), "unauthorized")
		return nil, ErrNotAuthorized
	}

	actors, ok := transitionTable[a.Status][to]
	if !ok {
		s.metrics.ObserveTransition(string(to), "invalid")
		return nil, ErrInvalidTransition
	}
	if !allowedFor(actors) {
		s.metrics.ObserveTransition(string(to), "unauthorized")
		return nil, ErrNotAuthorized
	}

	if !patch.empty() {
		if to != StatusCompleted || actor.Role == identity.RolePatient {
			return nil, ErrNotesNotAllowed
		}
		if patch.ClinicalNotes != "" {
			a.ClinicalNotes = patch.ClinicalNotes
		}
		if patch.PrescriptionText != "" {
			a.PrescriptionText = patch.PrescriptionText
		}
	}

	from := a.Status
	a.Status = to
	a.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateStatus(ctx, a, from); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			s.metrics.ObserveTransition(string(to), "conflict")
			return nil, ErrInvalidTransition
		}
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveTransition(string(to), "ok")
	s.logger.Info("appointment transitioned",
		"appointment_id", a.ID,
		"from", from,
		"to", to,
		"actor_role", actor.Role,
	)
	return a, nil
}

// GetVisible returns the appointment if the actor may view it: patients see
// their own, doctors see their assignments, admins see everything.
func (s *Scheduler) GetVisible(ctx context.Context, appointmentID string, actor identity.Identity) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case identity.RoleAdmin:
		return a, nil
	case identity.RoleDoctor:
		if a.DoctorID == actor.UserID {
			return a, nil
		}
	case identity.RolePatient:
		if a.PatientID == actor.UserID {
			return a, nil
		}
	}
	return nil, ErrNotAuthorized
}
