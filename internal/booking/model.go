package booking

import (
	"time"

	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/identity"
)

// ConsultationKind is how the consultation is held.
type ConsultationKind string

const (
	KindChat     ConsultationKind = "chat"
	KindVideo    ConsultationKind = "video"
	KindInPerson ConsultationKind = "in_person"
)

func (k ConsultationKind) IsValid() bool {
	switch k {
	case KindChat, KindVideo, KindInPerson:
		return true
	}
	return false
}

// Status is the appointment lifecycle state.
//
// State transitions:
//
//	pending   → confirmed | rejected | cancelled
//	confirmed → completed | cancelled
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether an appointment in this status occupies its slot.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// DateLayout and TimeLayout are the wire/storage formats for the slot key.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Appointment is a reservation of one slot of a doctor's schedule.
// Cancellation is a status value, never a row removal.
type Appointment struct {
	ID        string `json:"id"`
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`

	// Date is the calendar date and Time the time-of-day, local to the
	// doctor. Together with DoctorID they identify the slot.
	Date string           `json:"date"`
	Time string           `json:"time"`
	Kind ConsultationKind `json:"consultation_kind"`

	Status Status `json:"status"`

	SymptomNotes     string `json:"symptom_notes,omitempty"`
	ClinicalNotes    string `json:"clinical_notes,omitempty"`
	PrescriptionText string `json:"prescription_text,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// transitionTable maps each (from, to) pair to the actors allowed to drive
// it. Absence of a pair means the transition is invalid for everyone.
type actorSet struct {
	patient bool // the owning patient
	doctor  bool // the assigned doctor
	admin   bool
}

var transitionTable = map[Status]map[Status]actorSet{
	StatusPending: {
		StatusConfirmed: {doctor: true, admin: true},
		StatusRejected:  {doctor: true, admin: true},
		StatusCancelled: {patient: true, doctor: true, admin: true},
	},
	StatusConfirmed: {
		StatusCompleted: {doctor: true, admin: true},
		StatusCancelled: {patient: true, doctor: true, admin: true},
	},
}

// CanTransitionTo reports whether the (from, to) pair exists in the
// lifecycle table, regardless of actor.
func (a *Appointment) CanTransitionTo(to Status) bool {
	_, ok := transitionTable[a.Status][to]
	return ok
}

// relation classifies the actor against this appointment.
func (a *Appointment) relation(actorID string, role identity.Role) (related bool, allowed func(actorSet) bool) {
	switch role {
	case identity.RoleAdmin:
		return true, func(s actorSet) bool { return s.admin }
	case identity.RoleDoctor:
		if a.DoctorID != actorID {
			return false, nil
		}
		return true, func(s actorSet) bool { return s.doctor }
	case identity.RolePatient:
		if a.PatientID != actorID {
			return false, nil
		}
		return true, func(s actorSet) bool { return s.patient }
	}
	return false, nil
}

// NotesPatch carries the clinical output a doctor attaches on completion.
type NotesPatch struct {
	ClinicalNotes    string `json:"clinical_notes,omitempty"`
	PrescriptionText string `json:"prescription_text,omitempty"`
}

func (p *NotesPatch) empty() bool {
	return p == nil || (p.ClinicalNotes == "" && p.PrescriptionText == "")
}

// BookCommand is the input to Scheduler.Book.
type BookCommand struct {
	PatientID    string
	DoctorID     string
	Date         string
	Time         string
	Kind         ConsultationKind
	SymptomNotes string
}

// Validate checks the command's shape; slot availability and doctor
// verification are checked by the scheduler.
func (c *BookCommand) Validate(today time.Time) error {
	if !c.Kind.IsValid() {
		return ErrInvalidKind
	}
	day, err := time.Parse(DateLayout, c.Date)
	if err != nil {
		return ErrInvalidDate
	}
	if _, err := time.Parse(TimeLayout, c.Time); err != nil {
		return ErrInvalidDate
	}
	// Compare calendar dates only; a slot earlier today is still bookable.
	todayDay := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(todayDay) {
		return ErrDateInPast
	}
	return nil
}
