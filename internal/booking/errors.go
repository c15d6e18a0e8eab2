package booking

import "errors"

var (
	// ErrSlotTaken is returned when an active appointment already occupies
	// the (doctor, date, time) slot.
	ErrSlotTaken = errors.New("booking: time slot is already booked")

	// ErrDoctorUnavailable is returned when the doctor does not exist or is
	// not verified.
	ErrDoctorUnavailable = errors.New("booking: doctor not found or not available")

	// ErrInvalidDate is returned for malformed date/time input.
	ErrInvalidDate = errors.New("booking: invalid appointment date or time")

	// ErrDateInPast is returned when the appointment date is before today.
	ErrDateInPast = errors.New("booking: cannot book an appointment in the past")

	// ErrInvalidKind is returned for an unknown consultation kind.
	ErrInvalidKind = errors.New("booking: invalid consultation kind")

	// ErrInvalidTransition is returned for a (from, to) status pair outside
	// the lifecycle table.
	ErrInvalidTransition = errors.New("booking: invalid appointment status transition")

	// ErrNotAuthorized is returned when the actor has no right to act on the
	// appointment.
	ErrNotAuthorized = errors.New("booking: not authorized for this appointment")

	// ErrNotesNotAllowed is returned when clinical notes are attached to a
	// transition other than completion, or by the wrong actor.
	ErrNotesNotAllowed = errors.New("booking: notes may only be attached by the doctor or admin on completion")

	// ErrNotFound is returned when the appointment does not exist.
	ErrNotFound = errors.New("booking: appointment not found")
)
