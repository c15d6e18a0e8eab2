package booking

import (
	"context"
	"sync"
)

// Repository is the slot ledger: the durable authority for appointments and
// slot conflicts.
type Repository interface {
	// Create inserts a new appointment. It must be atomic with respect to
	// other Create calls targeting the same (doctor, date, time) slot and
	// returns ErrSlotTaken when an active appointment already holds it.
	Create(ctx context.Context, a *Appointment) error

	GetByID(ctx context.Context, id string) (*Appointment, error)

	// UpdateStatus persists the status, notes and updated-at of an
	// appointment previously loaded with GetByID. The write only commits
	// while the stored status still equals from; a concurrent transition
	// that moved the appointment first makes this call fail with
	// ErrInvalidTransition, and the stale write is discarded.
	UpdateStatus(ctx context.Context, a *Appointment, from Status) error
}

// InMemoryRepository keeps appointments in a map. The conflict check and
// insert run under one lock, matching the serialization the Postgres
// repository gets from its unique index.
type InMemoryRepository struct {
	mu           sync.RWMutex
	appointments map[string]*Appointment
}

// NewInMemoryRepository creates an empty in-memory slot ledger.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{appointments: make(map[string]*Appointment)}
}

// Create inserts the appointment unless an active one occupies the slot.
func (r *InMemoryRepository) Create(ctx context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.appointments {
		if existing.DoctorID == a.DoctorID &&
			existing.Date == a.Date &&
			existing.Time == a.Time &&
			existing.Status.IsActive() {
			return ErrSlotTaken
		}
	}

	clone := *a
	r.appointments[a.ID] = &clone
	return nil
}

// GetByID returns a copy of the stored appointment.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *a
	return &clone, nil
}

// UpdateStatus writes the mutable fields of the stored appointment, but
// only while its status is still from. The check and the write run under
// one lock, matching the conditional UPDATE of the Postgres repository.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, a *Appointment, from Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.appointments[a.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != from {
		return ErrInvalidTransition
	}
	stored.Status = a.Status
	stored.ClinicalNotes = a.ClinicalNotes
	stored.PrescriptionText = a.PrescriptionText
	stored.UpdatedAt = a.UpdatedAt
	return nil
}
