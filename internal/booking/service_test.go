package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/identity"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/notify"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/pkg/logging"
)

const (
	testDoctorID  = "doc-1"
	testPatientID = "pat-1"
)

func newTestScheduler(t *testing.T) (*Scheduler, *InMemoryRepository) {
	t.Helper()
	repo := NewInMemoryRepository()
	doctors := NewStaticDoctorDirectory(map[string]bool{
		testDoctorID:     true,
		"doc-unverified": false,
	})
	s := NewScheduler(repo, doctors, nil, nil, logging.Default())
	s.now = func() time.Time {
		return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	}
	return s, repo
}

func validCommand() BookCommand {
	return BookCommand{
		PatientID:    testPatientID,
		DoctorID:     testDoctorID,
		Date:         "2025-03-10",
		Time:         "14:00",
		Kind:         KindChat,
		SymptomNotes: "persistent cough",
	}
}

func TestBookSuccess(t *testing.T) {
	s, _ := newTestScheduler(t)

	a, err := s.Book(context.Background(), validCommand())
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	require.Equal(t, StatusPending, a.Status)
	require.Equal(t, a.CreatedAt, a.UpdatedAt)

	// Read-after-write: the owning patient sees the new appointment.
	got, err := s.GetVisible(context.Background(), a.ID, identity.Identity{UserID: testPatientID, Role: identity.RolePatient})
	require.NoError(t, err)
	require.Equal(t, StatusPending, got.Status)
}

func TestBookValidation(t *testing.T) {
	s, _ := newTestScheduler(t)

	tests := []struct {
		name    string
		mutate  func(*BookCommand)
		wantErr error
	}{
		{"past date", func(c *BookCommand) { c.Date = "2025-02-28" }, ErrDateInPast},
		{"malformed date", func(c *BookCommand) { c.Date = "10-03-2025" }, ErrInvalidDate},
		{"malformed time", func(c *BookCommand) { c.Time = "2pm" }, ErrInvalidDate},
		{"unknown kind", func(c *BookCommand) { c.Kind = "telepathy" }, ErrInvalidKind},
		{"unverified doctor", func(c *BookCommand) { c.DoctorID = "doc-unverified" }, ErrDoctorUnavailable},
		{"unknown doctor", func(c *BookCommand) { c.DoctorID = "doc-missing" }, ErrDoctorUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validCommand()
			tt.mutate(&cmd)
			_, err := s.Book(context.Background(), cmd)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBookTodayIsAllowed(t *testing.T) {
	s, _ := newTestScheduler(t)
	cmd := validCommand()
	cmd.Date = "2025-03-01"
	_, err := s.Book(context.Background(), cmd)
	require.NoError(t, err)
}

func TestBookSlotConflict(t *testing.T) {
	s, _ := newTestScheduler(t)

	_, err := s.Book(context.Background(), validCommand())
	require.NoError(t, err)

	// Second patient, same doctor/date/time.
	cmd := validCommand()
	cmd.PatientID = "pat-2"
	_, err = s.Book(context.Background(), cmd)
	require.ErrorIs(t, err, ErrSlotTaken)

	// A different time is free.
	cmd.Time = "14:30"
	_, err = s.Book(context.Background(), cmd)
	require.NoError(t, err)
}

func TestBookConcurrentSameSlot(t *testing.T) {
	s, _ := newTestScheduler(t)

	const attempts = 16
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cmd := validCommand()
			_, errs[i] = s.Book(context.Background(), cmd)
		}(i)
	}
	wg.Wait()

	var created, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrSlotTaken):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one created appointment, got %d", created)
	}
	if conflicts != attempts-1 {
		t.Fatalf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
}

func TestBookReleasedSlotReusable(t *testing.T) {
	s, _ := newTestScheduler(t)

	a, err := s.Book(context.Background(), validCommand())
	require.NoError(t, err)

	doctor := identity.Identity{UserID: testDoctorID, Role: identity.RoleDoctor}
	_, err = s.Transition(context.Background(), a.ID, doctor, StatusRejected, nil)
	require.NoError(t, err)

	// Rejected appointments no longer occupy the slot.
	cmd := validCommand()
	cmd.PatientID = "pat-2"
	_, err = s.Book(context.Background(), cmd)
	require.NoError(t, err)
}

func bookPending(t *testing.T, s *Scheduler) *Appointment {
	t.Helper()
	a, err := s.Book(context.Background(), validCommand())
	require.NoError(t, err)
	return a
}

func TestTransitionLifecycle(t *testing.T) {
	s, _ := newTestScheduler(t)
	doctor := identity.Identity{UserID: testDoctorID, Role: identity.RoleDoctor}

	a := bookPending(t, s)

	confirmed, err := s.Transition(context.Background(), a.ID, doctor, StatusConfirmed, nil)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, confirmed.Status)

	completed, err := s.Transition(context.Background(), a.ID, doctor, StatusCompleted, &NotesPatch{
		ClinicalNotes:    "mild bronchitis",
		PrescriptionText: "amoxicillin 500mg",
	})
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, completed.Status)
	require.Equal(t, "mild bronchitis", completed.ClinicalNotes)
	require.Equal(t, "amoxicillin 500mg", completed.PrescriptionText)
	require.True(t, completed.UpdatedAt.After(completed.CreatedAt) || completed.UpdatedAt.Equal(completed.CreatedAt))
}

// rendezvousRepo holds every GetByID until both racing transitions have
// read, so each one observes the same stored status before either writes.
type rendezvousRepo struct {
	*InMemoryRepository
	readers sync.WaitGroup
}

func (r *rendezvousRepo) GetByID(ctx context.Context, id string) (*Appointment, error) {
	a, err := r.InMemoryRepository.GetByID(ctx, id)
	r.readers.Done()
	r.readers.Wait()
	return a, err
}

func TestTransitionConcurrentCancelConfirm(t *testing.T) {
	repo := &rendezvousRepo{InMemoryRepository: NewInMemoryRepository()}
	repo.readers.Add(2)
	doctors := NewStaticDoctorDirectory(map[string]bool{testDoctorID: true})
	s := NewScheduler(repo, doctors, nil, nil, logging.Default())
	s.now = func() time.Time {
		return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	}

	a, err := s.Book(context.Background(), validCommand())
	require.NoError(t, err)

	patient := identity.Identity{UserID: testPatientID, Role: identity.RolePatient}
	doctor := identity.Identity{UserID: testDoctorID, Role: identity.RoleDoctor}

	var wg sync.WaitGroup
	var cancelErr, confirmErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, cancelErr = s.Transition(context.Background(), a.ID, patient, StatusCancelled, nil)
	}()
	go func() {
		defer wg.Done()
		_, confirmErr = s.Transition(context.Background(), a.ID, doctor, StatusConfirmed, nil)
	}()
	wg.Wait()

	// Both read pending, but only one write may commit: the loser fails
	// instead of overwriting the winner's status.
	require.True(t, (cancelErr == nil) != (confirmErr == nil),
		"exactly one transition must succeed, got cancel=%v confirm=%v", cancelErr, confirmErr)
	loser := cancelErr
	if loser == nil {
		loser = confirmErr
	}
	require.ErrorIs(t, loser, ErrInvalidTransition)

	stored, err := repo.InMemoryRepository.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	if cancelErr == nil {
		require.Equal(t, StatusCancelled, stored.Status)
	} else {
		require.Equal(t, StatusConfirmed, stored.Status)
	}
}

func TestUpdateStatusStaleWriteRejected(t *testing.T) {
	repo := NewInMemoryRepository()
	a := &Appointment{
		ID:        "apt-1",
		PatientID: testPatientID,
		DoctorID:  testDoctorID,
		Date:      "2025-03-10",
		Time:      "14:00",
		Kind:      KindChat,
		Status:    StatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), a))

	cancelled := *a
	cancelled.Status = StatusCancelled
	require.NoError(t, repo.UpdateStatus(context.Background(), &cancelled, StatusPending))

	// A write carrying the pre-cancellation status must not resurrect the
	// appointment.
	confirmed := *a
	confirmed.Status = StatusConfirmed
	err := repo.UpdateStatus(context.Background(), &confirmed, StatusPending)
	require.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, stored.Status)
}

func TestTransitionStateMachineClosure(t *testing.T) {
	// Every (from, to) pair outside the table fails with ErrInvalidTransition
	// even for an admin.
	admin := identity.Identity{UserID: "adm-1", Role: identity.RoleAdmin}
	all := []Status{StatusPending, StatusConfirmed, StatusRejected, StatusCompleted, StatusCancelled}

	for _, from := range all {
		for _, to := range all {
			_, inTable := transitionTable[from][to]
			if inTable {
				continue
			}
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				s, repo := newTestScheduler(t)
				a := bookPending(t, s)
				a.Status = from
				require.NoError(t, repo.UpdateStatus(context.Background(), a, StatusPending))

				_, err := s.Transition(context.Background(), a.ID, admin, to, nil)
				require.ErrorIs(t, err, ErrInvalidTransition)
			})
		}
	}
}

func TestTransitionAuthorization(t *testing.T) {
	owner := identity.Identity{UserID: testPatientID, Role: identity.RolePatient}
	assigned := identity.Identity{UserID: testDoctorID, Role: identity.RoleDoctor}
	admin := identity.Identity{UserID: "adm-1", Role: identity.RoleAdmin}
	strangerPatient := identity.Identity{UserID: "pat-other", Role: identity.RolePatient}
	otherDoctor := identity.Identity{UserID: "doc-other", Role: identity.RoleDoctor}

	tests := []struct {
		name    string
		from    Status
		to      Status
		actor   identity.Identity
		wantErr error
	}{
		{"doctor confirms pending", StatusPending, StatusConfirmed, assigned, nil},
		{"admin confirms pending", StatusPending, StatusConfirmed, admin, nil},
		{"patient cannot confirm", StatusPending, StatusConfirmed, owner, ErrNotAuthorized},
		{"doctor rejects pending", StatusPending, StatusRejected, assigned, nil},
		{"patient cancels own pending", StatusPending, StatusCancelled, owner, nil},
		{"patient cancels own confirmed", StatusConfirmed, StatusCancelled, owner, nil},
		{"doctor completes confirmed", StatusConfirmed, StatusCompleted, assigned, nil},
		{"patient cannot complete", StatusConfirmed, StatusCompleted, owner, ErrNotAuthorized},
		{"unrelated patient rejected first", StatusPending, StatusConfirmed, strangerPatient, ErrNotAuthorized},
		{"unassigned doctor rejected first", StatusPending, StatusConfirmed, otherDoctor, ErrNotAuthorized},
		// Unrelated actors fail with NotAuthorized even on pairs that are
		// invalid in the table: the relation check runs first.
		{"unrelated actor on invalid pair", StatusCompleted, StatusConfirmed, strangerPatient, ErrNotAuthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo := newTestScheduler(t)
			a := bookPending(t, s)
			if tt.from != StatusPending {
				a.Status = tt.from
				require.NoError(t, repo.UpdateStatus(context.Background(), a, StatusPending))
			}

			_, err := s.Transition(context.Background(), a.ID, tt.actor, tt.to, nil)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestTransitionNotesRules(t *testing.T) {
	s, _ := newTestScheduler(t)
	doctor := identity.Identity{UserID: testDoctorID, Role: identity.RoleDoctor}
	patch := &NotesPatch{ClinicalNotes: "notes"}

	a := bookPending(t, s)

	// Notes are only allowed on the transition to completed.
	_, err := s.Transition(context.Background(), a.ID, doctor, StatusConfirmed, patch)
	require.ErrorIs(t, err, ErrNotesNotAllowed)

	_, err = s.Transition(context.Background(), a.ID, doctor, StatusConfirmed, nil)
	require.NoError(t, err)

	_, err = s.Transition(context.Background(), a.ID, doctor, StatusCompleted, patch)
	require.NoError(t, err)
}

func TestTransitionNotFound(t *testing.T) {
	s, _ := newTestScheduler(t)
	admin := identity.Identity{UserID: "adm-1", Role: identity.RoleAdmin}
	_, err := s.Transition(context.Background(), "missing", admin, StatusConfirmed, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetVisibleAuthorization(t *testing.T) {
	s, _ := newTestScheduler(t)
	a := bookPending(t, s)

	tests := []struct {
		name    string
		actor   identity.Identity
		wantErr error
	}{
		{"owning patient", identity.Identity{UserID: testPatientID, Role: identity.RolePatient}, nil},
		{"assigned doctor", identity.Identity{UserID: testDoctorID, Role: identity.RoleDoctor}, nil},
		{"admin", identity.Identity{UserID: "adm-1", Role: identity.RoleAdmin}, nil},
		{"other patient", identity.Identity{UserID: "pat-2", Role: identity.RolePatient}, ErrNotAuthorized},
		{"other doctor", identity.Identity{UserID: "doc-2", Role: identity.RoleDoctor}, ErrNotAuthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.GetVisible(context.Background(), a.ID, tt.actor)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notify.Confirmation
	done  chan struct{}
}

func (n *recordingNotifier) BookingConfirmed(ctx context.Context, c notify.Confirmation) {
	n.mu.Lock()
	n.calls = append(n.calls, c)
	n.mu.Unlock()
	close(n.done)
}

func TestBookNotifiesBestEffort(t *testing.T) {
	repo := NewInMemoryRepository()
	doctors := NewStaticDoctorDirectory(map[string]bool{testDoctorID: true})
	notifier := &recordingNotifier{done: make(chan struct{})}
	s := NewScheduler(repo, doctors, notifier, nil, logging.Default())
	s.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }

	a, err := s.Book(context.Background(), validCommand())
	require.NoError(t, err)

	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not called")
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.calls, 1)
	require.Equal(t, a.ID, notifier.calls[0].AppointmentID)
}
