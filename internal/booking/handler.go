package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/api/respond"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/identity"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/pkg/logging"
)

// Handler exposes the scheduler over HTTP.
type Handler struct {
	scheduler *Scheduler
	logger    *logging.Logger
}

// NewHandler creates a booking handler.
func NewHandler(scheduler *Scheduler, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{scheduler: scheduler, logger: logger}
}

// BookRequest is the body for POST /api/appointments.
type BookRequest struct {
	DoctorID     string           `json:"doctor_id"`
	Date         string           `json:"date"`
	Time         string           `json:"time"`
	Kind         ConsultationKind `json:"consultation_kind"`
	SymptomNotes string           `json:"symptom_notes"`
}

// Book handles POST /api/appointments. The caller becomes the patient.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "NotAuthenticated", "missing identity")
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "InvalidBody", "invalid request body")
		return
	}

	a, err := h.scheduler.Book(r.Context(), BookCommand{
		PatientID:    actor.UserID,
		DoctorID:     req.DoctorID,
		Date:         req.Date,
		Time:         req.Time,
		Kind:         req.Kind,
		SymptomNotes: req.SymptomNotes,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, a)
}

// TransitionRequest is the body for PUT /api/appointments/{id}/status.
type TransitionRequest struct {
	Status           Status `json:"status"`
	ClinicalNotes    string `json:"clinical_notes"`
	PrescriptionText string `json:"prescription_text"`
}

// Transition handles PUT /api/appointments/{id}/status.
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "NotAuthenticated", "missing identity")
		return
	}

	appointmentID := chi.URLParam(r, "appointmentID")
	if appointmentID == "" {
		respond.Error(w, http.StatusBadRequest, "InvalidBody", "missing appointment id")
		return
	}

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "InvalidBody", "invalid request body")
		return
	}

	var patch *NotesPatch
	if req.ClinicalNotes != "" || req.PrescriptionText != "" {
		patch = &NotesPatch{
			ClinicalNotes:    req.ClinicalNotes,
			PrescriptionText: req.PrescriptionText,
		}
	}

	a, err := h.scheduler.Transition(r.Context(), appointmentID, actor, req.Status, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, a)
}

// Get handles GET /api/appointments/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "NotAuthenticated", "missing identity")
		return
	}

	appointmentID := chi.URLParam(r, "appointmentID")
	a, err := h.scheduler.GetVisible(r.Context(), appointmentID, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, a)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSlotTaken):
		respond.Error(w, http.StatusConflict, "SlotTaken", "this time slot is already booked")
	case errors.Is(err, ErrDoctorUnavailable):
		respond.Error(w, http.StatusBadRequest, "DoctorUnavailable", "doctor not found or not available")
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrDateInPast):
		respond.Error(w, http.StatusBadRequest, "InvalidDate", err.Error())
	case errors.Is(err, ErrInvalidKind):
		respond.Error(w, http.StatusBadRequest, "InvalidKind", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		respond.Error(w, http.StatusBadRequest, "InvalidTransition", "status transition not allowed")
	case errors.Is(err, ErrNotesNotAllowed):
		respond.Error(w, http.StatusBadRequest, "NotesNotAllowed", err.Error())
	case errors.Is(err, ErrNotAuthorized):
		respond.Error(w, http.StatusForbidden, "NotAuthorized", "not authorized for this appointment")
	case errors.Is(err, ErrNotFound):
		respond.Error(w, http.StatusNotFound, "NotFound", "appointment not found")
	default:
		h.logger.Error("booking request failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "Internal", "internal server error")
	}
}
