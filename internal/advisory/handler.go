package advisory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/api/respond"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/identity"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/quota"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/pkg/logging"
)

// Handler exposes the advisory service over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an advisory handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// DiagnoseRequest is the body for POST /api/ai/diagnose.
type DiagnoseRequest struct {
	InputText  string `json:"input_text"`
	InputImage string `json:"input_image"`
}

// Diagnose handles POST /api/ai/diagnose.
func (h *Handler) Diagnose(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "NotAuthenticated", "missing identity")
		return
	}

	var req DiagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "InvalidBody", "invalid request body")
		return
	}

	out, err := h.service.Diagnose(r.Context(), actor, req.InputText, req.InputImage)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

// DrugAnalyzeRequest is the body for POST /api/ai/drug-analyze.
type DrugAnalyzeRequest struct {
	DrugName  string `json:"drug_name"`
	DrugImage string `json:"drug_image"`
}

// AnalyzeDrug handles POST /api/ai/drug-analyze.
func (h *Handler) AnalyzeDrug(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "NotAuthenticated", "missing identity")
		return
	}

	var req DrugAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "InvalidBody", "invalid request body")
		return
	}

	out, err := h.service.AnalyzeDrug(r.Context(), actor, req.DrugName, req.DrugImage)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

// History handles GET /api/ai/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "NotAuthenticated", "missing identity")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	records, err := h.service.History(r.Context(), actor, limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"records": records})
}

// Usage handles GET /api/ai/usage.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "NotAuthenticated", "missing identity")
		return
	}

	summary, err := h.service.Usage(r.Context(), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, summary)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quota.ErrQuotaExceeded):
		respond.QuotaError(w, "monthly free-tier limit reached for this service", 0)
	case errors.Is(err, quota.ErrInvalidServiceKind):
		respond.Error(w, http.StatusBadRequest, "InvalidServiceKind", err.Error())
	case errors.Is(err, ErrEmptyInput):
		respond.Error(w, http.StatusBadRequest, "EmptyInput", "input_text or an image is required")
	case errors.Is(err, ErrUpstreamTimeout):
		respond.Error(w, http.StatusGatewayTimeout, "UpstreamTimeout", "the AI service took too long to respond")
	case errors.Is(err, ErrUpstreamUnavailable):
		respond.Error(w, http.StatusBadGateway, "UpstreamUnavailable", "the AI service is currently unavailable")
	default:
		h.logger.Error("advisory request failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "Internal", "internal server error")
	}
}
