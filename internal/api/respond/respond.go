package respond

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the uniform error payload for API responses.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	// Remaining is included on quota errors so clients can show an
	// upgrade prompt.
	Remaining *int `json:"remaining,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a coded error payload.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Error: code, Message: message})
}

// QuotaError writes a rate-limit payload carrying the remaining budget.
func QuotaError(w http.ResponseWriter, message string, remaining int) {
	JSON(w, http.StatusTooManyRequests, ErrorBody{
		Error:     "QuotaExceeded",
		Message:   message,
		Remaining: &remaining,
	})
}
