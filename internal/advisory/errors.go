package advisory

import "errors"

var (
	// ErrUpstreamUnavailable is returned when the AI provider rejects or
	// fails the call. Retryable by the caller; the core never retries.
	ErrUpstreamUnavailable = errors.New("advisory: upstream AI service unavailable")

	// ErrUpstreamTimeout is returned when the AI call exceeds its budget.
	ErrUpstreamTimeout = errors.New("advisory: upstream AI call timed out")

	// ErrEmptyInput is returned when the request carries nothing to analyze.
	ErrEmptyInput = errors.New("advisory: input text or image reference is required")

	// ErrNotFound is returned when a stored result does not exist.
	ErrNotFound = errors.New("advisory: result not found")
)
