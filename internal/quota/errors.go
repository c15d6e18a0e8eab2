package quota

import "errors"

var (
	// ErrQuotaExceeded is returned when a free-tier caller has used up their
	// monthly budget for the service. It is a rate-limit condition, not an
	// internal failure.
	ErrQuotaExceeded = errors.New("quota: free usage limit exceeded for this month")

	// ErrInvalidServiceKind is returned for an unknown metered service.
	ErrInvalidServiceKind = errors.New("quota: invalid service kind")
)
