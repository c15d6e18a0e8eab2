package quota

import "time"

// ServiceKind identifies a metered AI service.
type ServiceKind string

const (
	KindDiagnosis    ServiceKind = "diagnosis"
	KindDrugAnalysis ServiceKind = "drug_analysis"
)

func (k ServiceKind) IsValid() bool {
	switch k {
	case KindDiagnosis, KindDrugAnalysis:
		return true
	}
	return false
}

// UsageRecord is one successful metered invocation. Append-only.
type UsageRecord struct {
	UserID     string      `json:"user_id"`
	Kind       ServiceKind `json:"service_kind"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// MonthWindow returns the half-open interval
// [first instant of now's month, first instant of next month) in UTC.
// Half-open interval arithmetic sidesteps 28..31-day month lengths.
func MonthWindow(now time.Time) (start, end time.Time) {
	now = now.UTC()
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end
}

// Authorization is the result of a successful quota check.
type Authorization struct {
	// Unlimited is set for premium callers; Remaining is meaningless then.
	Unlimited bool `json:"unlimited"`
	// Remaining is the budget left in the current month after this call
	// proceeds, for free-tier callers.
	Remaining int `json:"remaining"`
}

// Summary is the read-only usage aggregate for display.
type Summary struct {
	Tier             string `json:"membership_tier"`
	Month            string `json:"current_month"`
	DiagnosisUsed    int    `json:"diagnosis_used"`
	DrugAnalysisUsed int    `json:"drug_analysis_used"`
	// Limit and remaining are nil for premium callers.
	Limit            *int `json:"limit,omitempty"`
	DiagnosisLeft    *int `json:"diagnosis_remaining,omitempty"`
	DrugAnalysisLeft *int `json:"drug_analysis_remaining,omitempty"`
}
