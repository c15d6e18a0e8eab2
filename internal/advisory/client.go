package advisory

import (
	"context"

	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/quota"
)

// Request is one advisory invocation.
type Request struct {
	Kind quota.ServiceKind
	// Input is free text: symptom description for diagnosis, drug name for
	// drug analysis.
	Input string
	// ImageRef optionally points at an uploaded image.
	ImageRef string
}

// DiagnosisResult is the structured output of a diagnosis call.
type DiagnosisResult struct {
	Condition       string   `json:"condition"`
	ConfidenceLevel int      `json:"confidence_level"`
	Description     string   `json:"description"`
	Symptoms        []string `json:"symptoms"`
	Recommendations []string `json:"recommendations"`
	Severity        string   `json:"severity"`
	WhenToConsult   string   `json:"when_to_consult"`
}

// DrugReport is the structured output of a drug-analysis call.
type DrugReport struct {
	DrugName          string   `json:"drug_name"`
	GenericName       string   `json:"generic_name"`
	Uses              []string `json:"uses"`
	Dosage            string   `json:"dosage"`
	SideEffects       []string `json:"side_effects"`
	Warnings          []string `json:"warnings"`
	Interactions      []string `json:"interactions"`
	Contraindications []string `json:"contraindications"`
}

// Result holds whichever structured output the request kind produced.
type Result struct {
	Diagnosis *DiagnosisResult `json:"diagnosis,omitempty"`
	Drug      *DrugReport      `json:"drug,omitempty"`
	// Fallback marks a result substituted because the model's output could
	// not be parsed. The request still succeeds and consumes one quota unit.
	Fallback bool `json:"fallback,omitempty"`
}

// Client is the upstream AI collaborator. Implementations must fail fast
// with ErrUpstreamTimeout once their request budget is exceeded and never
// retry internally.
type Client interface {
	Invoke(ctx context.Context, req Request) (Result, error)
}
