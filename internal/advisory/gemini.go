package advisory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/quota"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/pkg/logging"
)

// GeminiClient implements Client using Google's Gemini API.
type GeminiClient struct {
	client  *genai.Client
	modelID string
	timeout time.Duration
	logger  *logging.Logger
}

// NewGeminiClient creates a Gemini-backed advisory client.
func NewGeminiClient(ctx context.Context, apiKey, modelID string, timeout time.Duration, logger *logging.Logger) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("advisory: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("advisory: failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, modelID: modelID, timeout: timeout, logger: logger}, nil
}

// Invoke sends one advisory request. The call carries a hard timeout and
// is never retried here; timeouts and provider failures surface as the
// package's upstream sentinels.
func (c *GeminiClient) Invoke(ctx context.Context, req Request) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.modelID)
	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(req)))
	if err != nil {
		return Result{}, mapUpstreamError(ctx, err)
	}

	text := responseText(resp)
	if text == "" {
		return Result{}, fmt.Errorf("%w: empty completion", ErrUpstreamUnavailable)
	}
	return parseResult(req, text, c.logger), nil
}

// mapUpstreamError classifies a failed provider call. The transport may
// surface an expired deadline as a gRPC status error rather than
// context.DeadlineExceeded, so the context's own error is checked too.
func mapUpstreamError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return ErrUpstreamTimeout
	}
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}

func buildPrompt(req Request) string {
	var b strings.Builder
	switch req.Kind {
	case quota.KindDrugAnalysis:
		if req.Input != "" {
			fmt.Fprintf(&b, "Provide detailed information about the medication: %s\n", req.Input)
		} else {
			fmt.Fprintf(&b, "Identify and analyze the medication in this image: %s\n", req.ImageRef)
		}
		b.WriteString(`
Respond with JSON in exactly this shape:
{
  "drug_name": "Brand name",
  "generic_name": "Generic name",
  "uses": ["use1", "use2"],
  "dosage": "Typical dosage information",
  "side_effects": ["side_effect1"],
  "warnings": ["warning1"],
  "interactions": ["interaction1"],
  "contraindications": ["contraindication1"]
}`)
	default:
		fmt.Fprintf(&b, "As a medical AI assistant, analyze the following symptoms and provide a preliminary diagnosis.\n\nSymptoms: %s\n", req.Input)
		if req.ImageRef != "" {
			fmt.Fprintf(&b, "Image provided: %s\n", req.ImageRef)
		}
		b.WriteString(`
Respond with JSON in exactly this shape:
{
  "condition": "Most likely condition name",
  "confidence_level": 85,
  "description": "Detailed description of the condition",
  "symptoms": ["symptom1", "symptom2"],
  "recommendations": ["recommendation1"],
  "severity": "mild/moderate/severe",
  "when_to_consult": "When to see a doctor"
}

Important: this is for informational purposes only and must not replace professional medical advice.`)
	}
	return b.String()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

// parseResult extracts the JSON object from the completion. Unparseable
// output yields the generic fallback result instead of an error so the
// caller's request still succeeds.
func parseResult(req Request, text string, logger *logging.Logger) Result {
	raw := extractJSON(text)

	if req.Kind == quota.KindDrugAnalysis {
		var report DrugReport
		if raw != "" && json.Unmarshal([]byte(raw), &report) == nil && report.DrugName != "" {
			return Result{Drug: &report}
		}
		logger.Warn("drug analysis output unparsable, using fallback", "kind", req.Kind)
		return Result{Drug: fallbackDrugReport(req), Fallback: true}
	}

	var diag DiagnosisResult
	if raw != "" && json.Unmarshal([]byte(raw), &diag) == nil && diag.Condition != "" {
		return Result{Diagnosis: &diag}
	}
	logger.Warn("diagnosis output unparsable, using fallback", "kind", req.Kind)
	return Result{Diagnosis: fallbackDiagnosis(req, text), Fallback: true}
}

// extractJSON returns the outermost {...} object in text, or "".
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func fallbackDiagnosis(req Request, text string) *DiagnosisResult {
	symptoms := make([]string, 0, 4)
	for _, s := range strings.Split(req.Input, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symptoms = append(symptoms, s)
		}
	}
	return &DiagnosisResult{
		Condition:       "General Health Concern",
		ConfidenceLevel: 70,
		Description:     strings.TrimSpace(text),
		Symptoms:        symptoms,
		Recommendations: []string{
			"Monitor symptoms closely",
			"Stay hydrated and get adequate rest",
			"Consult a healthcare provider if symptoms persist",
		},
		Severity:      "moderate",
		WhenToConsult: "If symptoms worsen or persist for more than 48 hours",
	}
}

func fallbackDrugReport(req Request) *DrugReport {
	return &DrugReport{
		DrugName:    req.Input,
		GenericName: "Unknown",
		Uses:        []string{"Could not be determined automatically"},
		Dosage:      "Consult the package leaflet or a pharmacist",
		Warnings:    []string{"Verify this medication with a healthcare professional"},
	}
}
