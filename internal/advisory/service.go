package advisory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/identity"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/observability/metrics"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/quota"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/pkg/logging"
)

var advisoryTracer = otel.Tracer("sensidoc.internal.advisory")

// Outcome is an advisory result together with the caller's quota standing
// after the call.
type Outcome struct {
	Result    Result `json:"result"`
	Unlimited bool   `json:"unlimited"`
	// Remaining is the number of calls left this month for this service,
	// meaningful only when Unlimited is false.
	Remaining int `json:"remaining"`
}

// Service runs metered AI advisory calls: quota check, upstream call,
// usage accounting, history.
type Service struct {
	tracker *quota.Tracker
	client  Client
	store   Store
	metrics *metrics.AdvisoryMetrics
	logger  *logging.Logger
	now     func() time.Time
}

// NewService wires the advisory service. store may be nil when history
// persistence is disabled; metrics may be nil.
func NewService(tracker *quota.Tracker, client Client, store Store, m *metrics.AdvisoryMetrics, logger *logging.Logger) *Service {
	if tracker == nil {
		panic("advisory: tracker required")
	}
	if client == nil {
		panic("advisory: client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		tracker: tracker,
		client:  client,
		store:   store,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Diagnose runs a symptom analysis for the caller. One successful call
// consumes one unit of the caller's monthly diagnosis quota.
func (s *Service) Diagnose(ctx context.Context, actor identity.Identity, input, imageRef string) (Outcome, error) {
	return s.invoke(ctx, actor, Request{Kind: quota.KindDiagnosis, Input: input, ImageRef: imageRef})
}

// AnalyzeDrug runs a medication lookup for the caller. One successful call
// consumes one unit of the caller's monthly drug-analysis quota.
func (s *Service) AnalyzeDrug(ctx context.Context, actor identity.Identity, input, imageRef string) (Outcome, error) {
	return s.invoke(ctx, actor, Request{Kind: quota.KindDrugAnalysis, Input: input, ImageRef: imageRef})
}

func (s *Service) invoke(ctx context.Context, actor identity.Identity, req Request) (Outcome, error) {
	ctx, span := advisoryTracer.Start(ctx, "advisory.invoke", trace.WithAttributes(
		attribute.String("advisory.kind", string(req.Kind)),
		attribute.String("advisory.tier", string(actor.Tier)),
	))
	defer span.End()

	if strings.TrimSpace(req.Input) == "" && strings.TrimSpace(req.ImageRef) == "" {
		return Outcome{}, ErrEmptyInput
	}

	auth, err := s.tracker.Authorize(ctx, actor.UserID, req.Kind, actor.Tier)
	if err != nil {
		if errors.Is(err, quota.ErrQuotaExceeded) {
			s.metrics.ObserveQuotaDenial(string(req.Kind))
			s.logger.Info("advisory request denied at quota ceiling",
				"user_id", actor.UserID, "kind", req.Kind)
		}
		return Outcome{}, err
	}

	started := s.now()
	result, err := s.client.Invoke(ctx, req)
	s.metrics.ObserveUpstreamLatency(string(req.Kind), s.now().Sub(started).Seconds())
	if err != nil {
		s.metrics.ObserveInvocation(string(req.Kind), "error")
		s.logger.Error("upstream advisory call failed",
			"user_id", actor.UserID, "kind", req.Kind, "error", err)
		return Outcome{}, err
	}
	s.metrics.ObserveInvocation(string(req.Kind), "success")

	// The call succeeded, so the unit is spent even if bookkeeping below
	// has trouble.
	if err := s.tracker.Record(ctx, actor.UserID, req.Kind, s.now()); err != nil {
		s.logger.Error("failed to record advisory usage",
			"user_id", actor.UserID, "kind", req.Kind, "error", err)
	}

	if s.store != nil {
		rec := &Record{
			ID:        uuid.NewString(),
			UserID:    actor.UserID,
			Kind:      req.Kind,
			Input:     req.Input,
			Result:    result,
			CreatedAt: s.now().UTC(),
		}
		if err := s.store.Insert(ctx, rec); err != nil {
			s.logger.Warn("failed to persist advisory history",
				"user_id", actor.UserID, "kind", req.Kind, "error", err)
		}
	}

	s.logger.Info("advisory call completed",
		"user_id", actor.UserID, "kind", req.Kind, "fallback", result.Fallback)
	return Outcome{Result: result, Unlimited: auth.Unlimited, Remaining: auth.Remaining}, nil
}

// History returns the caller's past advisory results, newest first.
func (s *Service) History(ctx context.Context, actor identity.Identity, limit, offset int) ([]Record, error) {
	if s.store == nil {
		return []Record{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListByUser(ctx, actor.UserID, limit, offset)
}

// Usage reports the caller's current-month quota standing.
func (s *Service) Usage(ctx context.Context, actor identity.Identity) (quota.Summary, error) {
	return s.tracker.Summary(ctx, actor.UserID, actor.Tier)
}
