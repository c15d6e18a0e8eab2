package quota

import (
	"context"
	"time"

	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/identity"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/pkg/logging"
)

// Tracker enforces tier-based ceilings on metered services within the
// current calendar month.
//
// Authorize and Record are deliberately not atomic with each other: the
// slow upstream AI call runs between them, and holding a lock around a
// network call is worse than the alternative. Two concurrent Authorize
// calls near the ceiling may both proceed, so the free-tier limit is a
// soft bound with a small, bounded overrun.
type Tracker struct {
	repo   Repository
	limit  int
	logger *logging.Logger
	now    func() time.Time
}

// NewTracker constructs a usage tracker with the free-tier monthly limit.
func NewTracker(repo Repository, limit int, logger *logging.Logger) *Tracker {
	if repo == nil {
		panic("quota: repository required")
	}
	if limit <= 0 {
		limit = 3
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Tracker{repo: repo, limit: limit, logger: logger, now: time.Now}
}

// Authorize checks whether the caller may invoke the metered service now.
// Premium callers always pass; free callers pass while their monthly count
// is under the limit. The check runs before the AI call so a denied
// request costs nothing.
func (t *Tracker) Authorize(ctx context.Context, userID string, kind ServiceKind, tier identity.Tier) (Authorization, error) {
	if !kind.IsValid() {
		return Authorization{}, ErrInvalidServiceKind
	}
	if tier == identity.TierPremium {
		return Authorization{Unlimited: true}, nil
	}

	start, end := MonthWindow(t.now())
	count, err := t.repo.CountInWindow(ctx, userID, kind, start, end)
	if err != nil {
		return Authorization{}, err
	}
	if count >= t.limit {
		return Authorization{}, ErrQuotaExceeded
	}
	return Authorization{Remaining: t.limit - count - 1}, nil
}

// Record appends one usage record. Call it only after the metered
// operation succeeded; a failed AI call must not burn quota.
func (t *Tracker) Record(ctx context.Context, userID string, kind ServiceKind, occurredAt time.Time) error {
	if !kind.IsValid() {
		return ErrInvalidServiceKind
	}
	return t.repo.Insert(ctx, UsageRecord{
		UserID:     userID,
		Kind:       kind,
		OccurredAt: occurredAt.UTC(),
	})
}

// Summary returns the caller's current-month usage for display.
func (t *Tracker) Summary(ctx context.Context, userID string, tier identity.Tier) (Summary, error) {
	start, end := MonthWindow(t.now())

	diagUsed, err := t.repo.CountInWindow(ctx, userID, KindDiagnosis, start, end)
	if err != nil {
		return Summary{}, err
	}
	drugUsed, err := t.repo.CountInWindow(ctx, userID, KindDrugAnalysis, start, end)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Tier:             string(tier),
		Month:            start.Format("2006-01"),
		DiagnosisUsed:    diagUsed,
		DrugAnalysisUsed: drugUsed,
	}
	if tier != identity.TierPremium {
		limit := t.limit
		diagLeft := max(0, limit-diagUsed)
		drugLeft := max(0, limit-drugUsed)
		s.Limit = &limit
		s.DiagnosisLeft = &diagLeft
		s.DrugAnalysisLeft = &drugLeft
	}
	return s, nil
}
