package usecase

import (
	"context"
	"time"

	"github.com/NotSilaev/MrStone/internal/metrics"
	rateLimitDomain "github.com/NotSilaev/MrStone/internal/ratelimit/domain"
)

// limiterWithMetrics decorates Limiter with metrics instrumentation.
type limiterWithMetrics struct {
	next    Limiter
	metrics metrics.BusinessMetrics
}

// NewLimiterWithMetrics wraps a Limiter with metrics recording.
func NewLimiterWithMetrics(next Limiter, m metrics.BusinessMetrics) Limiter {
	return &limiterWithMetrics{
		next:    next,
		metrics: m,
	}
}

// Check records the decision outcome, its tier and the check duration.
func (l *limiterWithMetrics) Check(
	ctx context.Context,
	clientIdentity string,
	now time.Time,
) (rateLimitDomain.Decision, error) {
	start := time.Now()
	decision, err := l.next.Check(ctx, clientIdentity, now)

	status := metrics.DecisionAllowed
	switch {
	case err != nil:
		status = metrics.DecisionError
	case decision.Reject:
		status = metrics.DecisionRejected
	}

	l.metrics.RecordOperation(ctx, "ratelimit", "check", status)
	l.metrics.RecordDuration(ctx, "ratelimit", "check", time.Since(start), status)
	l.metrics.RecordRateLimitDecision(ctx, status, decision.Level)

	return decision, err
}
