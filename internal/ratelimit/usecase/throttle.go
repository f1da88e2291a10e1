package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// warningInterval is the minimum spacing between two fail-open warnings in the logs.
// The cache_error decision metric counts every failure.
const warningInterval = 10 * time.Second

// Throttle turns Limiter decisions into the allow/reject answer of the request pipeline.
// Cache failures fail open: the request is allowed and a warning is logged.
type Throttle struct {
	limiter  Limiter
	logger   *slog.Logger
	warnings rate.Sometimes
}

// NewThrottle creates a Throttle around limiter.
func NewThrottle(limiter Limiter, logger *slog.Logger) *Throttle {
	return &Throttle{
		limiter:  limiter,
		logger:   logger,
		warnings: rate.Sometimes{First: 1, Interval: warningInterval},
	}
}

// ShouldReject reports whether the request from clientIdentity arriving at now must be
// rejected. It never rejects because of an infrastructure error.
func (t *Throttle) ShouldReject(ctx context.Context, clientIdentity string, now time.Time) bool {
	decision, err := t.limiter.Check(ctx, clientIdentity, now)
	if err != nil {
		t.warnings.Do(func() {
			t.logger.Warn("rate limit check failed, allowing request",
				slog.String("client_ip", clientIdentity),
				slog.Any("error", err))
		})
		return false
	}

	if decision.Reject {
		t.logger.Debug("rate limit exceeded",
			slog.String("client_ip", clientIdentity),
			slog.Int("count", decision.Count),
			slog.Int("tier", decision.Level),
			slog.Duration("min_delay", decision.Delay))
	}

	return decision.Reject
}
