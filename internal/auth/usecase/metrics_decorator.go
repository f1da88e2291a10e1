package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/NotSilaev/MrStone/internal/auth/domain"
	"github.com/NotSilaev/MrStone/internal/metrics"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *tokenUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, status string) {
	t.metrics.RecordOperation(ctx, "auth", operation, status)
	t.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Issue records metrics for token issuance.
func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Issue(ctx, input)
	t.record(ctx, "token_issue", start, statusOf(err))
	return output, err
}

// Revoke records metrics for token revocation.
func (t *tokenUseCaseWithMetrics) Revoke(ctx context.Context, tokenID uuid.UUID) error {
	start := time.Now()
	err := t.next.Revoke(ctx, tokenID)
	t.record(ctx, "token_revoke", start, statusOf(err))
	return err
}

// Authenticate records metrics for token authentication.
func (t *tokenUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	plainToken string,
) (*authDomain.AuthToken, error) {
	start := time.Now()
	token, err := t.next.Authenticate(ctx, plainToken)
	t.record(ctx, "token_authenticate", start, statusOf(err))
	return token, err
}

// Verify records metrics for token verification.
func (t *tokenUseCaseWithMetrics) Verify(ctx context.Context, plainToken string) bool {
	start := time.Now()
	ok := t.next.Verify(ctx, plainToken)

	status := "success"
	if !ok {
		status = "rejected"
	}
	t.record(ctx, "token_verify", start, status)
	return ok
}

// CleanupExpired records metrics for expired token cleanup.
func (t *tokenUseCaseWithMetrics) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := t.next.CleanupExpired(ctx, days, dryRun)
	t.record(ctx, "token_cleanup", start, statusOf(err))
	return count, err
}
