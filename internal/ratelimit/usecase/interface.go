// Package usecase implements the adaptive per-client request throttle.
package usecase

import (
	"context"
	"time"

	rateLimitDomain "github.com/NotSilaev/MrStone/internal/ratelimit/domain"
)

// Limiter records one request from a client and decides whether it must be rejected.
type Limiter interface {
	// Check observes a request from clientIdentity arriving at now, updating the shared
	// counter. An error means the decision could not be made (cache failure); callers
	// decide how to degrade.
	Check(ctx context.Context, clientIdentity string, now time.Time) (rateLimitDomain.Decision, error)
}
