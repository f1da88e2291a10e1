// Package mocks provides mock implementations of the rate limit use cases.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	rateLimitDomain "github.com/NotSilaev/MrStone/internal/ratelimit/domain"
)

// MockLimiter is a mock implementation of usecase.Limiter.
type MockLimiter struct {
	mock.Mock
}

// Check mocks the Check method of Limiter.
func (m *MockLimiter) Check(
	ctx context.Context,
	clientIdentity string,
	now time.Time,
) (rateLimitDomain.Decision, error) {
	args := m.Called(ctx, clientIdentity, now)
	return args.Get(0).(rateLimitDomain.Decision), args.Error(1)
}
