package app

import (
	"fmt"

	rateLimitDomain "github.com/NotSilaev/MrStone/internal/ratelimit/domain"
	rateLimitUseCase "github.com/NotSilaev/MrStone/internal/ratelimit/usecase"
)

// Limiter returns the adaptive per-client limiter, wrapped with metrics when they are enabled.
func (c *Container) Limiter() (rateLimitUseCase.Limiter, error) {
	return c.limiter.get(func() (rateLimitUseCase.Limiter, error) {
		sharedCache, err := c.Cache()
		if err != nil {
			return nil, fmt.Errorf("failed to get cache for limiter: %w", err)
		}

		policy := rateLimitDomain.DefaultPolicy().WithWindow(c.config.RateLimitWindow)
		limiter, err := rateLimitUseCase.NewLimiter(sharedCache, policy, c.config.CacheOperationTimeout, c.Logger())
		if err != nil {
			return nil, fmt.Errorf("failed to create limiter: %w", err)
		}

		if !c.config.MetricsEnabled {
			return limiter, nil
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for limiter: %w", err)
		}
		return rateLimitUseCase.NewLimiterWithMetrics(limiter, businessMetrics), nil
	})
}

// Throttle returns the fail-open request gate used by the rate limit middleware.
func (c *Container) Throttle() (*rateLimitUseCase.Throttle, error) {
	return c.throttle.get(func() (*rateLimitUseCase.Throttle, error) {
		limiter, err := c.Limiter()
		if err != nil {
			return nil, err
		}
		return rateLimitUseCase.NewThrottle(limiter, c.Logger()), nil
	})
}
