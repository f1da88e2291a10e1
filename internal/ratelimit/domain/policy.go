// Package domain defines the tiered throttling policy and the per-client counter it operates on.
package domain

import (
	"fmt"
	"time"

	apperrors "github.com/NotSilaev/MrStone/internal/errors"
)

// DefaultWindow is the lifetime of one counter entry, anchored to the first request.
const DefaultWindow = 60 * time.Second

// ErrInvalidPolicy indicates tiers that are empty, unordered or not contiguous.
var ErrInvalidPolicy = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid rate limit policy")

// Tier maps the half-open count range [Min, Max) to a minimum spacing between requests.
type Tier struct {
	Min   int
	Max   int
	Delay time.Duration
}

// Contains reports whether count falls in the tier range.
func (t Tier) Contains(count int) bool {
	return count >= t.Min && count < t.Max
}

// Policy is an ordered list of contiguous tiers plus the window length.
// Counts at or above the last tier's Max are rejected unconditionally.
type Policy struct {
	Window time.Duration
	Tiers  []Tier
}

// DefaultPolicy returns the production tiers:
//
//	[0, 50)    no delay
//	[50, 100)  250ms
//	[100, 200) 500ms
//	>= 200     rejected until the window expires
func DefaultPolicy() Policy {
	return Policy{
		Window: DefaultWindow,
		Tiers: []Tier{
			{Min: 0, Max: 50, Delay: 0},
			{Min: 50, Max: 100, Delay: 250 * time.Millisecond},
			{Min: 100, Max: 200, Delay: 500 * time.Millisecond},
		},
	}
}

// WithWindow returns a copy of p using window as the counter lifetime.
func (p Policy) WithWindow(window time.Duration) Policy {
	p.Window = window
	return p
}

// Validate checks that the window is positive and the tiers are contiguous and ordered.
func (p Policy) Validate() error {
	if p.Window <= 0 {
		return apperrors.Wrap(ErrInvalidPolicy, "window must be positive")
	}
	if len(p.Tiers) == 0 {
		return apperrors.Wrap(ErrInvalidPolicy, "at least one tier is required")
	}
	for i, tier := range p.Tiers {
		if tier.Min >= tier.Max {
			return apperrors.Wrap(ErrInvalidPolicy, fmt.Sprintf("tier %d has an empty range", i+1))
		}
		if tier.Delay < 0 {
			return apperrors.Wrap(ErrInvalidPolicy, fmt.Sprintf("tier %d has a negative delay", i+1))
		}
		if i > 0 && p.Tiers[i-1].Max != tier.Min {
			return apperrors.Wrap(ErrInvalidPolicy, fmt.Sprintf("tier %d is not contiguous", i+1))
		}
	}
	return nil
}

// TierFor returns the first tier containing count and its 1-based position.
// ok is false when count is past the ceiling.
func (p Policy) TierFor(count int) (tier Tier, level int, ok bool) {
	for i, t := range p.Tiers {
		if t.Contains(count) {
			return t, i + 1, true
		}
	}
	return Tier{}, 0, false
}

// Decision is the outcome of observing one request.
type Decision struct {
	Reject bool
	// Count is the counter value after this request was recorded.
	Count int
	// Level is the 1-based tier applied, 0 for a fresh window or the hard ceiling.
	Level int
	// Delay is the minimum spacing the applied tier enforces.
	Delay time.Duration
	// FreshWindow is true when this request opened a new window.
	FreshWindow bool
}

// Observe advances the state of one client for a request arriving at now.
//
// current is the stored counter and remaining its lifetime; a nil counter or a
// non-positive remaining lifetime opens a new window. The returned TTL is the lifetime
// to store next with: the full window for a new entry, otherwise remaining unchanged.
func (p Policy) Observe(current *Counter, remaining time.Duration, now time.Time) (Decision, Counter, time.Duration) {
	if current == nil || remaining <= 0 {
		return Decision{Count: 1, FreshWindow: true}, NewCounter(now), p.Window
	}

	decision := Decision{Reject: true}
	if tier, level, ok := p.TierFor(current.Count); ok {
		decision.Level = level
		decision.Delay = tier.Delay
		decision.Reject = tier.Delay > 0 && now.Sub(current.LastRequestAt) < tier.Delay
	}

	next := current.Next(now)
	decision.Count = next.Count

	return decision, next, remaining
}
