// Package clock provides the time source used for token expiry and throttling decisions.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time normalized to UTC.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// Now returns the current wall-clock time in UTC.
func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// NewSystem returns a Clock backed by time.Now.
func NewSystem() Clock {
	return systemClock{}
}

// Mock is a manually driven Clock for tests.
type Mock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMock creates a Mock clock starting at now.
func NewMock(now time.Time) *Mock {
	return &Mock{now: now.UTC()}
}

// Now returns the mocked time.
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t.UTC()
}

// Advance moves the clock forward by d.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
