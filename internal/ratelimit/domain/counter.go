package domain

import (
	"encoding/json"
	"time"

	apperrors "github.com/NotSilaev/MrStone/internal/errors"
)

// KeyPrefix prefixes every counter key in the shared cache.
const KeyPrefix = "requests:"

// ErrMalformedCounter indicates a cached counter that cannot be decoded.
var ErrMalformedCounter = apperrors.New("malformed rate limit counter")

// Counter is the per-client state stored in the shared cache.
type Counter struct {
	Count         int       `json:"count"`
	LastRequestAt time.Time `json:"last_request_at"`
}

// Key returns the cache key holding the counter of clientIdentity.
func Key(clientIdentity string) string {
	return KeyPrefix + clientIdentity
}

// NewCounter returns the counter of a client whose first request in the window arrived at now.
func NewCounter(now time.Time) Counter {
	return Counter{Count: 1, LastRequestAt: now.UTC()}
}

// Next records one more request at now.
func (c Counter) Next(now time.Time) Counter {
	return Counter{Count: c.Count + 1, LastRequestAt: now.UTC()}
}

// Encode serializes the counter for the cache.
func (c Counter) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encode rate limit counter")
	}
	return string(data), nil
}

// DecodeCounter parses a cached counter. Negative counts and missing timestamps are malformed.
func DecodeCounter(raw string) (Counter, error) {
	var c Counter
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Counter{}, apperrors.Wrap(ErrMalformedCounter, err.Error())
	}
	if c.Count < 0 || c.LastRequestAt.IsZero() {
		return Counter{}, ErrMalformedCounter
	}
	return c, nil
}
