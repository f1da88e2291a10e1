// Package domain defines the bearer credentials accepted by the API and the rules
// deciding whether one is still usable.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SaltSize is the number of random bytes mixed into every token hash.
const SaltSize = 16

// AuthToken is a stored bearer credential. Only the salted hash of the plain token is kept.
type AuthToken struct {
	ID     uuid.UUID
	UserID uuid.UUID
	// TokenHash is base64(SHA-256(salt || token)).
	TokenHash string
	// SaltHex is the hex encoding of the SaltSize salt.
	SaltHex   string
	CreatedAt time.Time
	// ExpiresAt is nil for tokens that never expire.
	ExpiresAt *time.Time
	Revoked   bool
}

// IsValid reports whether the token may authenticate a request at now:
// it is not revoked and either never expires or expires strictly after now.
func (t *AuthToken) IsValid(now time.Time) bool {
	if t.Revoked {
		return false
	}
	return t.ExpiresAt == nil || t.ExpiresAt.After(now)
}

// IssueTokenInput holds the parameters for issuing a token to a user.
type IssueTokenInput struct {
	UserID uuid.UUID
	// ExpiresIn overrides the configured lifetime. Zero means the token never expires.
	ExpiresIn *time.Duration
}

// IssueTokenOutput carries the plain token. It is returned exactly once.
type IssueTokenOutput struct {
	ID         uuid.UUID
	PlainToken string
	ExpiresAt  *time.Time
}
