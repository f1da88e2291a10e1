// Package usecase defines business logic interfaces for bearer token authentication.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/NotSilaev/MrStone/internal/auth/domain"
	userDomain "github.com/NotSilaev/MrStone/internal/user/domain"
)

// TokenRepository defines persistence operations for authentication tokens.
// Implementations must support transaction-aware operations via context propagation.
type TokenRepository interface {
	// Create stores a new token.
	Create(ctx context.Context, token *authDomain.AuthToken) error

	// Get retrieves a token by ID. Returns ErrTokenNotFound if not found.
	Get(ctx context.Context, tokenID uuid.UUID) (*authDomain.AuthToken, error)

	// Revoke marks a token as revoked. Returns ErrTokenNotFound if not found.
	Revoke(ctx context.Context, tokenID uuid.UUID) error

	// ListValid returns every token that is not revoked and does not expire at or before now.
	ListValid(ctx context.Context, now time.Time) ([]*authDomain.AuthToken, error)

	// CountExpired counts tokens that expired, or were created and revoked, before the cutoff.
	CountExpired(ctx context.Context, before time.Time) (int64, error)

	// DeleteExpired removes the tokens CountExpired counts and returns how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// UserRepository is the part of user persistence token issuance needs.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
}

// TokenUseCase defines bearer token issuance, revocation and verification.
type TokenUseCase interface {
	// Issue creates a token for an existing user. The plain token is only returned here.
	Issue(ctx context.Context, input *authDomain.IssueTokenInput) (*authDomain.IssueTokenOutput, error)

	// Revoke permanently invalidates a token. Revoking twice is not an error.
	Revoke(ctx context.Context, tokenID uuid.UUID) error

	// Authenticate returns the valid token record matching plainToken. Every failure,
	// including store errors, results in an error; callers must treat it as a rejection.
	Authenticate(ctx context.Context, plainToken string) (*authDomain.AuthToken, error)

	// Verify reports whether plainToken matches a valid token record. It fails closed.
	Verify(ctx context.Context, plainToken string) bool

	// CleanupExpired deletes (or with dryRun only counts) tokens expired or revoked more
	// than days days ago.
	CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error)
}
