package domain

import (
	"github.com/NotSilaev/MrStone/internal/errors"
)

// Authentication errors.
var (
	// ErrInvalidCredentials covers missing, unknown, expired and revoked tokens alike.
	ErrInvalidCredentials = errors.Wrap(errors.ErrForbidden, "invalid auth token")

	// ErrTokenNotFound indicates a token with the specified ID was not found.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrInvalidExpiration indicates a negative token lifetime.
	ErrInvalidExpiration = errors.Wrap(errors.ErrInvalidInput, "token lifetime must not be negative")
)
