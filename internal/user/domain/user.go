// Package domain defines the users that authentication tokens are issued to.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/NotSilaev/MrStone/internal/errors"
)

// User is a named principal owning authentication tokens.
type User struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same name already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")
)
