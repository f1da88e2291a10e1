// Package http provides HTTP middleware and handlers for bearer token authentication.
package http

import (
	"context"

	authDomain "github.com/NotSilaev/MrStone/internal/auth/domain"
)

// tokenKey is a context key type for storing the authenticated token record.
type tokenKey struct{}

// WithToken stores the authenticated token record in the context.
// This is typically called by the authentication middleware after successful verification.
func WithToken(ctx context.Context, token *authDomain.AuthToken) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// GetToken retrieves the authenticated token record from the context.
// Returns (token, true) if a token is present, or (nil, false) if none was set.
func GetToken(ctx context.Context) (*authDomain.AuthToken, bool) {
	token, ok := ctx.Value(tokenKey{}).(*authDomain.AuthToken)
	return token, ok
}
