// Package dto provides data transfer objects for the auth HTTP layer.
package dto

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/NotSilaev/MrStone/internal/auth/domain"
	appValidation "github.com/NotSilaev/MrStone/internal/validation"
)

// IssueTokenRequest contains the parameters for issuing a bearer token.
type IssueTokenRequest struct {
	UserID string `json:"user_id"`
	// ExpiresInSeconds overrides the configured token lifetime; 0 means never expires.
	ExpiresInSeconds *int64 `json:"expires_in_seconds"`
}

// Validate checks if the issue token request is valid.
func (r *IssueTokenRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.UserID,
			validation.Required,
			appValidation.NotBlank,
			appValidation.UUID,
		),
		validation.Field(&r.ExpiresInSeconds,
			validation.Min(int64(0)),
		),
	)
	return appValidation.WrapValidationError(err)
}

// ToIssueTokenInput converts a validated request into the use case input.
func (r *IssueTokenRequest) ToIssueTokenInput() (*authDomain.IssueTokenInput, error) {
	userID, err := uuid.Parse(r.UserID)
	if err != nil {
		return nil, err
	}

	input := &authDomain.IssueTokenInput{UserID: userID}
	if r.ExpiresInSeconds != nil {
		expiresIn := time.Duration(*r.ExpiresInSeconds) * time.Second
		input.ExpiresIn = &expiresIn
	}
	return input, nil
}
