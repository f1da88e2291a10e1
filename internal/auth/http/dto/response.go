package dto

import (
	"time"

	authDomain "github.com/NotSilaev/MrStone/internal/auth/domain"
)

// IssueTokenResponse contains the result of issuing a token.
// SECURITY: The token is only returned once and must be saved securely.
type IssueTokenResponse struct {
	ID        string     `json:"id"`
	Token     string     `json:"token"` //nolint:gosec // returned once on issuance
	ExpiresAt *time.Time `json:"expires_at"`
}

// MapIssueTokenOutput converts the use case output to an API response.
func MapIssueTokenOutput(output *authDomain.IssueTokenOutput) IssueTokenResponse {
	return IssueTokenResponse{
		ID:        output.ID.String(),
		Token:     output.PlainToken,
		ExpiresAt: output.ExpiresAt,
	}
}
