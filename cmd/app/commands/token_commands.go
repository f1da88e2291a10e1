package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/NotSilaev/MrStone/internal/auth/domain"
	authUseCase "github.com/NotSilaev/MrStone/internal/auth/usecase"
	userUseCase "github.com/NotSilaev/MrStone/internal/user/usecase"
)

// RunIssueToken issues a bearer token to the user named userName. A nil expiresIn
// uses the configured lifetime; zero issues a token that never expires.
// The plain token is printed once and cannot be recovered afterwards.
func RunIssueToken(
	ctx context.Context,
	users userUseCase.UseCase,
	tokens authUseCase.TokenUseCase,
	logger *slog.Logger,
	writer io.Writer,
	userName string,
	expiresIn *time.Duration,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	user, err := users.GetByName(ctx, userName)
	if err != nil {
		return fmt.Errorf("failed to find user %q: %w", userName, err)
	}

	output, err := tokens.Issue(ctx, &authDomain.IssueTokenInput{UserID: user.ID, ExpiresIn: expiresIn})
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	logger.Info("token issued",
		slog.String("token_id", output.ID.String()),
		slog.String("user_id", user.ID.String()))

	if format == FormatJSON {
		return writeJSON(writer, map[string]any{
			"id":         output.ID.String(),
			"user_id":    user.ID.String(),
			"token":      output.PlainToken,
			"expires_at": output.ExpiresAt,
		})
	}

	expires := "never"
	if output.ExpiresAt != nil {
		expires = output.ExpiresAt.Format(time.RFC3339)
	}
	_, _ = fmt.Fprintf(writer,
		"Token issued successfully\nID: %s\nUser: %s\nExpires: %s\nToken: %s\n\nWARNING: Save this token securely. It will not be shown again.\n",
		output.ID, user.Name, expires, output.PlainToken)
	return nil
}

// RunRevokeToken permanently revokes the token with the given ID.
func RunRevokeToken(
	ctx context.Context,
	tokens authUseCase.TokenUseCase,
	logger *slog.Logger,
	writer io.Writer,
	tokenID string,
) error {
	id, err := uuid.Parse(tokenID)
	if err != nil {
		return fmt.Errorf("invalid token ID format: %w", err)
	}

	if err := tokens.Revoke(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	logger.Info("token revoked", slog.String("token_id", id.String()))
	_, _ = fmt.Fprintf(writer, "Token %s revoked\n", id)
	return nil
}
