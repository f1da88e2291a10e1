// Package usecase implements business logic orchestration for authentication operations.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/NotSilaev/MrStone/internal/auth/domain"
	authService "github.com/NotSilaev/MrStone/internal/auth/service"
	"github.com/NotSilaev/MrStone/internal/clock"
	"github.com/NotSilaev/MrStone/internal/database"
	apperrors "github.com/NotSilaev/MrStone/internal/errors"
)

// tokenUseCase implements TokenUseCase on top of salted token hashes.
type tokenUseCase struct {
	txManager         database.TxManager
	userRepo          UserRepository
	tokenRepo         TokenRepository
	tokenService      authService.TokenService
	clock             clock.Clock
	defaultExpiration time.Duration
	logger            *slog.Logger
}

// NewTokenUseCase creates a new TokenUseCase. defaultExpiration is the lifetime of issued
// tokens when the caller does not pick one; zero issues tokens that never expire.
func NewTokenUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	tokenRepo TokenRepository,
	tokenService authService.TokenService,
	clk clock.Clock,
	defaultExpiration time.Duration,
	logger *slog.Logger,
) TokenUseCase {
	return &tokenUseCase{
		txManager:         txManager,
		userRepo:          userRepo,
		tokenRepo:         tokenRepo,
		tokenService:      tokenService,
		clock:             clk,
		defaultExpiration: defaultExpiration,
		logger:            logger,
	}
}

// Issue generates a token for input.UserID and stores its salted hash.
// Returns ErrUserNotFound when the user does not exist.
func (t *tokenUseCase) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	lifetime := t.defaultExpiration
	if input.ExpiresIn != nil {
		lifetime = *input.ExpiresIn
	}
	if lifetime < 0 {
		return nil, authDomain.ErrInvalidExpiration
	}

	plainToken, tokenHash, saltHex, err := t.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := t.clock.Now()
	token := &authDomain.AuthToken{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    input.UserID,
		TokenHash: tokenHash,
		SaltHex:   saltHex,
		CreatedAt: now,
	}
	if lifetime > 0 {
		expiresAt := now.Add(lifetime)
		token.ExpiresAt = &expiresAt
	}

	err = t.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := t.userRepo.GetByID(ctx, input.UserID); err != nil {
			return err
		}
		return t.tokenRepo.Create(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	return &authDomain.IssueTokenOutput{
		ID:         token.ID,
		PlainToken: plainToken,
		ExpiresAt:  token.ExpiresAt,
	}, nil
}

// Revoke marks the token revoked.
func (t *tokenUseCase) Revoke(ctx context.Context, tokenID uuid.UUID) error {
	return t.tokenRepo.Revoke(ctx, tokenID)
}

// Authenticate scans the valid tokens for one whose salted hash matches plainToken.
//
// Records with a malformed salt are skipped. Store errors are returned wrapped; the token is
// never considered valid in that case.
func (t *tokenUseCase) Authenticate(ctx context.Context, plainToken string) (*authDomain.AuthToken, error) {
	if plainToken == "" {
		return nil, authDomain.ErrInvalidCredentials
	}

	now := t.clock.Now()
	tokens, err := t.tokenRepo.ListValid(ctx, now)
	if err != nil {
		t.logger.Error("credential store unavailable, rejecting token", slog.Any("error", err))
		return nil, apperrors.Wrap(err, "failed to list valid tokens")
	}

	for _, token := range tokens {
		if !token.IsValid(now) {
			continue
		}

		ok, err := t.tokenService.CompareToken(plainToken, token.TokenHash, token.SaltHex)
		if err != nil {
			t.logger.Warn("skipping token with malformed salt",
				slog.String("token_id", token.ID.String()),
				slog.Any("error", err))
			continue
		}
		if ok {
			return token, nil
		}
	}

	return nil, authDomain.ErrInvalidCredentials
}

// Verify is Authenticate reduced to a yes/no answer.
func (t *tokenUseCase) Verify(ctx context.Context, plainToken string) bool {
	_, err := t.Authenticate(ctx, plainToken)
	return err == nil
}

// CleanupExpired removes tokens expired or revoked before now minus days.
func (t *tokenUseCase) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrapf(apperrors.ErrInvalidInput, "days must not be negative, got %d", days)
	}

	before := t.clock.Now().AddDate(0, 0, -days)
	if dryRun {
		return t.tokenRepo.CountExpired(ctx, before)
	}
	return t.tokenRepo.DeleteExpired(ctx, before)
}
