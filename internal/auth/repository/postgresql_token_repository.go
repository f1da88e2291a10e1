// Package repository provides auth token persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/NotSilaev/MrStone/internal/auth/domain"
	"github.com/NotSilaev/MrStone/internal/database"
	apperrors "github.com/NotSilaev/MrStone/internal/errors"
)

const tokenColumns = `id, user_id, token_hash, salt_hex, created_at, expires_at, revoked`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToken(row rowScanner) (*authDomain.AuthToken, error) {
	var token authDomain.AuthToken
	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.SaltHex,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.Revoked,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// PostgreSQLTokenRepository implements AuthToken persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL AuthToken repository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}

// Create inserts a new AuthToken.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *authDomain.AuthToken) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO auth_tokens (` + tokenColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.SaltHex,
		token.CreatedAt,
		token.ExpiresAt,
		token.Revoked,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create token")
	}
	return nil
}

// Get retrieves an AuthToken by ID. Returns ErrTokenNotFound if the token doesn't exist.
func (p *PostgreSQLTokenRepository) Get(ctx context.Context, tokenID uuid.UUID) (*authDomain.AuthToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM auth_tokens WHERE id = $1`

	token, err := scanToken(querier.QueryRowContext(ctx, query, tokenID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token")
	}
	return token, nil
}

// Revoke sets the revoked flag. Revoking an already revoked token succeeds.
func (p *PostgreSQLTokenRepository) Revoke(ctx context.Context, tokenID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `UPDATE auth_tokens SET revoked = TRUE WHERE id = $1`, tokenID)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke token")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke token")
	}
	if affected == 0 {
		return authDomain.ErrTokenNotFound
	}
	return nil
}

// ListValid returns the tokens that are not revoked and not expired at now, newest first.
func (p *PostgreSQLTokenRepository) ListValid(ctx context.Context, now time.Time) ([]*authDomain.AuthToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM auth_tokens
			  WHERE revoked = FALSE AND (expires_at IS NULL OR expires_at > $1)
			  ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list valid tokens")
	}
	defer func() {
		_ = rows.Close()
	}()

	var tokens []*authDomain.AuthToken
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan token")
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tokens")
	}

	return tokens, nil
}

// CountExpired counts tokens expired before the cutoff, or revoked and created before it.
func (p *PostgreSQLTokenRepository) CountExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM auth_tokens
			  WHERE (expires_at IS NOT NULL AND expires_at < $1) OR (revoked = TRUE AND created_at < $1)`

	var count int64
	if err := querier.QueryRowContext(ctx, query, before).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired tokens")
	}
	return count, nil
}

// DeleteExpired deletes the tokens CountExpired counts.
func (p *PostgreSQLTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM auth_tokens
			  WHERE (expires_at IS NOT NULL AND expires_at < $1) OR (revoked = TRUE AND created_at < $1)`

	result, err := querier.ExecContext(ctx, query, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired tokens")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired tokens")
	}
	return count, nil
}
