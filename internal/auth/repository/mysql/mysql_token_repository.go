// Package mysql provides auth token persistence for MySQL.
package mysql

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
	var idBytes, userIDBytes []byte

	err := row.Scan(
		&idBytes,
		&userIDBytes,
		&token.TokenHash,
		&token.SaltHex,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.Revoked,
	)
	if err != nil {
		return nil, err
	}

	if err := token.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token id")
	}
	if err := token.UserID.UnmarshalBinary(userIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	return &token, nil
}

// MySQLTokenRepository implements AuthToken persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLTokenRepository struct {
	db *sql.DB
}

// NewMySQLTokenRepository creates a new MySQL AuthToken repository.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}

// Create inserts a new AuthToken.
func (m *MySQLTokenRepository) Create(ctx context.Context, token *authDomain.AuthToken) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO auth_tokens (` + tokenColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	id, err := token.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token id")
	}

	userID, err := token.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		userID,
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
func (m *MySQLTokenRepository) Get(ctx context.Context, tokenID uuid.UUID) (*authDomain.AuthToken, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := tokenID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal token id")
	}

	query := `SELECT ` + tokenColumns + ` FROM auth_tokens WHERE id = ?`

	token, err := scanToken(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token")
	}
	return token, nil
}

// Revoke sets the revoked flag. MySQL reports zero affected rows for an already revoked
// token, so a zero count is resolved with a lookup.
func (m *MySQLTokenRepository) Revoke(ctx context.Context, tokenID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := tokenID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token id")
	}

	result, err := querier.ExecContext(ctx, `UPDATE auth_tokens SET revoked = TRUE WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke token")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke token")
	}
	if affected == 0 {
		_, err := m.Get(ctx, tokenID)
		return err
	}
	return nil
}

// ListValid returns the tokens that are not revoked and not expired at now, newest first.
func (m *MySQLTokenRepository) ListValid(ctx context.Context, now time.Time) ([]*authDomain.AuthToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + tokenColumns + ` FROM auth_tokens
			  WHERE revoked = FALSE AND (expires_at IS NULL OR expires_at > ?)
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
func (m *MySQLTokenRepository) CountExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM auth_tokens
			  WHERE (expires_at IS NOT NULL AND expires_at < ?) OR (revoked = TRUE AND created_at < ?)`

	var count int64
	if err := querier.QueryRowContext(ctx, query, before, before).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired tokens")
	}
	return count, nil
}

// DeleteExpired deletes the tokens CountExpired counts.
func (m *MySQLTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM auth_tokens
			  WHERE (expires_at IS NOT NULL AND expires_at < ?) OR (revoked = TRUE AND created_at < ?)`

	result, err := querier.ExecContext(ctx, query, before, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired tokens")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired tokens")
	}
	return count, nil
}
