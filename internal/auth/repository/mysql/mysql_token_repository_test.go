package mysql

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/NotSilaev/MrStone/internal/auth/domain"
)

var tokenRowColumns = []string{"id", "user_id", "token_hash", "salt_hex", "created_at", "expires_at", "revoked"}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func mustBinary(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	b, err := id.MarshalBinary()
	require.NoError(t, err)
	return b
}

func TestMySQLTokenRepository_Create(t *testing.T) {
	ctx := context.Background()
	token := &authDomain.AuthToken{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    uuid.Must(uuid.NewV7()),
		TokenHash: "n4bQgYhMfWWaL+qgxVrQFaO/TxsrC4Is0V1sFbDwCgg=",
		SaltHex:   "000102030405060708090a0b0c0d0e0f",
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO auth_tokens`)).
			WithArgs(mustBinary(t, token.ID), mustBinary(t, token.UserID), token.TokenHash, token.SaltHex, token.CreatedAt, nil, false).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewMySQLTokenRepository(db).Create(ctx, token))
	})

	t.Run("DatabaseError", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO auth_tokens`)).WillReturnError(sql.ErrConnDone)

		err := NewMySQLTokenRepository(db).Create(ctx, token)
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})
}

func TestMySQLTokenRepository_Get(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())
	userID := uuid.Must(uuid.NewV7())
	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	expiresAt := createdAt.Add(24 * time.Hour)
	query := regexp.QuoteMeta(`SELECT id, user_id, token_hash, salt_hex, created_at, expires_at, revoked FROM auth_tokens WHERE id = ?`)

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(query).
			WithArgs(mustBinary(t, id)).
			WillReturnRows(sqlmock.NewRows(tokenRowColumns).AddRow(
				mustBinary(t, id), mustBinary(t, userID), "hash", "000102030405060708090a0b0c0d0e0f", createdAt, expiresAt, false,
			))

		token, err := NewMySQLTokenRepository(db).Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, token.ID)
		assert.Equal(t, userID, token.UserID)
		require.NotNil(t, token.ExpiresAt)
		assert.True(t, token.ExpiresAt.Equal(expiresAt))
		assert.False(t, token.Revoked)
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(query).WithArgs(mustBinary(t, id)).WillReturnRows(sqlmock.NewRows(tokenRowColumns))

		_, err := NewMySQLTokenRepository(db).Get(ctx, id)
		assert.ErrorIs(t, err, authDomain.ErrTokenNotFound)
	})

	t.Run("MalformedID", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(query).
			WithArgs(mustBinary(t, id)).
			WillReturnRows(sqlmock.NewRows(tokenRowColumns).AddRow(
				[]byte{0x01}, mustBinary(t, userID), "hash", "00", createdAt, nil, false,
			))

		_, err := NewMySQLTokenRepository(db).Get(ctx, id)
		assert.ErrorContains(t, err, "failed to unmarshal token id")
	})
}

func TestMySQLTokenRepository_Revoke(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())
	update := regexp.QuoteMeta(`UPDATE auth_tokens SET revoked = TRUE WHERE id = ?`)
	lookup := regexp.QuoteMeta(`FROM auth_tokens WHERE id = ?`)

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(update).WithArgs(mustBinary(t, id)).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewMySQLTokenRepository(db).Revoke(ctx, id))
	})

	t.Run("AlreadyRevoked", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(update).WithArgs(mustBinary(t, id)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(lookup).
			WithArgs(mustBinary(t, id)).
			WillReturnRows(sqlmock.NewRows(tokenRowColumns).AddRow(
				mustBinary(t, id), mustBinary(t, uuid.Must(uuid.NewV7())), "hash", "00", time.Now().UTC(), nil, true,
			))

		assert.NoError(t, NewMySQLTokenRepository(db).Revoke(ctx, id))
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(update).WithArgs(mustBinary(t, id)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(lookup).WithArgs(mustBinary(t, id)).WillReturnRows(sqlmock.NewRows(tokenRowColumns))

		err := NewMySQLTokenRepository(db).Revoke(ctx, id)
		assert.ErrorIs(t, err, authDomain.ErrTokenNotFound)
	})
}

func TestMySQLTokenRepository_ListValid(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	id := uuid.Must(uuid.NewV7())

	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE revoked = FALSE AND (expires_at IS NULL OR expires_at > ?)`)).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows(tokenRowColumns).AddRow(
			mustBinary(t, id), mustBinary(t, uuid.Must(uuid.NewV7())), "hash", "000102030405060708090a0b0c0d0e0f", now.Add(-time.Hour), nil, false,
		))

	tokens, err := NewMySQLTokenRepository(db).ListValid(ctx, now)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, id, tokens[0].ID)
	assert.Nil(t, tokens[0].ExpiresAt)
}

func TestMySQLTokenRepository_CountAndDeleteExpired(t *testing.T) {
	ctx := context.Background()
	before := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Count", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM auth_tokens`)).
			WithArgs(before, before).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		count, err := NewMySQLTokenRepository(db).CountExpired(ctx, before)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("Delete", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM auth_tokens`)).
			WithArgs(before, before).
			WillReturnResult(sqlmock.NewResult(0, 4))

		count, err := NewMySQLTokenRepository(db).DeleteExpired(ctx, before)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
	})
}
