package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/NotSilaev/MrStone/internal/errors"
	"github.com/NotSilaev/MrStone/internal/user/domain"
)

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

func TestPostgreSQLUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      "store-admin",
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (id, name, created_at) VALUES ($1, $2, $3)`)).
			WithArgs(user.ID, user.Name, user.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgreSQLUserRepository(db).Create(ctx, user))
	})

	t.Run("DuplicateName", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "users_name_key"`))

		err := NewPostgreSQLUserRepository(db).Create(ctx, user)
		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("DatabaseError", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).WillReturnError(sql.ErrConnDone)

		err := NewPostgreSQLUserRepository(db).Create(ctx, user)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.Contains(t, err.Error(), "failed to create user")
	})
}

func TestPostgreSQLUserRepository_GetByName(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())
	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, created_at FROM users WHERE name = $1`)).
			WithArgs("store-admin").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).
				AddRow(id.String(), "store-admin", createdAt))

		user, err := NewPostgreSQLUserRepository(db).GetByName(ctx, "store-admin")
		require.NoError(t, err)
		assert.Equal(t, &domain.User{ID: id, Name: "store-admin", CreatedAt: createdAt}, user)
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE name = $1`)).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}))

		user, err := NewPostgreSQLUserRepository(db).GetByName(ctx, "ghost")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestPostgreSQLUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, created_at FROM users WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).
				AddRow(id.String(), "store-admin", time.Now().UTC()))

		user, err := NewPostgreSQLUserRepository(db).GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		_, err := NewPostgreSQLUserRepository(db).GetByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
