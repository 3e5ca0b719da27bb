// file: repository/revocation_repository_test.go

package repository

import (
	"context"
	"database/sql"
	"errors"
	"go-auth-api/model"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRevocationRepoMock(t *testing.T) (*RevocationRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRevocationRepository(db), dbMock
}

func TestRevocationRepository_Add(t *testing.T) {
	ctx := context.Background()
	revokedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		repo, dbMock := newRevocationRepoMock(t)
		dbMock.ExpectExec("INSERT INTO revoked_tokens").
			WithArgs("01HZX3YQ5ACCESS0000000000", "logout", revokedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Add(ctx, &model.RevokedToken{TokenID: "01HZX3YQ5ACCESS0000000000", Reason: model.ReasonLogout, RevokedAt: revokedAt})
		assert.NoError(t, err)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("duplicate is a local failure", func(t *testing.T) {
		repo, dbMock := newRevocationRepoMock(t)
		dbMock.ExpectExec("INSERT INTO revoked_tokens").
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

		err := repo.Add(ctx, &model.RevokedToken{TokenID: "dup", Reason: model.ReasonTokenRotation, RevokedAt: revokedAt})
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.NotErrorIs(t, err, ErrPersistFailed)
	})

	t.Run("other write failure", func(t *testing.T) {
		repo, dbMock := newRevocationRepoMock(t)
		dbMock.ExpectExec("INSERT INTO revoked_tokens").
			WillReturnError(errors.New("timeout"))

		err := repo.Add(ctx, &model.RevokedToken{TokenID: "x", Reason: model.ReasonLogout, RevokedAt: revokedAt})
		assert.ErrorIs(t, err, ErrPersistFailed)
	})
}

func TestRevocationRepository_Get(t *testing.T) {
	ctx := context.Background()
	revokedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		repo, dbMock := newRevocationRepoMock(t)
		dbMock.ExpectQuery("SELECT token_id, reason, revoked_at FROM revoked_tokens").
			WithArgs("jti").
			WillReturnRows(sqlmock.NewRows([]string{"token_id", "reason", "revoked_at"}).
				AddRow("jti", "compromised_token", revokedAt))

		token, found, err := repo.Get(ctx, "jti")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, model.ReasonCompromised, token.Reason)
		assert.Equal(t, revokedAt, token.RevokedAt)
	})

	t.Run("null reason", func(t *testing.T) {
		repo, dbMock := newRevocationRepoMock(t)
		dbMock.ExpectQuery("SELECT token_id, reason, revoked_at FROM revoked_tokens").
			WithArgs("jti").
			WillReturnRows(sqlmock.NewRows([]string{"token_id", "reason", "revoked_at"}).
				AddRow("jti", nil, revokedAt))

		token, found, err := repo.Get(ctx, "jti")
		require.NoError(t, err)
		require.True(t, found)
		assert.Empty(t, token.Reason)
	})

	t.Run("absent is not an error", func(t *testing.T) {
		repo, dbMock := newRevocationRepoMock(t)
		dbMock.ExpectQuery("SELECT token_id, reason, revoked_at FROM revoked_tokens").
			WithArgs("jti").
			WillReturnError(sql.ErrNoRows)

		token, found, err := repo.Get(ctx, "jti")
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, token)
	})

	t.Run("query failure", func(t *testing.T) {
		repo, dbMock := newRevocationRepoMock(t)
		dbMock.ExpectQuery("SELECT token_id, reason, revoked_at FROM revoked_tokens").
			WillReturnError(errors.New("db down"))

		_, found, err := repo.Get(ctx, "jti")
		assert.Error(t, err)
		assert.False(t, found)
	})
}

func TestRevocationRepository_Delete(t *testing.T) {
	repo, dbMock := newRevocationRepoMock(t)
	dbMock.ExpectExec("DELETE FROM revoked_tokens").
		WithArgs("jti").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), "jti"))
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
