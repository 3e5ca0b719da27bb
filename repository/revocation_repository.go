// file: repository/revocation_repository.go

package repository

import (
	"context"
	"database/sql"
	"errors"
	"go-auth-api/logger"
	"go-auth-api/model"

	"github.com/sirupsen/logrus"
)

// IRevocationRepository defines the contract for the token blacklist.
// Get reports absence through found=false; err is reserved for real failures.
type IRevocationRepository interface {
	Add(ctx context.Context, token *model.RevokedToken) error
	Get(ctx context.Context, tokenID string) (token *model.RevokedToken, found bool, err error)
	Delete(ctx context.Context, tokenID string) error
}

// RevocationRepository implements IRevocationRepository on Postgres.
type RevocationRepository struct {
	DB *sql.DB
}

// NewRevocationRepository creates a new RevocationRepository.
func NewRevocationRepository(db *sql.DB) *RevocationRepository {
	return &RevocationRepository{DB: db}
}

// Add inserts a blacklist entry. A second Add for the same token id fails
// with ErrDuplicate.
func (r *RevocationRepository) Add(ctx context.Context, token *model.RevokedToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"token_id": token.TokenID,
		"reason":   token.Reason,
	})
	log.Info("Executing query to blacklist a token")

	var reason sql.NullString
	if token.Reason != "" {
		reason = sql.NullString{String: string(token.Reason), Valid: true}
	}

	query := `INSERT INTO revoked_tokens (token_id, reason, revoked_at) VALUES ($1, $2, $3)`
	if _, err := r.DB.ExecContext(ctx, query, token.TokenID, reason, token.RevokedAt); err != nil {
		log.WithError(err).Error("Failed to execute blacklist token query")
		return writeError("revocation store", err)
	}
	return nil
}

// Get looks up a blacklist entry by token id.
func (r *RevocationRepository) Get(ctx context.Context, tokenID string) (*model.RevokedToken, bool, error) {
	log := logger.Log.WithField("token_id", tokenID)
	log.Debug("Executing query to get blacklisted token")

	token := &model.RevokedToken{}
	query := `SELECT token_id, reason, revoked_at FROM revoked_tokens WHERE token_id = $1`
	err := r.DB.QueryRowContext(ctx, query, tokenID).Scan(&token.TokenID, &token.Reason, &token.RevokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		log.WithError(err).Error("Failed to execute get blacklisted token query")
		return nil, false, err
	}
	return token, true, nil
}

// Delete removes a blacklist entry. No flow calls it; it exists for
// housekeeping and tests.
func (r *RevocationRepository) Delete(ctx context.Context, tokenID string) error {
	log := logger.Log.WithField("token_id", tokenID)
	log.Info("Executing query to delete blacklisted token")

	if _, err := r.DB.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE token_id = $1`, tokenID); err != nil {
		log.WithError(err).Error("Failed to execute delete blacklisted token query")
		return writeError("revocation store", err)
	}
	return nil
}
