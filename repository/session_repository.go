// file: repository/session_repository.go

package repository

import (
	"context"
	"database/sql"
	"errors"
	"go-auth-api/logger"
	"go-auth-api/model"

	"github.com/sirupsen/logrus"
)

// ISessionRepository defines the contract for refresh session storage.
type ISessionRepository interface {
	Save(ctx context.Context, session *model.RefreshSession) error
	Get(ctx context.Context, tokenID string) (*model.RefreshSession, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.RefreshSession, error)
	Delete(ctx context.Context, tokenID string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}

// SessionRepository implements ISessionRepository on Postgres.
type SessionRepository struct {
	DB *sql.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// Save inserts a new refresh session. TokenHash must already be hashed.
func (r *SessionRepository) Save(ctx context.Context, session *model.RefreshSession) error {
	log := logger.Log.WithFields(logrus.Fields{
		"token_id":   session.TokenID,
		"owner_id":   session.OwnerID,
		"expires_at": session.ExpiresAt,
	})
	log.Info("Executing query to create a new refresh session")

	var device sql.NullString
	if session.DeviceFingerprint != "" {
		device = sql.NullString{String: session.DeviceFingerprint, Valid: true}
	}

	query := `INSERT INTO refresh_sessions (token_id, owner_id, token_hash, client_ip, device_fingerprint, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		session.TokenID, session.OwnerID, session.TokenHash, session.ClientIP, device, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh session query")
		return writeError("session store", err)
	}
	return nil
}

const sessionColumns = `token_id, owner_id, token_hash, client_ip, device_fingerprint, created_at, expires_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*model.RefreshSession, error) {
	var (
		s      model.RefreshSession
		device sql.NullString
	)
	if err := row.Scan(&s.TokenID, &s.OwnerID, &s.TokenHash, &s.ClientIP, &device, &s.CreatedAt, &s.ExpiresAt); err != nil {
		return nil, err
	}
	s.DeviceFingerprint = device.String
	return &s, nil
}

// Get retrieves a refresh session by token id. Returns ErrNotFound if absent.
func (r *SessionRepository) Get(ctx context.Context, tokenID string) (*model.RefreshSession, error) {
	log := logger.Log.WithField("token_id", tokenID)
	log.Debug("Executing query to get refresh session by token id")

	query := `SELECT ` + sessionColumns + ` FROM refresh_sessions WHERE token_id = $1`
	session, err := scanSession(r.DB.QueryRowContext(ctx, query, tokenID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		log.WithError(err).Error("Failed to execute get refresh session query")
		return nil, err
	}
	return session, nil
}

// ListByOwner returns every live refresh session of a user, oldest first.
func (r *SessionRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.RefreshSession, error) {
	log := logger.Log.WithField("owner_id", ownerID)
	log.Debug("Executing query to list refresh sessions by owner")

	query := `SELECT ` + sessionColumns + ` FROM refresh_sessions WHERE owner_id = $1 ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.WithError(err).Error("Failed to execute list refresh sessions query")
		return nil, err
	}
	defer rows.Close()

	var sessions []*model.RefreshSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan refresh session row")
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// Delete removes a single refresh session. Deleting a missing session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, tokenID string) error {
	log := logger.Log.WithField("token_id", tokenID)
	log.Info("Executing query to delete refresh session")

	_, err := r.DB.ExecContext(ctx, `DELETE FROM refresh_sessions WHERE token_id = $1`, tokenID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete refresh session query")
		return writeError("session store", err)
	}
	return nil
}

// DeleteByOwner deletes all refresh sessions for a specific user.
// This is used for logging out from all sessions.
func (r *SessionRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	log := logger.Log.WithField("owner_id", ownerID)
	log.Info("Executing query to delete all refresh sessions for a user")

	_, err := r.DB.ExecContext(ctx, `DELETE FROM refresh_sessions WHERE owner_id = $1`, ownerID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete refresh sessions query")
		return writeError("session store", err)
	}
	return nil
}
