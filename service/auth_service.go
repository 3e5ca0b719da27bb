// file: service/auth_service.go

package service

import (
	"context"
	"errors"
	"go-auth-api/logger"
	"go-auth-api/metrics"
	"go-auth-api/model"
	"go-auth-api/repository"
	"go-auth-api/token"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/errgroup"
)

// DefaultRotationWindow is the remaining session lifetime below which a
// refresh replaces the refresh token as well.
const DefaultRotationWindow = 48 * time.Hour

// IAuthService is the contract the transport layer depends on.
type IAuthService interface {
	Login(ctx context.Context, in LoginInput) (*TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (*model.UserPublic, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	RefreshAccessToken(ctx context.Context, in RefreshInput) (*TokenPair, error)
}

// LoginInput carries the credentials and request origin of a login. The
// previous tokens are optional and belong to a session being replaced.
type LoginInput struct {
	Email                string
	Password             string
	ClientIP             string
	DeviceFingerprint    string
	PreviousAccessToken  string
	PreviousRefreshToken string
}

// RefreshInput is the presented token pair plus the current request origin.
type RefreshInput struct {
	AccessToken       string
	RefreshToken      string
	ClientIP          string
	DeviceFingerprint string
}

// TokenPair is the result of Login and RefreshAccessToken. RefreshToken is
// empty when a refresh kept the existing refresh session.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthConfig holds the collaborators and policy of an AuthService that are
// not stores.
type AuthConfig struct {
	Passwords      Hasher
	SessionTokens  Hasher
	Metrics        *metrics.Auth
	RotationWindow time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// AuthService orchestrates login, authentication, logout and refresh.
type AuthService struct {
	users          repository.IUserRepository
	sessions       repository.ISessionRepository
	revocations    repository.IRevocationRepository
	codec          *token.Codec
	passwords      Hasher
	sessionTokens  Hasher
	metrics        *metrics.Auth
	rotationWindow time.Duration
	now            func() time.Time
}

func NewAuthService(
	users repository.IUserRepository,
	sessions repository.ISessionRepository,
	revocations repository.IRevocationRepository,
	codec *token.Codec,
	cfg AuthConfig,
) *AuthService {
	if cfg.RotationWindow <= 0 {
		cfg.RotationWindow = DefaultRotationWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AuthService{
		users:          users,
		sessions:       sessions,
		revocations:    revocations,
		codec:          codec,
		passwords:      cfg.Passwords,
		sessionTokens:  cfg.SessionTokens,
		metrics:        cfg.Metrics,
		rotationWindow: cfg.RotationWindow,
		now:            cfg.Now,
	}
}

// Login checks credentials and issues a fresh access/refresh pair bound to
// the caller's IP and device.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenPair, error) {
	log := logger.Log.WithField("client_ip", in.ClientIP)

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.Login(metrics.OutcomeRejected)
			return nil, ErrInvalidCredentials
		}
		s.metrics.Login(metrics.OutcomeError)
		return nil, err
	}
	if !s.passwords.Verify(in.Password, user.HashedPassword) {
		s.metrics.Login(metrics.OutcomeRejected)
		return nil, ErrInvalidCredentials
	}
	if err := checkAccount(user); err != nil {
		s.metrics.Login(metrics.OutcomeRejected)
		return nil, err
	}

	if in.PreviousAccessToken != "" || in.PreviousRefreshToken != "" {
		s.retirePreviousSession(ctx, user.ID, in.PreviousAccessToken, in.PreviousRefreshToken)
	}

	pair, err := s.startSession(ctx, user.ID, in.ClientIP, in.DeviceFingerprint)
	if err != nil {
		s.metrics.Login(metrics.OutcomeError)
		return nil, err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}

	s.metrics.Login(metrics.OutcomeSuccess)
	log.WithField("user_id", user.ID).Info("User logged in")
	return pair, nil
}

// retirePreviousSession blacklists the previous access token and drops the
// previous refresh session. Tokens issued to anyone but ownerID are ignored.
// Each side runs regardless of the other; failures are logged.
func (s *AuthService) retirePreviousSession(ctx context.Context, ownerID, accessToken, refreshToken string) {
	p := pool.New().WithErrors()
	if accessToken != "" {
		p.Go(func() error {
			claims, err := s.codec.Verify(accessToken, token.KindAccess,
				token.WithoutExpiry(), token.WithoutSubject(), token.WithoutTokenID())
			if err != nil || claims.TokenID() == "" || claims.Subject != ownerID {
				return nil
			}
			err = s.blacklist(ctx, claims.TokenID(), model.ReasonLogout)
			if errors.Is(err, repository.ErrDuplicate) {
				return nil
			}
			return err
		})
	}
	if refreshToken != "" {
		p.Go(func() error {
			claims, err := s.codec.Verify(refreshToken, token.KindRefresh, token.WithoutExpiry())
			if err != nil || claims.Subject != ownerID {
				return nil
			}
			return s.sessions.Delete(ctx, claims.TokenID())
		})
	}
	if err := p.Wait(); err != nil {
		logger.Log.WithError(err).Warn("Failed to fully retire previous session on login")
	}
}

// startSession mints a new pair and persists the refresh session. Either
// both tokens are returned or neither is.
func (s *AuthService) startSession(ctx context.Context, ownerID, clientIP, device string) (*TokenPair, error) {
	pair := &TokenPair{}
	var g errgroup.Group
	g.Go(func() error {
		access, err := s.codec.Issue(ownerID, token.KindAccess, token.Extra{})
		pair.AccessToken = access
		return err
	})
	g.Go(func() error {
		refresh, err := s.createRefreshSession(ctx, ownerID, clientIP, device)
		pair.RefreshToken = refresh
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *AuthService) createRefreshSession(ctx context.Context, ownerID, clientIP, device string) (string, error) {
	signed, claims, err := s.codec.IssueWithClaims(ownerID, token.KindRefresh, token.Extra{ClientIP: clientIP})
	if err != nil {
		return "", err
	}
	hash, err := s.sessionTokens.Hash(signed)
	if err != nil {
		return "", err
	}
	session := &model.RefreshSession{
		TokenID:           claims.TokenID(),
		OwnerID:           ownerID,
		TokenHash:         hash,
		ClientIP:          clientIP,
		DeviceFingerprint: device,
		CreatedAt:         claims.IssuedAtTime(),
		ExpiresAt:         claims.ExpiresAtTime(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", err
	}
	return signed, nil
}

// Authenticate resolves a bearer access token to the user it was issued to.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*model.UserPublic, error) {
	_, user, err := s.authenticate(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *AuthService) authenticate(ctx context.Context, accessToken string) (*token.Claims, *model.User, error) {
	claims, err := s.codec.Verify(accessToken, token.KindAccess)
	if err != nil {
		return nil, nil, err
	}
	if err := s.ensureNotRevoked(ctx, claims); err != nil {
		return nil, nil, err
	}
	user, err := s.activeUser(ctx, claims.Subject)
	if err != nil {
		return nil, nil, err
	}
	return claims, user, nil
}

// Logout retires the caller's access token and, when it can be recovered,
// their refresh session. The access token must still authenticate.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	accessClaims, user, err := s.authenticate(ctx, accessToken)
	if err != nil {
		return err
	}
	log := logger.Log.WithField("user_id", user.ID)

	var refreshID string
	if refreshToken != "" {
		claims, err := s.codec.Verify(refreshToken, token.KindRefresh, token.WithoutExpiry())
		switch {
		case err != nil:
			log.WithError(err).Debug("Skipping refresh cleanup on logout")
		case claims.Subject != user.ID:
			log.Warn("Refresh token presented on logout belongs to another user")
		default:
			refreshID = claims.TokenID()
		}
	}

	var accessErr error
	p := pool.New().WithErrors()
	p.Go(func() error {
		accessErr = s.blacklist(ctx, accessClaims.TokenID(), model.ReasonLogout)
		if errors.Is(accessErr, repository.ErrDuplicate) {
			accessErr = nil
		}
		return accessErr
	})
	if refreshID != "" {
		p.Go(func() error {
			err := s.blacklist(ctx, refreshID, model.ReasonLogout)
			if errors.Is(err, repository.ErrDuplicate) {
				return nil
			}
			return err
		})
		p.Go(func() error {
			return s.sessions.Delete(ctx, refreshID)
		})
	}
	if err := p.Wait(); err != nil {
		log.WithError(err).Warn("Logout cleanup finished with failures")
	}
	if accessErr != nil {
		return accessErr
	}

	log.Info("User logged out")
	return nil
}

// RefreshAccessToken exchanges a token pair for a new access token. Both
// presented tokens are retired; a replacement refresh token is only minted
// when the session is close to expiry. Replays of retired tokens burn every
// session of the owner.
func (s *AuthService) RefreshAccessToken(ctx context.Context, in RefreshInput) (*TokenPair, error) {
	pair, err := s.refresh(ctx, in)
	switch {
	case err == nil:
		s.metrics.Refresh(metrics.OutcomeSuccess)
	case errors.Is(err, ErrTokenRevoked):
		s.metrics.Refresh(metrics.OutcomeRevoked)
	case errors.Is(err, repository.ErrPersistFailed):
		s.metrics.Refresh(metrics.OutcomeError)
	default:
		s.metrics.Refresh(metrics.OutcomeRejected)
	}
	return pair, err
}

func (s *AuthService) refresh(ctx context.Context, in RefreshInput) (*TokenPair, error) {
	var accessClaims, refreshClaims *token.Claims
	var decode errgroup.Group
	decode.Go(func() error {
		var err error
		accessClaims, err = s.codec.Verify(in.AccessToken, token.KindAccess, token.WithoutExpiry())
		return err
	})
	decode.Go(func() error {
		var err error
		refreshClaims, err = s.codec.Verify(in.RefreshToken, token.KindRefresh)
		return err
	})
	if err := decode.Wait(); err != nil {
		return nil, err
	}
	if accessClaims.Subject != refreshClaims.Subject {
		return nil, ErrTokenInvalid
	}

	user, err := s.activeUser(ctx, refreshClaims.Subject)
	if err != nil {
		return nil, err
	}
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"token_id": refreshClaims.TokenID(),
	})

	refreshEntry, found, err := s.revocations.Get(ctx, refreshClaims.TokenID())
	if err != nil {
		return nil, err
	}
	if found {
		if refreshEntry.Reason == model.ReasonTokenRotation {
			log.Warn("Rotated refresh token presented again, revoking all sessions")
			s.burnFamily(ctx, user.ID)
		}
		return nil, revoked(token.KindRefresh, refreshEntry.Reason)
	}

	accessEntry, found, err := s.revocations.Get(ctx, accessClaims.TokenID())
	if err != nil {
		return nil, err
	}
	if found {
		if accessEntry.Reason == model.ReasonTokenRotation {
			log.Warn("Access token retired by a previous refresh presented again, revoking all sessions")
			s.burnFamily(ctx, user.ID)
			return nil, revoked(token.KindAccess, model.ReasonTokenRotation)
		}
		err := s.blacklist(ctx, refreshClaims.TokenID(), model.ReasonTokenRotation)
		if err != nil && !errors.Is(err, repository.ErrDuplicate) {
			log.WithError(err).Error("Failed to blacklist refresh token paired with a revoked access token")
		}
		return nil, revoked(token.KindRefresh, model.ReasonTokenRotation)
	}

	session, err := s.sessions.Get(ctx, refreshClaims.TokenID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if session.OwnerID != user.ID || !s.sessionTokens.Verify(in.RefreshToken, session.TokenHash) {
		return nil, ErrTokenInvalid
	}

	if !session.MatchesOrigin(in.ClientIP, in.DeviceFingerprint) {
		log.WithField("client_ip", in.ClientIP).Warn("Refresh session used from a different origin")
		s.quarantine(ctx, session.TokenID)
		return nil, revoked(token.KindRefresh, model.ReasonCompromised)
	}

	now := s.now().UTC()
	rotate := session.ExpiresAt.Sub(now) < s.rotationWindow

	// Every refresh consumes the presented pair. Whether a replacement
	// refresh token is minted is decided separately below.
	var retire errgroup.Group
	retire.Go(func() error {
		return s.blacklist(ctx, accessClaims.TokenID(), model.ReasonTokenRotation)
	})
	retire.Go(func() error {
		return s.blacklist(ctx, session.TokenID, model.ReasonTokenRotation)
	})
	if err := retire.Wait(); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Another refresh with the same pair got here first.
			return nil, revoked(token.KindRefresh, model.ReasonTokenRotation)
		}
		return nil, err
	}

	pair := &TokenPair{}
	var issue errgroup.Group
	issue.Go(func() error {
		access, err := s.codec.Issue(session.OwnerID, token.KindAccess, token.Extra{})
		pair.AccessToken = access
		return err
	})
	if rotate {
		issue.Go(func() error {
			refresh, err := s.createRefreshSession(ctx, session.OwnerID, session.ClientIP, session.DeviceFingerprint)
			pair.RefreshToken = refresh
			return err
		})
	}
	if err := issue.Wait(); err != nil {
		return nil, err
	}

	if rotate {
		s.metrics.Rotation()
		if err := s.sessions.Delete(ctx, session.TokenID); err != nil {
			log.WithError(err).Warn("Failed to delete rotated refresh session")
		}
	}

	log.WithField("rotated", rotate).Info("Access token refreshed")
	return pair, nil
}

// burnFamily revokes every refresh session of ownerID. Each blacklist entry
// and the session purge run independently.
func (s *AuthService) burnFamily(ctx context.Context, ownerID string) {
	s.metrics.ReuseDetected()
	log := logger.Log.WithField("user_id", ownerID)

	sessions, err := s.sessions.ListByOwner(ctx, ownerID)
	if err != nil {
		log.WithError(err).Error("Failed to list sessions for revocation")
	}

	p := pool.New().WithErrors()
	for _, session := range sessions {
		tokenID := session.TokenID
		p.Go(func() error {
			err := s.blacklist(ctx, tokenID, model.ReasonCompromised)
			if errors.Is(err, repository.ErrDuplicate) {
				return nil
			}
			return err
		})
	}
	p.Go(func() error {
		return s.sessions.DeleteByOwner(ctx, ownerID)
	})
	if err := p.Wait(); err != nil {
		log.WithError(err).Error("Session family revocation finished with failures")
	}
}

// quarantine blacklists a refresh session seen from a foreign origin and
// removes it.
func (s *AuthService) quarantine(ctx context.Context, tokenID string) {
	p := pool.New().WithErrors()
	p.Go(func() error {
		err := s.blacklist(ctx, tokenID, model.ReasonCompromised)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return err
	})
	p.Go(func() error {
		return s.sessions.Delete(ctx, tokenID)
	})
	if err := p.Wait(); err != nil {
		logger.Log.WithError(err).WithField("token_id", tokenID).Error("Failed to quarantine refresh session")
	}
}

func (s *AuthService) blacklist(ctx context.Context, tokenID string, reason model.RevocationReason) error {
	err := s.revocations.Add(ctx, &model.RevokedToken{
		TokenID:   tokenID,
		Reason:    reason,
		RevokedAt: s.now().UTC(),
	})
	if err == nil {
		s.metrics.Revoked(string(reason))
	}
	return err
}

func (s *AuthService) ensureNotRevoked(ctx context.Context, claims *token.Claims) error {
	entry, found, err := s.revocations.Get(ctx, claims.TokenID())
	if err != nil {
		return err
	}
	if found {
		return revoked(claims.Kind, entry.Reason)
	}
	return nil
}

func (s *AuthService) activeUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := checkAccount(user); err != nil {
		return nil, err
	}
	return user, nil
}

func checkAccount(user *model.User) error {
	if user.IsDeleted {
		return ErrAccountDeleted
	}
	if !user.IsActive {
		return ErrAccountDeactivated
	}
	return nil
}
