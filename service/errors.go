// file: service/errors.go

package service

import (
	"errors"
	"fmt"
	"go-auth-api/model"
	"go-auth-api/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrAccountDeleted     = errors.New("account has been deleted")
	ErrUserNotFound       = errors.New("user not found")

	// ErrTokenInvalid is returned when a token pair does not belong together
	// or a session no longer matches its token.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenRevoked is the sentinel behind every *TokenRevokedError.
	ErrTokenRevoked = errors.New("token has been revoked")

	ErrEmailTaken = errors.New("email is already registered")
)

// TokenRevokedError reports a blacklisted token and the reason it was
// blacklisted with.
type TokenRevokedError struct {
	Kind   token.Kind
	Reason model.RevocationReason
}

func (e *TokenRevokedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrTokenRevoked.Error(), e.Reason)
}

func (e *TokenRevokedError) Unwrap() error { return ErrTokenRevoked }

func revoked(kind token.Kind, reason model.RevocationReason) error {
	return &TokenRevokedError{Kind: kind, Reason: reason}
}
