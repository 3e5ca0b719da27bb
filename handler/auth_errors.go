// file: handler/auth_errors.go

package handler

import (
	"errors"
	"go-auth-api/common"
	"go-auth-api/repository"
	"go-auth-api/service"
	"go-auth-api/token"
	"net/http"
)

// mapAuthError turns an auth flow failure into a stable, non-leaking HTTP
// error. Revocations carry their reason in the message.
func mapAuthError(err error) *common.AppError {
	var revokedErr *service.TokenRevokedError
	switch {
	case errors.As(err, &revokedErr):
		return unauthorized("Token has been revoked: "+string(revokedErr.Reason), err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return unauthorized("Invalid email or password", err)
	case errors.Is(err, token.ErrExpired):
		return unauthorized("Token has expired", err)
	case errors.Is(err, token.ErrInvalid), errors.Is(err, service.ErrTokenInvalid):
		return unauthorized("Token is invalid", err)
	case errors.Is(err, service.ErrUserNotFound):
		return unauthorized("User not found", err)
	case errors.Is(err, token.ErrWrongKind):
		return common.NewAppError(http.StatusBadRequest, "Token type is invalid", err)
	case errors.Is(err, token.ErrMissingClaim):
		return common.NewAppError(http.StatusBadRequest, "Token is missing a required claim", err)
	case errors.Is(err, service.ErrAccountDeactivated):
		return common.NewAppError(http.StatusForbidden, "Account is deactivated", err)
	case errors.Is(err, service.ErrAccountDeleted):
		return common.NewAppError(http.StatusForbidden, "Account has been deleted", err)
	case errors.Is(err, repository.ErrPersistFailed), errors.Is(err, repository.ErrDuplicate):
		return common.NewAppError(http.StatusServiceUnavailable, "Service temporarily unavailable", err)
	default:
		return common.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
}

func unauthorized(message string, err error) *common.AppError {
	return common.NewAppError(http.StatusUnauthorized, message, err).WithHeader("WWW-Authenticate", "Bearer")
}
