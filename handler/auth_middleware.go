package handler

import (
	"context"
	"go-auth-api/service"
	"net/http"
)

type contextKey string

const (
	UserKey     contextKey = "user"
	UserIDKey   contextKey = "userID"
	UserRoleKey contextKey = "userRole"
)

// AuthMiddleware admits requests whose bearer token authenticates and puts
// the caller's public profile on the request context.
func AuthMiddleware(auth service.IAuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				unauthorized("Authorization header is required", nil).Send(w)
				return
			}
			tokenString, ok := bearerToken(r)
			if !ok {
				unauthorized("Invalid authorization header format", nil).Send(w)
				return
			}

			user, err := auth.Authenticate(r.Context(), tokenString)
			if err != nil {
				mapAuthError(err).Send(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, UserIDKey, user.ID)
			ctx = context.WithValue(ctx, UserRoleKey, user.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
