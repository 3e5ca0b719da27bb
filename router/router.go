package router

import (
	_ "go-auth-api/docs"
	"go-auth-api/handler"
	"go-auth-api/service"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// NewRouter wires every HTTP route. metrics may be nil.
func NewRouter(userHandler *handler.UserHandler, authHandler *handler.AuthHandler, authService service.IAuthService, metrics http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)

	mux.Handle("POST /auth/register", handler.ErrorHandlingMiddleware(userHandler.Register))
	mux.Handle("POST /auth/login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("POST /auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("POST /auth/logout", handler.ErrorHandlingMiddleware(authHandler.Logout))

	requireAuth := handler.AuthMiddleware(authService)
	mux.Handle("GET /auth/me", requireAuth(handler.ErrorHandlingMiddleware(authHandler.Me)))

	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return handler.RequestLogger(mux)
}
