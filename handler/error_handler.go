package handler

import (
	"go-auth-api/common"
	"net/http"
)

// ErrorHandlingMiddleware adapts a handler that returns *common.AppError to
// http.HandlerFunc and renders any returned error.
func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}
