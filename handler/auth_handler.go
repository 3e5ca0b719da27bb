// file: handler/auth_handler.go

package handler

import (
	"encoding/json"
	"go-auth-api/common"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/service"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// CookieConfig controls the refresh token cookie.
type CookieConfig struct {
	Name   string
	Path   string
	Secure bool
	MaxAge time.Duration
}

type AuthHandler struct {
	service service.IAuthService
	cookie  CookieConfig
}

func NewAuthHandler(service service.IAuthService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "refresh_token"
	}
	if cookie.Path == "" {
		cookie.Path = "/auth"
	}
	return &AuthHandler{service: service, cookie: cookie}
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges credentials for an access token and a refresh token. The refresh token is also set as an HTTP-only cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      model.LoginRequest  true  "Credentials"
// @Success      200          {object}  model.TokenResponse
// @Failure      400          {object}  common.AppError
// @Failure      401          {object}  common.AppError
// @Failure      403          {object}  common.AppError
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	in := service.LoginInput{
		Email:             req.Email,
		Password:          req.Password,
		ClientIP:          clientIP(r),
		DeviceFingerprint: deviceFingerprint(r),
	}
	// A client that is already signed in hands back its current pair so it
	// can be retired.
	if previous, ok := bearerToken(r); ok {
		in.PreviousAccessToken = previous
	}
	if c, err := r.Cookie(h.cookie.Name); err == nil {
		in.PreviousRefreshToken = c.Value
	}

	pair, err := h.service.Login(r.Context(), in)
	if err != nil {
		return mapAuthError(err)
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, model.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	})
	return nil
}

// Refresh godoc
// @Summary      Refresh the access token
// @Description  Exchanges the current access token (Authorization header, may be expired) and refresh token (cookie or body) for a new access token. A new refresh token is issued when the current one is close to expiry.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      model.RefreshRequest  false  "Refresh token when no cookie is sent"
// @Success      200   {object}  model.TokenResponse
// @Failure      400   {object}  common.AppError
// @Failure      401   {object}  common.AppError
// @Security     BearerAuth
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	accessToken, ok := bearerToken(r)
	if !ok {
		return unauthorized("Authorization header is required", nil)
	}

	refreshToken := ""
	if c, err := r.Cookie(h.cookie.Name); err == nil {
		refreshToken = c.Value
	} else if r.ContentLength != 0 {
		var req model.RefreshRequest
		if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
			return appErr
		}
		refreshToken = req.RefreshToken
	}
	if refreshToken == "" {
		return unauthorized("Refresh token is required", nil)
	}

	pair, err := h.service.RefreshAccessToken(r.Context(), service.RefreshInput{
		AccessToken:       accessToken,
		RefreshToken:      refreshToken,
		ClientIP:          clientIP(r),
		DeviceFingerprint: deviceFingerprint(r),
	})
	if err != nil {
		return mapAuthError(err)
	}

	if pair.RefreshToken != "" {
		h.setRefreshCookie(w, pair.RefreshToken)
	}
	writeJSON(w, http.StatusOK, model.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	})
	return nil
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the access token and the refresh token cookie, and clears the cookie.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  model.MessageResponse
// @Failure      401  {object}  common.AppError
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	accessToken, ok := bearerToken(r)
	if !ok {
		return unauthorized("Authorization header is required", nil)
	}
	refreshToken := ""
	if c, err := r.Cookie(h.cookie.Name); err == nil {
		refreshToken = c.Value
	}

	if err := h.service.Logout(r.Context(), accessToken, refreshToken); err != nil {
		return mapAuthError(err)
	}

	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Logged out"})
	return nil
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  model.UserPublic
// @Failure      401  {object}  common.AppError
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := r.Context().Value(UserKey).(*model.UserPublic)
	if !ok {
		return unauthorized("Invalid user in token", nil)
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Debug("Profile request received")

	writeJSON(w, http.StatusOK, user)
	return nil
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     h.cookie.Path,
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     h.cookie.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.WithError(err).WithField("status_code", status).Error("Failed to write response body")
	}
}
