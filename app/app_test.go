package app

import (
	"encoding/json"
	"go-auth-api/config"
	"go-auth-api/logger"
	"go-auth-api/model"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() config.Config {
	var cfg config.Config
	cfg.JWT.Algorithm = "HS256"
	cfg.JWT.AccessSecretKey = "access-secret"
	cfg.JWT.RefreshSecretKey = "refresh-secret"
	cfg.JWT.EmailSecretKey = "email-secret"
	cfg.JWT.AccessTTL = 15 * time.Minute
	cfg.JWT.RefreshTTL = 7 * 24 * time.Hour
	cfg.JWT.EmailTTL = 30 * time.Minute
	cfg.JWT.RefreshCookieName = "refresh_token"
	cfg.JWT.RefreshCookiePath = "/auth"
	cfg.Session.RotationWindow = 48 * time.Hour
	cfg.Redis.CacheTTL = time.Hour
	cfg.Hashing.BcryptCost = bcrypt.MinCost
	cfg.Hashing.Argon2Memory = 1024
	cfg.Hashing.Argon2Time = 1
	cfg.Hashing.Argon2Threads = 1
	return cfg
}

func setup(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	logger.InitWithLevel("error")

	database, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	dbMock.MatchExpectationsInOrder(false)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	h, err := NewHandler(testConfig(), database, rdb)
	require.NoError(t, err)
	return h, dbMock
}

func TestNewHandler_RejectsBadAlgorithm(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.Algorithm = "RS256"

	_, err := NewHandler(cfg, nil, nil)
	assert.Error(t, err)
}

func TestNewHandler_ServesHealthAndMetrics(t *testing.T) {
	h, _ := setup(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "auth_refresh_rotations_total")
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestNewHandler_LoginThenMe(t *testing.T) {
	h, dbMock := setup(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	userColumns := []string{"id", "full_name", "email", "hashed_password", "role", "is_active", "is_deleted", "created_at", "last_login_at"}
	userRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(userColumns).
			AddRow("01HZX3V5J6Q9Z8Y7X6W5V4T3S2", "Ada Lovelace", "ada@example.com", string(hashed), "user", true, false, time.Now(), nil)
	}

	dbMock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("ada@example.com").
		WillReturnRows(userRow())
	dbMock.ExpectExec("INSERT INTO refresh_sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectExec("UPDATE users SET last_login_at").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"Ada@Example.com","password":"password123"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "app-test")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var tokens model.TokenResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&tokens))
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	var refreshCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "refresh_token" {
			refreshCookie = c
		}
	}
	require.NotNil(t, refreshCookie)
	assert.True(t, refreshCookie.HttpOnly)
	assert.Equal(t, "/auth", refreshCookie.Path)

	dbMock.ExpectQuery("SELECT token_id, reason, revoked_at FROM revoked_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"token_id", "reason", "revoked_at"}))
	dbMock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("01HZX3V5J6Q9Z8Y7X6W5V4T3S2").
		WillReturnRows(userRow())

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var me model.UserPublic
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&me))
	assert.Equal(t, "ada@example.com", me.Email)

	assert.NoError(t, dbMock.ExpectationsWereMet())
}
