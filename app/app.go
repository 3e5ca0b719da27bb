// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"go-auth-api/config"
	"go-auth-api/db"
	"go-auth-api/handler"
	"go-auth-api/logger"
	"go-auth-api/metrics"
	"go-auth-api/repository"
	"go-auth-api/router"
	"go-auth-api/service"
	"go-auth-api/token"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// NewHandler wires every layer on top of an open database and cache client
// and returns the root HTTP handler.
func NewHandler(cfg config.Config, database *sql.DB, cache repository.ICacheClient) (http.Handler, error) {
	codec, err := token.NewCodec(token.Config{
		Algorithm: cfg.JWT.Algorithm,
		Access:    token.KeyConfig{Secret: []byte(cfg.JWT.AccessSecretKey), TTL: cfg.JWT.AccessTTL},
		Refresh:   token.KeyConfig{Secret: []byte(cfg.JWT.RefreshSecretKey), TTL: cfg.JWT.RefreshTTL},
		Email:     token.KeyConfig{Secret: []byte(cfg.JWT.EmailSecretKey), TTL: cfg.JWT.EmailTTL},
	})
	if err != nil {
		return nil, fmt.Errorf("building token codec: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	authMetrics := metrics.NewAuth(reg)

	passwords := service.NewBcryptHasher(cfg.Hashing.BcryptCost)
	sessionTokens := service.NewArgon2Hasher(service.Argon2Params{
		MemoryKiB:   cfg.Hashing.Argon2Memory,
		Iterations:  cfg.Hashing.Argon2Time,
		Parallelism: cfg.Hashing.Argon2Threads,
		KeyLength:   cfg.Hashing.Argon2KeyLength,
	})

	// Layers for User
	userRepo := repository.NewUserRepository(database)
	userService := service.NewUserService(userRepo, passwords)
	userHandler := handler.NewUserHandler(userService)

	// Layers for Auth
	sessionRepo := repository.NewSessionRepository(database)
	revocations := repository.NewCachedRevocationRepository(
		repository.NewRevocationRepository(database), cache, cfg.Redis.CacheTTL)
	authService := service.NewAuthService(userRepo, sessionRepo, revocations, codec, service.AuthConfig{
		Passwords:      passwords,
		SessionTokens:  sessionTokens,
		Metrics:        authMetrics,
		RotationWindow: cfg.Session.RotationWindow,
	})
	authHandler := handler.NewAuthHandler(authService, handler.CookieConfig{
		Name:   cfg.JWT.RefreshCookieName,
		Path:   cfg.JWT.RefreshCookiePath,
		Secure: cfg.JWT.RefreshCookieSecure,
		MaxAge: cfg.JWT.RefreshTTL,
	})

	return router.NewRouter(userHandler, authHandler, authService, metrics.Handler(reg)), nil
}

func Run() {
	config.LoadConfig(".")
	logger.InitWithLevel(config.AppConfig.Log.Level)
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database, config.AppConfig.Database.MigrationsPath); err != nil {
		logger.Log.Fatalf("Error applying migrations: %v", err)
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 5*time.Second)
	rdb, err := db.ConnectRedis(startCtx)
	startCancel()
	if err != nil {
		logger.Log.Fatalf("Error connecting to redis: %v", err)
	}
	defer rdb.Close()

	r, err := NewHandler(config.AppConfig, database, rdb)
	if err != nil {
		logger.Log.Fatalf("Error wiring application: %v", err)
	}

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
