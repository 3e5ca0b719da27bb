package db

import (
	"database/sql"
	"fmt"
	"go-auth-api/config"
	"go-auth-api/logger"

	_ "github.com/lib/pq"
)

// DSN builds the lib/pq connection string for cfg. The password is left out
// when redact is set so the result can be logged.
func DSN(cfg config.Config, redact bool) string {
	db := cfg.Database
	if redact {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable",
			db.Host, db.Port, db.User, db.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		db.Host, db.Port, db.User, db.Password, db.Name)
}

func Connect() (*sql.DB, error) {
	connStr := DSN(config.AppConfig, false)

	logger.Log.WithField("connection", DSN(config.AppConfig, true)).Info("Attempting to connect to the database")

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to open database connection")
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = db.Ping(); err != nil {
		logger.Log.WithError(err).Error("Failed to ping database")
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Log.Info("Database connection established successfully")
	return db, nil
}
