// repository/main_test.go
package repository

import (
	"go-auth-api/logger"
	"os"
	"testing"
)

// TestMain initializes the logger before any repository test runs.
func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}
