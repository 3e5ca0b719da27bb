// file: repository/errors.go

package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned by lookups that expect exactly one row.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert collides with an existing key.
	ErrDuplicate = errors.New("record already exists")

	// ErrPersistFailed is returned for every other write failure. Engine
	// specific detail is logged at the store boundary, not returned.
	ErrPersistFailed = errors.New("failed to persist record")
)

const pqUniqueViolation = "23505"

// writeError maps a driver error from an insert/update/delete onto the
// store-level error kinds.
func writeError(store string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return fmt.Errorf("%s: %w", store, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", store, ErrPersistFailed)
}
