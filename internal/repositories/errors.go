package repositories

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicateKey is returned when a write hits a unique constraint.
var ErrDuplicateKey = errors.New("duplicate key")

// isUniqueViolation reports whether err carries postgres code 23505.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// ErrNotFound is returned by writes that target a missing record.
var ErrNotFound = errors.New("record not found")
