package persistence

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// isUniqueViolation reports whether err is a unique-constraint violation.
// With TranslateError enabled GORM normalizes most drivers to
// gorm.ErrDuplicatedKey; the pq and string checks cover raw SQL paths.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// forUpdate reports whether the dialect supports row locking.
// SQLite serializes writers on its own; asking it for FOR UPDATE fails.
func forUpdate(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}
