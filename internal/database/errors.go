package database

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors for repository lookups.
var (
	ErrAdNotFound      = errors.New("ad not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrDuplicateURL    = errors.New("ad with this URL already exists")
)

// pqUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint failure.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation
}
