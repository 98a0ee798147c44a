package persistence

import (
	"errors"

	"github.com/lib/pq"
)

// pg error codes relevant to constraint translation
const (
	pgUniqueViolation = "23505"
)

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation, optionally on a specific constraint name. Repositories use this
// to translate racing inserts into domain conflicts instead of raw SQL
// errors.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
