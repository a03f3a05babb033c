package sqlstore

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// pqUniqueViolation is the SQLSTATE PostgreSQL reports for a unique constraint.
const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}

func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
