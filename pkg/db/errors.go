package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
)

// SQLSTATE classes this package acts on.
const (
	stateUniqueViolation      = "23505"
	stateSerializationFailure = "40001"
	stateDeadlockDetected     = "40P01"
	stateLockNotAvailable     = "55P03"
)

// sqlState extracts the SQLSTATE and constraint from either Postgres driver.
func sqlState(err error) (state, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}
	return "", "", false
}

// IsUniqueViolation reports whether err is a unique constraint violation,
// optionally on the named constraint. SQLite errors are matched by message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if state, constraint, ok := sqlState(err); ok {
		return state == stateUniqueViolation && (constraintName == "" || constraint == constraintName)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return constraintName == ""
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") && !strings.Contains(msg, "duplicate key value") {
		return false
	}
	return constraintName == "" || strings.Contains(msg, constraintName)
}

// IsContention reports whether Postgres aborted the statement because of a
// concurrent transaction. Retrying the whole transaction may succeed.
func IsContention(err error) bool {
	state, _, ok := sqlState(err)
	if !ok {
		return false
	}
	switch state {
	case stateSerializationFailure, stateDeadlockDetected, stateLockNotAvailable:
		return true
	}
	return false
}

// contention rewrites a contention failure as a retryable ConcurrencyConflict
// so callers see 409 instead of a storage 500.
func contention(err error) error {
	if err == nil || !IsContention(err) || pkgerrors.IsCode(err, pkgerrors.CodeConcurrencyConflict) {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeConcurrencyConflict, err, "concurrent update, retry the request")
}
