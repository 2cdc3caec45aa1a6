package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"procura/internal/core/apperror"
)

// PostgreSQL SQLSTATE codes handled by MapError.
const (
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgForeignKeyViolation = "23503"
	pgQueryCanceled       = "57014"
	pgLockNotAvailable    = "55P03"
	pgDeadlockDetected    = "40P01"
)

// MapError translates driver errors into AppErrors. Unknown errors pass through.
func MapError(err error, entityName string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewNotFound(entityName, "").WithCause(err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return apperror.NewDuplicate(entityName, constraintField(pgErr.ConstraintName), "").WithCause(err)
	case pgCheckViolation:
		if strings.Contains(pgErr.ConstraintName, "qty") {
			return apperror.NewBusinessRule(apperror.CodeInsufficientStock, "stock quantity cannot go negative").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		}
		return apperror.NewValidation(pgErr.Message).WithCause(err)
	case pgForeignKeyViolation:
		return apperror.NewConflict("record is referenced by other records").WithCause(err)
	case pgQueryCanceled, pgLockNotAvailable, pgDeadlockDetected:
		return apperror.NewConcurrentUpdate(pgErr.Code).WithCause(err)
	}
	return err
}

// constraintField guesses the column from "<table>_<column>_key" style names.
func constraintField(constraint string) string {
	name := strings.TrimSuffix(strings.TrimSuffix(constraint, "_key"), "_uniq")
	if i := strings.Index(name, "_"); i >= 0 {
		return name[i+1:]
	}
	return name
}
