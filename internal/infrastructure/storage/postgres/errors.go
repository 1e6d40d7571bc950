package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pgcledger/internal/core/apperror"
)

// PostgreSQL error codes the repositories translate.
const (
	CodeUniqueViolation      = "23505"
	CodeForeignKeyViolation  = "23503"
	CodeCheckViolation       = "23514"
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
)

// PgCode returns the SQLSTATE of err, or "" when err is not a server error.
func PgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// MapError turns driver errors into application errors. entityName and key
// describe the row being read or written.
//
//	no rows       -> NotFound
//	23505         -> Duplicate (field = violated constraint)
//	23503         -> HasDependents
//	23514         -> Validation
//
// Anything else is wrapped with op context and returned unchanged.
func MapError(err error, entityName string, key any) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewNotFound(entityName, key)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case CodeUniqueViolation:
			return apperror.NewDuplicate(entityName, pgErr.ConstraintName, fmt.Sprint(key)).WithCause(err)
		case CodeForeignKeyViolation:
			return apperror.NewHasDependents(entityName, key).WithCause(err)
		case CodeCheckViolation:
			return apperror.NewValidation(pgErr.Message).
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		}
	}
	return fmt.Errorf("%s %v: %w", entityName, key, err)
}
