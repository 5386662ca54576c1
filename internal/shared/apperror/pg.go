package apperror

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// IsUniqueViolation reports whether err is a postgres unique violation,
// optionally restricted to one constraint.
func IsUniqueViolation(err error, constraint string) bool {
	return isPgViolation(err, pgUniqueViolation, constraint)
}

// IsExclusionViolation is IsUniqueViolation for EXCLUDE constraints.
func IsExclusionViolation(err error, constraint string) bool {
	return isPgViolation(err, pgExclusionViolation, constraint)
}

func isPgViolation(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
