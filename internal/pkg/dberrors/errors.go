package dberrors

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsUniqueViolation reports whether err is a PostgreSQL unique violation.
// An empty constraintName matches any constraint.
func IsUniqueViolation(err error, constraintName string) bool {
	return hasCode(err, pgerrcode.UniqueViolation, constraintName)
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign key violation.
func IsForeignKeyViolation(err error, constraintName string) bool {
	return hasCode(err, pgerrcode.ForeignKeyViolation, constraintName)
}

func hasCode(err error, code, constraintName string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	return constraintName == "" || pgErr.ConstraintName == constraintName
}
