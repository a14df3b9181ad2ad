package dbx

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes we classify.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
	stringTooLong       = "22001"
)

// IsUniqueViolation reports whether err is a unique constraint violation and,
// if so, returns the name of the violated constraint.
func IsUniqueViolation(err error) (string, bool) {
	return constraintViolation(err, uniqueViolation)
}

// IsForeignKeyViolation reports whether err is a foreign key violation and,
// if so, returns the name of the violated constraint.
func IsForeignKeyViolation(err error) (string, bool) {
	return constraintViolation(err, foreignKeyViolation)
}

// IsCheckViolation reports whether err is a CHECK constraint violation.
func IsCheckViolation(err error) (string, bool) {
	return constraintViolation(err, checkViolation)
}

func constraintViolation(err error, code string) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// IsValueTooLong reports whether err is a string_data_right_truncation error,
// raised when a value exceeds its VARCHAR column. The server message is returned.
func IsValueTooLong(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == stringTooLong {
		return pgErr.Message, true
	}
	return "", false
}
