package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var ErrDuplicateEmail = errors.New("email already registered")

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// missingParent turns a foreign key violation on a user_id or workshop_id column into the
// owning entity's not-found sentinel. Other errors pass through unchanged.
func missingParent(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != foreignKeyViolation {
		return err
	}
	if strings.Contains(pgErr.ConstraintName, "user_id") || strings.Contains(pgErr.Detail, "user_id") {
		return ErrUserNotFound
	}
	return ErrWorkshopNotFound
}
