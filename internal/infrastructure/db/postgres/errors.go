package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/accountkit/user-api/internal/core/domain"
)

const uniqueViolation = "23505"

// conflictFromError maps a unique-constraint violation on users to a
// *domain.ConflictError. Other errors are returned unchanged.
func conflictFromError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_email_key":
		return &domain.ConflictError{Field: "email"}
	case "users_username_key":
		return &domain.ConflictError{Field: "username"}
	}
	return err
}
