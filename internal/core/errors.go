package core

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Domain error kinds. Handlers map these to HTTP statuses exactly once;
// store and driver errors never cross the handler boundary verbatim.
var (
	// ErrInvalidScope rejects creation requests whose scope set is empty or
	// contains tokens outside the closed enumeration.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrAlreadyExists surfaces store uniqueness conflicts. With random key
	// material it indicates a retryable collision, not corruption.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized is the single externally observable outcome for every
	// credential resolution failure: malformed key, unknown prefix, revoked
	// key, or hash mismatch. The distinct cause is logged, never returned.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound reports an absent or soft-deleted record.
	ErrNotFound = errors.New("not found")
)

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
