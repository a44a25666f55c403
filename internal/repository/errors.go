package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// ErrEventFull is returned by RegistrationRepository.Create when the
// event has reached its capacity.
var ErrEventFull = errors.New("event capacity reached")

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation, used to map duplicate inserts to Conflict errors.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
