package repositories

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

// ErrDuplicate is returned when an insert or re-key collides with the
// unique key of an existing row.
var ErrDuplicate = errors.New("duplicate row")

// ErrNoRows is returned when a lookup or targeted update matches
// nothing. Aliased so services don't import database/sql directly.
var ErrNoRows = errors.New("no rows")

const pgUniqueViolation = "23505"

// translateError maps driver errors onto the repository sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation {
		return ErrDuplicate
	}
	return err
}
