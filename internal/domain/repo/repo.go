// Package repo provides read access to the external domain store. Row
// absence is a renderable condition, not a crash: every lookup maps missing
// rows to ErrNotFound.
package repo

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
