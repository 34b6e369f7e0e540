package service

import (
	"database/sql"
	"errors"
	"fmt"

	"ms-catering/internal/schedule"
)

// Business-rule rejections are expected control flow at a scan station and
// must stay distinguishable from storage failures. Callers branch with
// errors.Is.
var (
	// ErrNotFound maps missing slots, selections, grants or participants.
	ErrNotFound = errors.New("not found")

	// ErrNotEligible covers ticket holders without a qualifying tier or
	// option, and refunded tickets.
	ErrNotEligible = errors.New("not eligible")

	// ErrAlreadyValidated is the loser's outcome of the conditional
	// consumption update. Common under concurrent scanning, never logged as
	// a system error.
	ErrAlreadyValidated = errors.New("already validated")

	// ErrInvalidPeriod re-exports the resolver's refusal so callers depend
	// on one package for the full taxonomy.
	ErrInvalidPeriod = schedule.ErrInvalidPeriod
)

// notFound converts the driver's no-rows result into the service taxonomy,
// keeping everything else (PersistenceFailure) untouched.
func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return err
}
