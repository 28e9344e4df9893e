// Package store holds the gorm-backed repositories. Callers distinguish
// failure cases through the sentinel errors below.
package store

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert or update violates a unique
// constraint.
var ErrConflict = errors.New("conflict")

// translate maps driver errors onto the package sentinels and wraps
// everything else with the operation name.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isDuplicateKeyError(err):
		return ErrConflict
	default:
		return errors.Wrap(err, op)
	}
}

// isDuplicateKeyError covers drivers opened without TranslateError.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{"duplicate key", "UNIQUE constraint failed", "violates unique constraint", "SQLSTATE 23505"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// NormalizeEmail is the canonical stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
