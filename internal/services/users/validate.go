package users

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
)

const (
	maxNameLen     = 100
	minPasswordLen = 8
	maxPasswordLen = 100
)

var (
	namePattern = regexp.MustCompile(`^[А-Яа-яA-Za-z-]+$`)
	hasUpper    = regexp.MustCompile(`[A-Z]`)
	hasLower    = regexp.MustCompile(`[a-z]`)
	hasDigit    = regexp.MustCompile(`\d`)
)

// ValidationError reports the first invalid field of an input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !govalidator.IsEmail(email) {
		return invalid("email", "must be a valid email address")
	}
	return nil
}

func validateName(field, v string) error {
	if !namePattern.MatchString(v) {
		return invalid(field, "must contain only Russian or English letters and hyphens")
	}
	if utf8.RuneCountInString(v) > maxNameLen {
		return invalid(field, "must not exceed 100 characters")
	}
	return nil
}

func validatePassword(pw string) error {
	n := utf8.RuneCountInString(pw)
	switch {
	case n < minPasswordLen:
		return invalid("password", "must be at least 8 characters")
	case n > maxPasswordLen:
		return invalid("password", "must not exceed 100 characters")
	case !hasUpper.MatchString(pw):
		return invalid("password", "must contain at least one uppercase letter")
	case !hasLower.MatchString(pw):
		return invalid("password", "must contain at least one lowercase letter")
	case !hasDigit.MatchString(pw):
		return invalid("password", "must contain at least one digit")
	}
	return nil
}
