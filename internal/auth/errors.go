package auth

import "errors"

// Kind enumerates the client-visible authentication failures.
type Kind string

const (
	KindMissingToken            Kind = "missing_token"
	KindInvalidToken            Kind = "invalid_token"
	KindRevokedToken            Kind = "revoked_token"
	KindTokenAlreadyBlacklisted Kind = "token_already_blacklisted"
	KindInvalidCredentials      Kind = "invalid_credentials"
	KindInactiveUser            Kind = "inactive_user"
	KindUserNotFound            Kind = "user_not_found"
)

var messages = map[Kind]string{
	KindMissingToken:            "authorization token is missing",
	KindInvalidToken:            "invalid authorization token",
	KindRevokedToken:            "token has been revoked",
	KindTokenAlreadyBlacklisted: "token is already revoked",
	KindInvalidCredentials:      "invalid email or password",
	KindInactiveUser:            "user account is inactive",
	KindUserNotFound:            "user not found",
}

// LogoutMessage is the fixed confirmation returned by a successful logout.
const LogoutMessage = "successfully logged out"

// Message is the fixed text sent to clients for k.
func (k Kind) Message() string { return messages[k] }

// Error carries a Kind plus an optional internal cause. Only the kind's
// message ever reaches the client.
type Error struct {
	Kind  Kind
	cause error
}

func newError(k Kind, cause error) *Error { return &Error{Kind: k, cause: cause} }

func (e *Error) Error() string { return e.Kind.Message() }

func (e *Error) Unwrap() error { return e.cause }

// Is matches on Kind so callers can compare against the Err* values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrMissingToken            = &Error{Kind: KindMissingToken}
	ErrInvalidToken            = &Error{Kind: KindInvalidToken}
	ErrRevokedToken            = &Error{Kind: KindRevokedToken}
	ErrTokenAlreadyBlacklisted = &Error{Kind: KindTokenAlreadyBlacklisted}
	ErrInvalidCredentials      = &Error{Kind: KindInvalidCredentials}
	ErrInactiveUser            = &Error{Kind: KindInactiveUser}
	ErrUserNotFound            = &Error{Kind: KindUserNotFound}
)

// KindOf extracts the Kind of an auth error anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
