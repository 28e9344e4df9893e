package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evmyshkin/mvpy/internal/models"
	"github.com/evmyshkin/mvpy/internal/store"
)

// UserStore is the slice of user persistence the auth pipeline needs.
// Lookups report a missing row as store.ErrNotFound.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// RevocationStore persists revoked token ids. Revoke reports an existing
// id as store.ErrConflict.
type RevocationStore interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Revoke(ctx context.Context, jti string, userID uint, expiresAt time.Time) error
}

// LoginResult is returned to the caller of a successful login.
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
	TokenID     string
	User        *models.User
}

type Service struct {
	users       UserStore
	revocations RevocationStore
	issuer      *Issuer
	validator   *Validator
	decoy       *decoyHash
}

// NewService builds the login/logout pipeline. bcryptCost must match the
// cost used for stored password hashes.
func NewService(users UserStore, revocations RevocationStore, issuer *Issuer, validator *Validator, bcryptCost int) *Service {
	return &Service{
		users:       users,
		revocations: revocations,
		issuer:      issuer,
		validator:   validator,
		decoy:       newDecoyHash(bcryptCost),
	}
}

// Login checks credentials and issues a token. Unknown emails and wrong
// passwords are indistinguishable; an inactive account is only reported
// once the password has matched.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		s.decoy.compare(password)
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("find user: %w", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return LoginResult{}, ErrInactiveUser
	}

	tok, err := s.issuer.Issue(u)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		AccessToken: tok.Raw,
		TokenType:   TokenType,
		ExpiresIn:   int64(s.issuer.TTL() / time.Second),
		TokenID:     tok.ID,
		User:        u,
	}, nil
}

// Logout validates raw and blacklists its jti. A token that is already
// blacklisted, whether seen by the validator or lost in an insert race,
// yields ErrTokenAlreadyBlacklisted.
func (s *Service) Logout(ctx context.Context, raw string) (Token, error) {
	tok, err := s.validator.Validate(ctx, raw)
	if errors.Is(err, ErrRevokedToken) {
		return Token{}, newError(KindTokenAlreadyBlacklisted, err)
	}
	if err != nil {
		return Token{}, err
	}
	if err := s.revocations.Revoke(ctx, tok.ID, tok.UserID, tok.ExpiresAt); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return Token{}, newError(KindTokenAlreadyBlacklisted, err)
		}
		return Token{}, fmt.Errorf("revoke token: %w", err)
	}
	return tok, nil
}
