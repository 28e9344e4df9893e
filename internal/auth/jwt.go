package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/evmyshkin/mvpy/internal/models"
)

// TokenType is reported to clients next to every issued token.
const TokenType = "bearer"

const minSecretBytes = 32

// Claims is the signed payload of an access token.
type Claims struct {
	UserID *uint `json:"user_id,omitempty"`
	Active bool  `json:"is_active"`
	jwt.RegisteredClaims
}

// TokenConfig is the process-wide signing configuration.
type TokenConfig struct {
	Secret    []byte
	Algorithm string
	TTL       time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func (c TokenConfig) method() (jwt.SigningMethod, error) {
	if len(c.Secret) < minSecretBytes {
		return nil, fmt.Errorf("signing secret must be at least %d bytes", minSecretBytes)
	}
	if c.TTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	m := jwt.GetSigningMethod(c.Algorithm)
	if _, ok := m.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", c.Algorithm)
	}
	return m, nil
}

func (c TokenConfig) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// IssuedToken is a freshly signed access token.
type IssuedToken struct {
	Raw       string
	ID        string
	ExpiresAt time.Time
}

type Issuer struct {
	cfg    TokenConfig
	method jwt.SigningMethod
}

func NewIssuer(cfg TokenConfig) (*Issuer, error) {
	m, err := cfg.method()
	if err != nil {
		return nil, err
	}
	return &Issuer{cfg: cfg, method: m}, nil
}

// TTL is the lifetime given to every issued token.
func (i *Issuer) TTL() time.Duration { return i.cfg.TTL }

// Issue signs a new token for u with a fresh random jti.
func (i *Issuer) Issue(u *models.User) (IssuedToken, error) {
	jti, err := uuid.NewRandom()
	if err != nil {
		return IssuedToken{}, fmt.Errorf("generate token id: %w", err)
	}
	now := i.cfg.now().UTC().Truncate(time.Second)
	exp := now.Add(i.cfg.TTL)
	uid := u.ID
	claims := Claims{
		UserID: &uid,
		Active: u.IsActive,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        jti.String(),
		},
	}
	raw, err := jwt.NewWithClaims(i.method, claims).SignedString(i.cfg.Secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}
	return IssuedToken{Raw: raw, ID: claims.ID, ExpiresAt: exp}, nil
}

// Token is the verified content of a presented access token.
type Token struct {
	ID        string
	UserID    uint
	ExpiresAt time.Time
}

type Validator struct {
	cfg         TokenConfig
	parser      *jwt.Parser
	revocations RevocationStore
}

func NewValidator(cfg TokenConfig, revocations RevocationStore) (*Validator, error) {
	m, err := cfg.method()
	if err != nil {
		return nil, err
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{m.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(cfg.now),
	)
	return &Validator{cfg: cfg, parser: parser, revocations: revocations}, nil
}

// Validate verifies raw and checks the blacklist. It performs exactly one
// store read. Expired tokens fail with ErrInvalidToken like any other
// decode failure; the jwt cause stays reachable through errors.Is.
func (v *Validator) Validate(ctx context.Context, raw string) (Token, error) {
	if raw == "" {
		return Token{}, ErrMissingToken
	}
	var claims Claims
	_, err := v.parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.cfg.Secret, nil
	})
	if err != nil {
		return Token{}, newError(KindInvalidToken, err)
	}
	if claims.ID == "" || claims.UserID == nil || claims.ExpiresAt == nil {
		return Token{}, newError(KindInvalidToken, errors.New("token is missing jti or user_id"))
	}
	exp := claims.ExpiresAt.Time
	if !v.cfg.now().Before(exp) {
		return Token{}, newError(KindInvalidToken, jwt.ErrTokenExpired)
	}

	revoked, err := v.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return Token{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Token{}, ErrRevokedToken
	}
	return Token{ID: claims.ID, UserID: *claims.UserID, ExpiresAt: exp}, nil
}
