// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinSecretBytes = 32
	MinTTLMinutes  = 1
	MaxTTLMinutes  = 43200
)

var supportedAlgorithms = map[string]bool{"HS256": true, "HS384": true, "HS512": true}

// Config is read once at startup and never mutated afterwards.
type Config struct {
	HTTPPort       string        `envconfig:"HTTP_PORT" default:"8080"`
	DatabaseURL    string        `envconfig:"DATABASE_URL" required:"true"`
	DBMaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"40"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`
	CORSOrigins    []string      `envconfig:"CORS_ALLOWED_ORIGINS"`

	JWTSecret     string `envconfig:"JWT_SECRET" required:"true"`
	JWTTTLMinutes int    `envconfig:"JWT_TTL_MINUTES" default:"60"`
	JWTAlgorithm  string `envconfig:"JWT_ALGORITHM" default:"HS256"`
	BcryptCost    int    `envconfig:"BCRYPT_COST" default:"10"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < MinSecretBytes {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretBytes))
	}
	if c.JWTTTLMinutes < MinTTLMinutes || c.JWTTTLMinutes > MaxTTLMinutes {
		errs = append(errs, fmt.Errorf("JWT_TTL_MINUTES must be within [%d, %d], got %d", MinTTLMinutes, MaxTTLMinutes, c.JWTTTLMinutes))
	}
	if !supportedAlgorithms[c.JWTAlgorithm] {
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not supported", c.JWTAlgorithm))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.DBMaxOpenConns < 1 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}

// TokenTTL is the access token lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}
