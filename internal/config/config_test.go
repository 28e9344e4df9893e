package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/mvpy")
	t.Setenv("JWT_SECRET", testSecret)
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.HTTPPort)
	assert.Equal(t, 60, c.JWTTTLMinutes)
	assert.Equal(t, "HS256", c.JWTAlgorithm)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, 40, c.DBMaxOpenConns)
	assert.Equal(t, 5*time.Second, c.RequestTimeout)
	assert.Equal(t, time.Hour, c.TokenTTL())
	assert.Empty(t, c.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_TTL_MINUTES", "43200")
	t.Setenv("JWT_ALGORITHM", "HS512")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, c.TokenTTL())
	assert.Equal(t, "HS512", c.JWTAlgorithm)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		DBMaxOpenConns: 1,
		RequestTimeout: time.Second,
		JWTSecret:      testSecret,
		JWTTTLMinutes:  1,
		JWTAlgorithm:   "HS256",
		BcryptCost:     10,
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"short secret", func(c *Config) { c.JWTSecret = strings.Repeat("x", 31) }, "JWT_SECRET"},
		{"ttl zero", func(c *Config) { c.JWTTTLMinutes = 0 }, "JWT_TTL_MINUTES"},
		{"ttl too long", func(c *Config) { c.JWTTTLMinutes = 43201 }, "JWT_TTL_MINUTES"},
		{"asymmetric algorithm", func(c *Config) { c.JWTAlgorithm = "RS256" }, "JWT_ALGORITHM"},
		{"none algorithm", func(c *Config) { c.JWTAlgorithm = "none" }, "JWT_ALGORITHM"},
		{"bcrypt cost", func(c *Config) { c.BcryptCost = 2 }, "BCRYPT_COST"},
		{"pool size", func(c *Config) { c.DBMaxOpenConns = 0 }, "DB_MAX_OPEN_CONNS"},
		{"timeout", func(c *Config) { c.RequestTimeout = 0 }, "REQUEST_TIMEOUT"},
		{"admin half set", func(c *Config) { c.AdminEmail = "root@x.com" }, "ADMIN_EMAIL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
