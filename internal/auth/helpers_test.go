package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/evmyshkin/mvpy/internal/models"
	"github.com/evmyshkin/mvpy/internal/store"
)

const testSecret = "test-secret-test-secret-test-secret!"

var baseTime = time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type memUsers struct {
	mu    sync.Mutex
	users map[uint]*models.User
	err   error
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{users: map[uint]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			c := *u
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *memUsers) deactivate(id uint) {
	m.mu.Lock()
	m.users[id].IsActive = false
	m.mu.Unlock()
}

type revokedRow struct {
	userID    uint
	expiresAt time.Time
}

type memRevocations struct {
	mu    sync.Mutex
	rows  map[string]revokedRow
	err   error
	reads int
}

func newMemRevocations() *memRevocations {
	return &memRevocations{rows: map[string]revokedRow{}}
}

func (m *memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.rows[jti]
	return ok, nil
}

func (m *memRevocations) Revoke(_ context.Context, jti string, userID uint, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[jti]; ok {
		return store.ErrConflict
	}
	m.rows[jti] = revokedRow{userID: userID, expiresAt: expiresAt}
	return nil
}

type fixture struct {
	clock       *fakeClock
	cfg         TokenConfig
	users       *memUsers
	revocations *memRevocations
	issuer      *Issuer
	validator   *Validator
	resolver    *Resolver
	svc         *Service
}

func newFixture(t *testing.T, users ...*models.User) *fixture {
	t.Helper()
	f := &fixture{
		clock:       &fakeClock{t: baseTime},
		users:       newMemUsers(users...),
		revocations: newMemRevocations(),
	}
	f.cfg = TokenConfig{Secret: []byte(testSecret), Algorithm: "HS256", TTL: time.Hour, Now: f.clock.Now}
	var err error
	if f.issuer, err = NewIssuer(f.cfg); err != nil {
		t.Fatal(err)
	}
	if f.validator, err = NewValidator(f.cfg, f.revocations); err != nil {
		t.Fatal(err)
	}
	f.resolver = NewResolver(f.users)
	f.svc = NewService(f.users, f.revocations, f.issuer, f.validator, bcrypt.MinCost)
	return f
}

func newUser(t *testing.T, id uint, email, password string, active bool) *models.User {
	t.Helper()
	h, err := HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: h,
		IsActive:     active,
		RoleID:       1,
		Role:         models.Role{ID: 1, Name: models.RoleUser},
	}
}
