package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmyshkin/mvpy/internal/models"
)

type recordedFailure struct {
	err error
}

func (r *recordedFailure) fail(w http.ResponseWriter, _ *http.Request, err error) {
	r.err = err
	w.WriteHeader(http.StatusUnauthorized)
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"Bearer":           "",
		"Basic dXNlcjpwdw": "",
		"Bearer abc":       "abc",
		"bearer abc":       "abc",
		"BEARER   abc  ":   "abc",
	}
	for header, want := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, BearerToken(r), "header %q", header)
	}
}

func TestAuthenticate(t *testing.T) {
	u := newUser(t, 3, "a@x.com", "Passw0rd1", true)
	f := newFixture(t, u)
	issued, err := f.issuer.Issue(u)
	require.NoError(t, err)

	var rec recordedFailure
	var seen Principal
	h := Authenticate(f.validator, f.resolver, rec.fail)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	call := func(header string) int {
		rec.err = nil
		r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.ErrorIs(t, rec.err, ErrMissingToken)

	assert.Equal(t, http.StatusUnauthorized, call("Bearer junk"))
	assert.ErrorIs(t, rec.err, ErrInvalidToken)

	assert.Equal(t, http.StatusOK, call("Bearer "+issued.Raw))
	require.NotNil(t, seen.User)
	assert.Equal(t, uint(3), seen.User.ID)
	assert.Equal(t, issued.ID, seen.Token.ID)

	f.users.deactivate(3)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+issued.Raw))
	assert.ErrorIs(t, rec.err, ErrInactiveUser)

	require.NoError(t, f.revocations.Revoke(context.Background(), issued.ID, 3, issued.ExpiresAt))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+issued.Raw))
	assert.ErrorIs(t, rec.err, ErrRevokedToken)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	ghost := newUser(t, 99, "ghost@x.com", "Passw0rd1", true)
	f := newFixture(t)
	issued, err := f.issuer.Issue(ghost)
	require.NoError(t, err)

	var rec recordedFailure
	h := Authenticate(f.validator, f.resolver, rec.fail)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+issued.Raw)
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.ErrorIs(t, rec.err, ErrUserNotFound)
}

func TestRequireRole(t *testing.T) {
	var rec recordedFailure
	h := RequireRole(rec.fail, models.RoleAdmin, models.RoleManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(role string) int {
		rec.err = nil
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		p := Principal{User: &models.User{ID: 1, Role: models.Role{Name: role}}}
		r = r.WithContext(WithPrincipal(r.Context(), p))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, serve(models.RoleAdmin))
	assert.Equal(t, http.StatusNoContent, serve(models.RoleManager))
	assert.Equal(t, http.StatusUnauthorized, serve(models.RoleUser))
	assert.ErrorIs(t, rec.err, ErrForbidden)
}

func TestErrorKinds(t *testing.T) {
	wrapped := newError(KindInvalidToken, assert.AnError)
	k, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindInvalidToken, k)
	assert.ErrorIs(t, wrapped, ErrInvalidToken)
	assert.ErrorIs(t, wrapped, assert.AnError)
	assert.NotErrorIs(t, wrapped, ErrRevokedToken)
	assert.Equal(t, "invalid authorization token", wrapped.Error())
}
