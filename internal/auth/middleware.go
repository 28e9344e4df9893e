package auth

import (
	"errors"
	"net/http"
	"strings"
)

// ErrForbidden is reported by RequireRole when the caller lacks a role.
var ErrForbidden = errors.New("forbidden")

// FailFunc writes the response for a rejected request.
type FailFunc func(w http.ResponseWriter, r *http.Request, err error)

// BearerToken returns the credentials of an "Authorization: Bearer" header,
// or "" when the header is absent or uses another scheme.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, cred, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(cred)
}

// Authenticate guards protected routes: validate the bearer token, then
// resolve the live user and store both in the request context.
func Authenticate(v *Validator, res *Resolver, fail FailFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, err := v.Validate(r.Context(), BearerToken(r))
			if err != nil {
				fail(w, r, err)
				return
			}
			u, err := res.Resolve(r.Context(), tok.UserID)
			if err != nil {
				fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), Principal{User: u, Token: tok})))
		})
	}
}

func RequireRole(fail FailFunc, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := FromContext(r.Context())
			if !p.HasRole(roles...) {
				fail(w, r, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
