package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/evmyshkin/mvpy/internal/audit"
	"github.com/evmyshkin/mvpy/internal/auth"
	"github.com/evmyshkin/mvpy/internal/metrics"
	"github.com/evmyshkin/mvpy/internal/models"
)

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func Login(svc *auth.Service, rec *audit.Recorder, m *metrics.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	fail := AuthFailure(m, lg)
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Email == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "email and password required")
			return
		}
		res, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if kind, ok := auth.KindOf(err); ok {
				m.ObserveLogin(metrics.ResultFailure)
				rec.Record(r.Context(), nil, audit.LoginFailure, map[string]any{
					"reason":    string(kind),
					"client_ip": r.RemoteAddr,
				})
			} else {
				m.ObserveLogin(metrics.ResultError)
			}
			fail(w, r, err)
			return
		}
		m.ObserveLogin(metrics.ResultSuccess)
		rec.Record(r.Context(), &res.User.ID, audit.LoginSuccess, map[string]any{
			"jti":       jtiPrefix(res.TokenID),
			"client_ip": r.RemoteAddr,
		})
		respondJSON(w, http.StatusOK, loginResp{
			AccessToken: res.AccessToken,
			TokenType:   res.TokenType,
			ExpiresIn:   res.ExpiresIn,
		})
	}
}

// Logout is mounted outside Authenticate; the service validates the
// bearer token itself before revoking it.
func Logout(svc *auth.Service, rec *audit.Recorder, m *metrics.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	fail := AuthFailure(m, lg)
	return func(w http.ResponseWriter, r *http.Request) {
		tok, err := svc.Logout(r.Context(), auth.BearerToken(r))
		if err != nil {
			if _, ok := auth.KindOf(err); ok {
				m.ObserveLogout(metrics.ResultFailure)
			} else {
				m.ObserveLogout(metrics.ResultError)
			}
			fail(w, r, err)
			return
		}
		m.ObserveLogout(metrics.ResultSuccess)
		rec.Record(r.Context(), &tok.UserID, audit.Logout, map[string]any{"jti": jtiPrefix(tok.ID)})
		respondJSON(w, http.StatusOK, map[string]string{"message": auth.LogoutMessage})
	}
}

func Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.FromContext(r.Context())
		respondJSON(w, http.StatusOK, userView(p.User))
	}
}

type userResp struct {
	ID        uint        `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	IsActive  bool        `json:"is_active"`
	Role      models.Role `json:"role"`
}

func userView(u *models.User) userResp {
	return userResp{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsActive:  u.IsActive,
		Role:      u.Role,
	}
}

func jtiPrefix(jti string) string {
	if len(jti) > 8 {
		return jti[:8]
	}
	return jti
}
