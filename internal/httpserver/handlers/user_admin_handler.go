package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/evmyshkin/mvpy/internal/audit"
	"github.com/evmyshkin/mvpy/internal/auth"
	"github.com/evmyshkin/mvpy/internal/models"
	"github.com/evmyshkin/mvpy/internal/services/users"
)

func writeUserError(w http.ResponseWriter, r *http.Request, lg *zap.SugaredLogger, err error) {
	var verr *users.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusUnprocessableEntity, verr.Error())
	case errors.Is(err, users.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, users.ErrEmailExists):
		respondError(w, http.StatusConflict, err.Error())
	default:
		internalError(w, r, lg, err)
	}
}

// selfOrAdmin lets users act on their own record and admins on any.
func selfOrAdmin(w http.ResponseWriter, r *http.Request, id uint) bool {
	p, _ := auth.FromContext(r.Context())
	if p.User != nil && (p.User.ID == id || p.HasRole(models.RoleAdmin)) {
		return true
	}
	respondError(w, http.StatusForbidden, "insufficient permissions")
	return false
}

// CreateUser is the public registration endpoint.
func CreateUser(svc *users.Service, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.CreateInput
		if !decodeJSON(w, r, &req) {
			return
		}
		u, err := svc.Create(r.Context(), req)
		if err != nil {
			writeUserError(w, r, lg, err)
			return
		}
		rec.Record(r.Context(), &u.ID, audit.UserCreated, nil)
		respondJSON(w, http.StatusCreated, userView(u))
	}
}

// ListUsers returns every user, or the single match of ?email=.
func ListUsers(svc *users.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if email := r.URL.Query().Get("email"); email != "" {
			u, err := svc.FindByEmail(r.Context(), email)
			if err != nil {
				writeUserError(w, r, lg, err)
				return
			}
			respondJSON(w, http.StatusOK, userView(u))
			return
		}
		list, err := svc.List(r.Context())
		if err != nil {
			internalError(w, r, lg, err)
			return
		}
		out := make([]userResp, 0, len(list))
		for i := range list {
			out = append(out, userView(&list[i]))
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func GetUser(svc *users.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "id")
		if !ok || !selfOrAdmin(w, r, id) {
			return
		}
		u, err := svc.Get(r.Context(), id)
		if err != nil {
			writeUserError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, userView(u))
	}
}

func UpdateUser(svc *users.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "id")
		if !ok || !selfOrAdmin(w, r, id) {
			return
		}
		var req users.UpdateInput
		if !decodeJSON(w, r, &req) {
			return
		}
		u, err := svc.Update(r.Context(), id, req)
		if err != nil {
			writeUserError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, userView(u))
	}
}

// DeleteUser deactivates; users are never hard-deleted.
func DeleteUser(svc *users.Service, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "id")
		if !ok || !selfOrAdmin(w, r, id) {
			return
		}
		if err := svc.Deactivate(r.Context(), id); err != nil {
			writeUserError(w, r, lg, err)
			return
		}
		actor := auth.UserID(r.Context())
		rec.Record(r.Context(), &id, audit.UserDeactivated, map[string]any{"by": actor})
		w.WriteHeader(http.StatusNoContent)
	}
}
