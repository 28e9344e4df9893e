package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/evmyshkin/mvpy/internal/services/roles"
)

func ListRoles(svc *roles.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			internalError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

func GetRole(svc *roles.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		role, err := svc.Get(r.Context(), id)
		var nf *roles.NotFoundError
		switch {
		case errors.As(err, &nf):
			respondError(w, http.StatusNotFound, nf.Error())
		case err != nil:
			internalError(w, r, lg, err)
		default:
			respondJSON(w, http.StatusOK, role)
		}
	}
}
