package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/evmyshkin/mvpy/internal/auth"
	"github.com/evmyshkin/mvpy/internal/metrics"
)

const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

type errorBody struct {
	Detail string `json:"detail"`
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorBody{Detail: msg})
}

// internalError hides err from the client and logs it with the request id.
func internalError(w http.ResponseWriter, r *http.Request, lg *zap.SugaredLogger, err error) {
	lg.Errorw("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		respondError(w, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// AuthFailure renders rejections from the authentication pipeline: auth
// kinds become 401 with a Bearer challenge, ErrForbidden becomes 403 and
// anything else is an internal error.
func AuthFailure(m *metrics.Recorder, lg *zap.SugaredLogger) auth.FailFunc {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		if kind, ok := auth.KindOf(err); ok {
			m.ObserveRejection(string(kind))
			lg.Debugw("request rejected", "path", r.URL.Path, "kind", kind)
			w.Header().Set("WWW-Authenticate", "Bearer")
			respondError(w, http.StatusUnauthorized, kind.Message())
			return
		}
		if errors.Is(err, auth.ErrForbidden) {
			m.ObserveRejection("forbidden")
			respondError(w, http.StatusForbidden, "insufficient permissions")
			return
		}
		internalError(w, r, lg, err)
	}
}
