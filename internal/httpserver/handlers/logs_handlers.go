package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/evmyshkin/mvpy/internal/audit"
	"github.com/evmyshkin/mvpy/internal/auth"
	"github.com/evmyshkin/mvpy/internal/models"
)

// MyLogs returns recent audit events. Regular users see their own events.
// Administrators can pass ?all=1 to see recent events for everyone.
func MyLogs(rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.FromContext(r.Context())
		var scope *uint
		if !(r.URL.Query().Get("all") == "1" && p.HasRole(models.RoleAdmin)) {
			uid := p.User.ID
			scope = &uid
		}
		logs, err := rec.List(r.Context(), scope)
		if err != nil {
			internalError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, logs)
	}
}
