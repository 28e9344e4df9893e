// Package audit persists security events and mirrors them to the log.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/evmyshkin/mvpy/internal/models"
)

// Action names a recorded security event.
type Action string

const (
	LoginSuccess    Action = "LOGIN_SUCCESS"
	LoginFailure    Action = "LOGIN_FAILURE"
	Logout          Action = "LOGOUT"
	UserCreated     Action = "USER_CREATED"
	UserDeactivated Action = "USER_DEACTIVATED"
)

// ListLimit caps the number of events returned by List.
const ListLimit = 200

type Recorder struct {
	db  *gorm.DB
	lg  *zap.SugaredLogger
	now func() time.Time
}

func NewRecorder(db *gorm.DB, lg *zap.SugaredLogger) *Recorder {
	return &Recorder{db: db, lg: lg.With("component", "security_audit"), now: time.Now}
}

// Record stores one event. Persistence failures are logged, not returned.
func (r *Recorder) Record(ctx context.Context, userID *uint, action Action, metadata map[string]any) {
	var meta models.JSONB
	if len(metadata) > 0 {
		var err error
		if meta, err = models.NewJSONB(metadata); err != nil {
			r.lg.Warnw("audit metadata dropped", "action", action, "error", err)
		}
	}
	row := models.AuditLog{
		UserID:    userID,
		Action:    string(action),
		Metadata:  meta,
		CreatedAt: r.now().UTC(),
	}

	kv := []any{"event", action}
	if userID != nil {
		kv = append(kv, "user_id", *userID)
	}
	for k, v := range metadata {
		kv = append(kv, k, v)
	}
	if action == LoginFailure {
		r.lg.Warnw("security event", kv...)
	} else {
		r.lg.Infow("security event", kv...)
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		r.lg.Errorw("audit write failed", "action", action, "error", err)
	}
}

// List returns the newest events first. A nil userID lists everyone.
func (r *Recorder) List(ctx context.Context, userID *uint) ([]models.AuditLog, error) {
	logs := make([]models.AuditLog, 0)
	q := r.db.WithContext(ctx).Order("created_at desc").Order("id desc").Limit(ListLimit)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
