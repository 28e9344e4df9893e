package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/evmyshkin/mvpy/internal/models"
)

// RevocationRepo persists the token blacklist. The unique index on
// token_jti is the only guard against concurrent double revocation.
type RevocationRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRevocationRepo(db *gorm.DB) *RevocationRepo {
	return &RevocationRepo{db: db, now: time.Now}
}

func (r *RevocationRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("token_jti = ?", jti).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "check revoked token")
	}
	return count > 0, nil
}

// Revoke inserts a blacklist row. ErrConflict means jti was already revoked.
func (r *RevocationRepo) Revoke(ctx context.Context, jti string, userID uint, expiresAt time.Time) error {
	row := models.RevokedToken{
		TokenJTI:  jti,
		UserID:    userID,
		RevokedAt: r.now().UTC(),
		ExpiresAt: expiresAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(err, "revoke token")
	}
	return nil
}

func (r *RevocationRepo) Find(ctx context.Context, jti string) (*models.RevokedToken, error) {
	var row models.RevokedToken
	if err := r.db.WithContext(ctx).First(&row, "token_jti = ?", jti).Error; err != nil {
		return nil, translate(err, "find revoked token")
	}
	return &row, nil
}
