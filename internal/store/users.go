package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/evmyshkin/mvpy/internal/models"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// FindByEmail matches case-insensitively and returns inactive users too;
// callers decide how to treat the active flag.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Preload("Role").
		Where("LOWER(email) = ?", NormalizeEmail(email)).
		First(&u).Error
	if err != nil {
		return nil, translate(err, "find user by email")
	}
	return &u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Preload("Role").First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find user by id")
	}
	return &u, nil
}

// EmailTaken reports whether any user other than exceptID owns email.
func (r *UserRepo) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(email) = ?", NormalizeEmail(email))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, translate(err, "count users by email")
	}
	return count > 0, nil
}

// Create inserts u; ErrConflict means the email is already registered.
func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	u.Email = NormalizeEmail(u.Email)
	if err := r.db.WithContext(ctx).Omit("Role").Create(u).Error; err != nil {
		return translate(err, "create user")
	}
	return nil
}

// Update writes the given columns of user id in a single statement.
func (r *UserRepo) Update(ctx context.Context, id uint, fields map[string]any) error {
	if email, ok := fields["email"].(string); ok {
		fields["email"] = NormalizeEmail(email)
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error, "update user")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate flips is_active only for currently active users, so a second
// call reports ErrNotFound.
func (r *UserRepo) Deactivate(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return translate(res.Error, "deactivate user")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Preload("Role").Order("id").Find(&users).Error; err != nil {
		return nil, translate(err, "list users")
	}
	return users, nil
}
