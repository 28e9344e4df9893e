package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/evmyshkin/mvpy/internal/models"
)

type RoleRepo struct{ db *gorm.DB }

func NewRoleRepo(db *gorm.DB) *RoleRepo { return &RoleRepo{db: db} }

func (r *RoleRepo) List(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		return nil, translate(err, "list roles")
	}
	return roles, nil
}

func (r *RoleRepo) FindByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find role by id")
	}
	return &role, nil
}

func (r *RoleRepo) FindByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).First(&role, "name = ?", name).Error; err != nil {
		return nil, translate(err, "find role by name")
	}
	return &role, nil
}
