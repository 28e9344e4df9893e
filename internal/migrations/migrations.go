// Package migrations owns the versioned schema and seed data.
package migrations

import (
	"sort"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/evmyshkin/mvpy/internal/models"
)

// Migrate applies every pending migration in ID order.
func Migrate(db *gorm.DB) error {
	return gormigrate.New(db, gormigrate.DefaultOptions, all()).Migrate()
}

func all() []*gormigrate.Migration {
	ms := []*gormigrate.Migration{
		initialSchema(),
		seedRoles(),
	}
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].ID < ms[j].ID })
	return ms
}

func initialSchema() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "202602050001_initial_schema",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&models.Role{}, &models.User{}, &models.RevokedToken{}, &models.AuditLog{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&models.AuditLog{}, &models.RevokedToken{}, &models.User{}, &models.Role{})
		},
	}
}

// DefaultRoles are the rows every installation starts with, in id order.
// Ids come from the database so the postgres sequence stays in step.
func DefaultRoles() []models.Role {
	desc := func(s string) *string { return &s }
	return []models.Role{
		{Name: models.RoleUser, Description: desc("Regular user")},
		{Name: models.RoleManager, Description: desc("Manager with extended permissions")},
		{Name: models.RoleAdmin, Description: desc("System administrator")},
	}
}

func seedRoles() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "202602070001_seed_roles",
		Migrate: func(tx *gorm.DB) error {
			roles := DefaultRoles()
			return tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&roles).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Where("name IN ?", []string{models.RoleUser, models.RoleManager, models.RoleAdmin}).
				Delete(&models.Role{}).Error
		},
	}
}
