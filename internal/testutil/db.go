// Package testutil provides migrated throwaway databases for tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/evmyshkin/mvpy/internal/migrations"
	"github.com/evmyshkin/mvpy/internal/models"
)

// NewDB opens a file-backed sqlite database under t.TempDir and applies
// the real migrations. A single connection serialises writers the same
// way row locks would on postgres.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrations.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given bcrypt hash and the default role.
func CreateUser(t testing.TB, db *gorm.DB, email, passwordHash string, active bool) *models.User {
	t.Helper()
	var role models.Role
	if err := db.First(&role, "name = ?", models.RoleUser).Error; err != nil {
		t.Fatalf("default role: %v", err)
	}
	now := time.Now()
	u := &models.User{
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: passwordHash,
		IsActive:     true,
		RoleID:       role.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Omit("Role").Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if !active {
		if err := db.Model(u).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate user: %v", err)
		}
		u.IsActive = false
	}
	return u
}
