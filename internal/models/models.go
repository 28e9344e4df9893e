package models

import "time"

// Role names seeded by migrations.
const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

type Role struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description *string   `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// User emails are stored lower-cased so the unique index also enforces
// case-insensitive uniqueness.
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FirstName    string    `gorm:"size:100;not null" json:"first_name"`
	LastName     string    `gorm:"size:100;not null" json:"last_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	RoleID       uint      `gorm:"not null;index" json:"role_id"`
	Role         Role      `gorm:"foreignKey:RoleID" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RevokedToken is a blacklist row written on logout. TokenJTI is unique.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TokenJTI  string    `gorm:"column:token_jti;uniqueIndex;size:255;not null" json:"token_jti"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	RevokedAt time.Time `gorm:"not null" json:"revoked_at"`
	ExpiresAt time.Time `gorm:"not null;index:idx_blacklisted_tokens_expires_at" json:"expires_at"`
}

func (RevokedToken) TableName() string { return "blacklisted_tokens" }

type AuditLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	Action    string    `gorm:"size:64;not null" json:"action"`
	Metadata  JSONB     `gorm:"type:jsonb" json:"metadata"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
