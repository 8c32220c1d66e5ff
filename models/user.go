package models

import (
	"time"
)

// User represents a staff account (admins who process applications).
type User struct {
	UserID         int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	FullName       string     `gorm:"column:full_name" json:"full_name"`
	Email          string     `gorm:"column:email;unique" json:"email"`
	HashedPassword string     `gorm:"column:hashed_password" json:"-"`
	RoleID         int        `gorm:"column:role_id" json:"role_id"`
	CreatedAt      *time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      *time.Time `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt      *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	// Relations
	Role Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

type Role struct {
	RoleID    int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role      string     `gorm:"column:role" json:"role"`
	CreatedAt *time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

// Role IDs used by middleware.RequireRole.
const (
	RoleStudent = 1
	RoleAdmin   = 3
)

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}
