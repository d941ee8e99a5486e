package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles recognized by the access gates
const (
	RoleAdmin    = "Admin"
	RoleLowAdmin = "Low Admin"
)

// User is an operator account
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FullName     string `json:"full_name"`
	Role         string `gorm:"default:Low Admin" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the users table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsAdmin reports whether the user holds the Admin role claim
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UpdateProfileRequest represents a request to update account settings
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=2"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

// UserResponse represents a user in responses
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}
