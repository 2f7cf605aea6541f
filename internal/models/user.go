package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	// DefaultAddress is stored when no address was provided
	DefaultAddress = "-"
	// DefaultImage is the shared placeholder object; it is never deleted
	// from storage
	DefaultImage = "default.png"
)

// User represents a registered user
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  *string   `gorm:"size:255" json:"-"`
	Address   string    `gorm:"size:255;not null" json:"address"`
	Role      string    `gorm:"size:20;not null" json:"role"`
	Image     string    `gorm:"size:255" json:"image"`
	Token     string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns an ID and fills sentinel defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Address == "" {
		u.Address = DefaultAddress
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Image == "" {
		u.Image = DefaultImage
	}
	return nil
}

// HasPassword reports whether the account can log in with a password.
// OAuth-only accounts have none.
func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}
