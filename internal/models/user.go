// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values assignable to a user.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an account in the Inkwell application.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Username       string         `gorm:"unique;not null" json:"username"`
	Email          string         `gorm:"unique;not null" json:"email"`
	Password       string         `gorm:"not null" json:"-"`
	FullName       string         `json:"full_name"`
	Role           string         `gorm:"not null;default:USER" json:"role"`
	ProfileImage   string         `json:"profile_image"`
	ProfileImageID string         `json:"-"`
	RefreshToken   string         `json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Posts          []Post         `gorm:"foreignKey:CreatedBy" json:"posts,omitempty"`
	Categories     []Category     `gorm:"foreignKey:CreatedBy" json:"categories,omitempty"`
	Comments       []Comment      `gorm:"foreignKey:CreatedBy" json:"comments,omitempty"`
	ApiKeys        []ApiKey       `gorm:"foreignKey:CreatedBy" json:"api_keys,omitempty"`
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
