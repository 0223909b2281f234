package models

import (
	"time"

	"gorm.io/gorm"
)

// Post status values. Every post starts PENDING; review moves it to
// APPROVED or REJECTED. PUBLISHED is reserved for a future publish step
// and is never set by the review workflow.
const (
	PostStatusPending   = "PENDING"
	PostStatusApproved  = "APPROVED"
	PostStatusRejected  = "REJECTED"
	PostStatusPublished = "PUBLISHED"
)

// Post is an authored article awaiting or past editorial review.
type Post struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Title         string         `gorm:"not null" json:"title"`
	Description   string         `json:"description"`
	BannerImage   string         `json:"banner_image"`
	BannerImageID string         `json:"-"`
	Slug          string         `gorm:"unique;not null" json:"slug"`
	Status        string         `gorm:"not null;default:PENDING;index" json:"status"`
	PostedAt      time.Time      `json:"posted_at"`
	CategoryID    *uint          `gorm:"index" json:"category_id,omitempty"`
	Category      *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedBy     uint           `gorm:"not null;index" json:"created_by"`
	User          User           `gorm:"foreignKey:CreatedBy" json:"user,omitempty"`
	Comments      []Comment      `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	Reviews       []PostReview   `gorm:"foreignKey:PostID" json:"reviews,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
