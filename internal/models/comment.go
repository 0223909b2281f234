package models

import (
	"time"
)

// Comment is a reader's comment on a post. Deletion is a soft flag so the
// row persists; soft-deleted comments are excluded from all reads.
type Comment struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Message   string     `gorm:"not null" json:"message"`
	PostID    uint       `gorm:"not null;index" json:"post_id"`
	Post      Post       `gorm:"foreignKey:PostID" json:"post,omitempty"`
	CreatedBy uint       `gorm:"not null;index" json:"created_by"`
	User      User       `gorm:"foreignKey:CreatedBy" json:"user,omitempty"`
	LikeCount int        `gorm:"not null;default:0" json:"like_count"`
	IsDeleted bool       `gorm:"not null;default:false;index" json:"-"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
