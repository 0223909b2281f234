package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups posts; categories form a tree through ParentID.
// The name is unique per creator, not globally.
type Category struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CategoryName string         `gorm:"not null;uniqueIndex:idx_category_name_creator" json:"category_name"`
	ParentID     *uint          `gorm:"index" json:"parent_id,omitempty"`
	CreatedBy    uint           `gorm:"not null;uniqueIndex:idx_category_name_creator" json:"created_by"`
	User         User           `gorm:"foreignKey:CreatedBy" json:"user,omitempty"`
	Posts        []Post         `gorm:"foreignKey:CategoryID" json:"posts,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
