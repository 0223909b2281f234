package models

import (
	"time"
)

// Review decision values. These mirror the decision taken, not the post's
// live status.
const (
	ReviewStatusApproved = "APPROVED"
	ReviewStatusRejected = "REJECTED"
)

// PostReview records a reviewer's latest decision on a post. The
// (reviewer, post_id) pair is unique: a re-decision overwrites the existing
// row rather than appending history.
type PostReview struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	Status    string    `gorm:"not null" json:"status"`
	Reviewer  uint      `gorm:"not null;uniqueIndex:idx_reviewer_post" json:"reviewer"`
	User      User      `gorm:"foreignKey:Reviewer" json:"user,omitempty"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_reviewer_post" json:"post_id"`
	Post      Post      `gorm:"foreignKey:PostID" json:"post,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
