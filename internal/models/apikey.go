package models

import (
	"time"
)

// ApiKey status values.
const (
	ApiKeyStatusActive   = "ACTIVE"
	ApiKeyStatusInactive = "INACTIVE"
)

// ApiKey is a long-lived opaque bearer credential owned by a user.
// At most one unexpired ACTIVE key may exist per user at a time.
type ApiKey struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Key       string     `gorm:"unique;not null" json:"key"`
	CreatedBy uint       `gorm:"not null;index" json:"created_by"`
	User      User       `gorm:"foreignKey:CreatedBy" json:"user,omitempty"`
	Status    string     `gorm:"not null;default:ACTIVE" json:"status"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Expired reports whether the key has an expiry in the past.
func (k *ApiKey) Expired(now time.Time) bool {
	return k.EndedAt != nil && k.EndedAt.Before(now)
}
