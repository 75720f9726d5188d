package models

import "time"

// Client represents a tenant account of the messaging platform.
type Client struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name  string `gorm:"type:text;not null"`             // Display name.
	Phone string `gorm:"type:text;not null"`             // Contact phone.
	Email string `gorm:"type:text;not null;uniqueIndex"` // Contact email.

	// MessagesRemaining may go negative: over-usage is allowed and
	// surfaced on the dashboard, never blocked.
	MessagesRemaining int `gorm:"not null;default:0"` // Remaining message quota.

	PlanID uint64 `gorm:"not null;index"`    // Subscribed plan ID.
	Plan   Plan   `gorm:"foreignKey:PlanID"` // Subscribed plan record.

	Active bool `gorm:"not null;default:true"` // Whether the account is active.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
