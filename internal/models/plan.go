package models

import "time"

// Plan represents a subscription tier. Plans are reference data: they are
// never deleted while a client or payment points at them.
type Plan struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name             string  `gorm:"type:varchar(255);not null"`            // Plan name.
	Price            float64 `gorm:"type:decimal(10,2);not null;default:0"` // Monthly price.
	IncludedMessages int     `gorm:"not null;default:0"`                    // Message allotment per period.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
