package models

import "time"

// ServiceType classifies a recurring cost as fixed or variable.
type ServiceType string

// ServiceType constants define the cost classification.
const (
	// ServiceTypeFixed costs the same amount every period.
	ServiceTypeFixed ServiceType = "fijo"
	// ServiceTypeVariable costs a different amount each period.
	ServiceTypeVariable ServiceType = "variable"
)

// ValidServiceType reports whether t is a known service type.
func ValidServiceType(t ServiceType) bool {
	return t == ServiceTypeFixed || t == ServiceTypeVariable
}

// Service represents a provider that expenses can reference. Deleting a
// service does not cascade to its expenses.
type Service struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name          string      `gorm:"type:varchar(255);not null"`            // Provider name.
	Type          ServiceType `gorm:"type:varchar(32);not null"`             // Cost classification.
	DefaultAmount float64     `gorm:"type:decimal(12,2);not null;default:0"` // Default charge amount.

	Active      bool   `gorm:"not null;default:true"` // Whether the service is in use.
	Description string `gorm:"type:text"`             // Free-form description.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
