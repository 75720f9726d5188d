package models

import "time"

// PaymentStatus represents the lifecycle state of an invoice. Status is set
// by admin action, never computed.
type PaymentStatus string

// PaymentStatus constants define invoice states.
const (
	// PaymentStatusPaid marks a confirmed receipt; only paid rows count as income.
	PaymentStatusPaid PaymentStatus = "pagado"
	// PaymentStatusPending marks an invoice awaiting payment.
	PaymentStatusPending PaymentStatus = "pendiente"
	// PaymentStatusFailed marks a failed payment attempt.
	PaymentStatusFailed PaymentStatus = "fallido"
)

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool {
	return s == PaymentStatusPaid || s == PaymentStatusPending || s == PaymentStatusFailed
}

// Payment records an invoice issued to a client for a plan period.
type Payment struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ClientID uint64 `gorm:"not null;index"`      // Invoiced client ID.
	Client   Client `gorm:"foreignKey:ClientID"` // Invoiced client record.

	PlanID uint64 `gorm:"not null;index"`    // Invoiced plan ID.
	Plan   Plan   `gorm:"foreignKey:PlanID"` // Invoiced plan record.

	Amount float64       `gorm:"type:decimal(12,2);not null;default:0"`       // Invoice amount.
	Status PaymentStatus `gorm:"type:varchar(32);not null;default:'pendiente'"` // Invoice status.

	Date time.Time `gorm:"not null;index"` // Invoice date.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
