package models

import "time"

// ExpenseStatus represents the payment state of an expense.
type ExpenseStatus string

// ExpenseStatus constants define expense states.
const (
	// ExpenseStatusPending marks an expense not yet paid.
	ExpenseStatusPending ExpenseStatus = "pendiente"
	// ExpenseStatusPaid marks an expense already paid.
	ExpenseStatusPaid ExpenseStatus = "pagado"
)

// ValidExpenseStatus reports whether s is a known expense status.
func ValidExpenseStatus(s ExpenseStatus) bool {
	return s == ExpenseStatusPending || s == ExpenseStatusPaid
}

// Currency codes accepted on expense entry.
const (
	// CurrencyARS is the local ledger currency.
	CurrencyARS = "ARS"
	// CurrencyUSD entries are converted to ARS at write time.
	CurrencyUSD = "USD"
)

// Expense records an operating cost. Amount is always stored in ARS: for
// USD-denominated entries the conversion happens once, at create/update,
// and is never recomputed on later reads.
type Expense struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Date        time.Time `gorm:"not null;index"` // Expense date.
	Description string    `gorm:"type:text"`      // Free-form description.

	Amount float64       `gorm:"type:decimal(12,2);not null;default:0"`         // Amount in ARS.
	Status ExpenseStatus `gorm:"type:varchar(32);not null;default:'pendiente'"` // Payment state.

	// ServiceID survives service deletion; a dangling reference renders as
	// "service not found" on display.
	ServiceID *uint64  `gorm:"index"`                // Related service ID, if any.
	Service   *Service `gorm:"foreignKey:ServiceID"` // Related service record.

	Currency string `gorm:"type:varchar(8);not null;default:'ARS'"` // Original entry currency.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
