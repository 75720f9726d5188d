package finance

import (
	"time"

	"github.com/waichatt/console/internal/models"
)

// Balance is the reconciled view over the income and expense ledgers.
type Balance struct {
	TotalIncome  float64 // Sum of paid invoices.
	TotalExpense float64 // Sum of all expenses, paid or pending.
	Balance      float64 // Income minus expense.
}

// ComputeBalance reconciles the two ledgers. The filtering is asymmetric on
// purpose: income counts only confirmed receipts (status "pagado"), while
// expense counts every recorded obligation regardless of status.
func ComputeBalance(payments []models.Payment, expenses []models.Expense) Balance {
	var result Balance
	for _, payment := range payments {
		if payment.Status == models.PaymentStatusPaid {
			result.TotalIncome += payment.Amount
		}
	}
	for _, expense := range expenses {
		result.TotalExpense += expense.Amount
	}
	result.Balance = result.TotalIncome - result.TotalExpense
	return result
}

// ExpenseFilter narrows an already-fetched expense list for the finance view.
// Nil/empty fields match everything.
type ExpenseFilter struct {
	ServiceID *uint64              // Match this service reference.
	Date      *time.Time           // Match this exact calendar day.
	Status    models.ExpenseStatus // Match this status.
}

// FilterExpenses applies the filter in memory. This is a view-side narrowing
// over rows the caller already holds, not a server aggregation.
func FilterExpenses(expenses []models.Expense, filter ExpenseFilter) []models.Expense {
	out := make([]models.Expense, 0, len(expenses))
	for _, expense := range expenses {
		if filter.ServiceID != nil {
			if expense.ServiceID == nil || *expense.ServiceID != *filter.ServiceID {
				continue
			}
		}
		if filter.Date != nil && !sameDay(expense.Date, *filter.Date) {
			continue
		}
		if filter.Status != "" && expense.Status != filter.Status {
			continue
		}
		out = append(out, expense)
	}
	return out
}

// sameDay reports whether both timestamps fall on the same UTC calendar day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
