package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/waichatt/console/internal/exchange"
	"github.com/waichatt/console/internal/finance"
	"github.com/waichatt/console/internal/models"
	"gorm.io/gorm"
)

// FinanceHandler serves the reconciled balance and the finance overview.
// Unlike the dashboard metrics path, these endpoints fail loudly: a ledger
// that cannot be read returns an error, never fabricated numbers.
type FinanceHandler struct {
	db *gorm.DB         // Database handle for ledger records.
	fx *exchange.Client // Quote client for the USD-denominated balance.
}

// NewFinanceHandler constructs a finance handler.
func NewFinanceHandler(db *gorm.DB, fx *exchange.Client) *FinanceHandler {
	return &FinanceHandler{db: db, fx: fx}
}

// Balance fetches both ledgers concurrently and returns the reconciled
// totals. The USD view is best effort: when the quote endpoint is down the
// field is omitted and the ARS figures stand alone.
func (h *FinanceHandler) Balance(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		wg       sync.WaitGroup
		payments []models.Payment
		expenses []models.Expense
		errPay   error
		errExp   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		errPay = h.db.WithContext(ctx).Find(&payments).Error
	}()
	go func() {
		defer wg.Done()
		errExp = h.db.WithContext(ctx).Find(&expenses).Error
	}()
	wg.Wait()

	if errPay != nil || errExp != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query ledgers failed"})
		return
	}

	balance := finance.ComputeBalance(payments, expenses)
	payload := gin.H{
		"totalIngresos": balance.TotalIncome,
		"totalEgresos":  balance.TotalExpense,
		"balance":       balance.Balance,
	}

	if rate, errRate := h.fx.SellRate(ctx); errRate == nil {
		payload["balanceUsd"] = balance.Balance / rate
	} else {
		log.WithError(errRate).Warn("finance: quote unavailable, omitting usd balance")
	}
	c.JSON(http.StatusOK, payload)
}

// Overview fetches both ledgers and the service catalog concurrently,
// applies the query filters in memory, and returns the joined finance view.
func (h *FinanceHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()

	filter, errFilter := parseExpenseFilter(c)
	if errFilter != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errFilter})
		return
	}

	var (
		wg       sync.WaitGroup
		expenses []models.Expense
		services []models.Service
		payments []models.Payment
		errExp   error
		errSvc   error
		errPay   error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		errExp = h.db.WithContext(ctx).Order("date DESC").Find(&expenses).Error
	}()
	go func() {
		defer wg.Done()
		errSvc = h.db.WithContext(ctx).Order("name ASC").Find(&services).Error
	}()
	go func() {
		defer wg.Done()
		errPay = h.db.WithContext(ctx).Find(&payments).Error
	}()
	wg.Wait()

	if errExp != nil || errSvc != nil || errPay != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query finances failed"})
		return
	}

	// Totals reconcile the full ledgers; the filter narrows only the listed rows.
	balance := finance.ComputeBalance(payments, expenses)
	filtered := finance.FilterExpenses(expenses, filter)

	serviceByID := make(map[uint64]*models.Service, len(services))
	for i := range services {
		serviceByID[services[i].ID] = &services[i]
	}

	expenseRows := make([]gin.H, 0, len(filtered))
	for _, expense := range filtered {
		serviceName := ""
		if expense.ServiceID != nil {
			serviceName = "service not found"
			if service, ok := serviceByID[*expense.ServiceID]; ok {
				serviceName = service.Name
			}
		}
		expenseRows = append(expenseRows, gin.H{
			"id":           expense.ID,
			"date":         expense.Date,
			"description":  expense.Description,
			"amount":       expense.Amount,
			"status":       expense.Status,
			"service_id":   expense.ServiceID,
			"service_name": serviceName,
			"currency":     expense.Currency,
		})
	}

	serviceRows := make([]gin.H, 0, len(services))
	for _, service := range services {
		serviceRows = append(serviceRows, gin.H{
			"id":             service.ID,
			"name":           service.Name,
			"type":           service.Type,
			"default_amount": service.DefaultAmount,
			"active":         service.Active,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"expenses":      expenseRows,
		"services":      serviceRows,
		"totalIngresos": balance.TotalIncome,
		"totalEgresos":  balance.TotalExpense,
		"balance":       balance.Balance,
	})
}

// parseExpenseFilter builds the in-memory expense filter from query
// parameters. The returned string is a user-facing validation error.
func parseExpenseFilter(c *gin.Context) (finance.ExpenseFilter, string) {
	var filter finance.ExpenseFilter

	if serviceIDQ := strings.TrimSpace(c.Query("service_id")); serviceIDQ != "" {
		id, errParse := strconv.ParseUint(serviceIDQ, 10, 64)
		if errParse != nil {
			return filter, "invalid service_id"
		}
		filter.ServiceID = &id
	}
	if dateQ := strings.TrimSpace(c.Query("date")); dateQ != "" {
		day, errParse := time.Parse("2006-01-02", dateQ)
		if errParse != nil {
			return filter, "invalid date, use YYYY-MM-DD"
		}
		filter.Date = &day
	}
	if statusQ := strings.TrimSpace(c.Query("status")); statusQ != "" {
		status := models.ExpenseStatus(statusQ)
		if !models.ValidExpenseStatus(status) {
			return filter, "status must be pendiente or pagado"
		}
		filter.Status = status
	}
	return filter, ""
}
