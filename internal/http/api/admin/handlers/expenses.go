package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/waichatt/console/internal/exchange"
	"github.com/waichatt/console/internal/models"
	"gorm.io/gorm"
)

// ExpenseHandler manages admin CRUD endpoints for the expense ledger.
type ExpenseHandler struct {
	db *gorm.DB         // Database handle for expense records.
	fx *exchange.Client // Quote client for USD conversion at write time.
}

// NewExpenseHandler constructs an expense handler.
func NewExpenseHandler(db *gorm.DB, fx *exchange.Client) *ExpenseHandler {
	return &ExpenseHandler{db: db, fx: fx}
}

// createExpenseRequest captures the payload for recording an expense.
type createExpenseRequest struct {
	Date        string  `json:"date"`        // RFC3339 expense date; defaults to now.
	Description string  `json:"description"` // Free-form description.
	Amount      float64 `json:"amount"`      // Amount in the entry currency.
	Currency    string  `json:"currency"`    // ARS or USD; defaults to ARS.
	Status      string  `json:"status"`      // pendiente or pagado; defaults to pendiente.
	ServiceID   *uint64 `json:"service_id"`  // Optional related service.
}

// Create validates input, converts USD amounts to ARS once, and records the
// expense. The stored amount is never reconverted on later reads.
func (h *ExpenseHandler) Create(c *gin.Context) {
	var body createExpenseRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if body.Amount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount cannot be negative"})
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(body.Currency))
	if currency == "" {
		currency = models.CurrencyARS
	}
	if currency != models.CurrencyARS && currency != models.CurrencyUSD {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currency must be ARS or USD"})
		return
	}

	status := models.ExpenseStatus(strings.TrimSpace(body.Status))
	if status == "" {
		status = models.ExpenseStatusPending
	}
	if !models.ValidExpenseStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pendiente or pagado"})
		return
	}

	date := time.Now().UTC()
	if strings.TrimSpace(body.Date) != "" {
		parsed, errParseDate := time.Parse(time.RFC3339, body.Date)
		if errParseDate != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use RFC3339"})
			return
		}
		date = parsed
	}

	if body.ServiceID != nil {
		var service models.Service
		if errFindService := h.db.WithContext(c.Request.Context()).First(&service, *body.ServiceID).Error; errFindService != nil {
			if errors.Is(errFindService, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query service failed"})
			return
		}
	}

	amount := h.fx.ConvertExpenseAmount(c.Request.Context(), body.Amount, currency)

	now := time.Now().UTC()
	expense := models.Expense{
		Date:        date,
		Description: strings.TrimSpace(body.Description),
		Amount:      amount,
		Status:      status,
		ServiceID:   body.ServiceID,
		Currency:    currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&expense).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create expense failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatExpense(&expense))
}

// List returns expenses filtered by query parameters.
func (h *ExpenseHandler) List(c *gin.Context) {
	var (
		serviceIDQ = strings.TrimSpace(c.Query("service_id"))
		statusQ    = strings.TrimSpace(c.Query("status"))
	)

	q := h.db.WithContext(c.Request.Context()).Model(&models.Expense{}).Preload("Service")
	if serviceIDQ != "" {
		if id, errParse := strconv.ParseUint(serviceIDQ, 10, 64); errParse == nil {
			q = q.Where("service_id = ?", id)
		}
	}
	if statusQ != "" {
		status := models.ExpenseStatus(statusQ)
		if !models.ValidExpenseStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pendiente or pagado"})
			return
		}
		q = q.Where("status = ?", status)
	}

	var rows []models.Expense
	if errFind := q.Order("date DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list expenses failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatExpense(&row))
	}
	c.JSON(http.StatusOK, gin.H{"expenses": out})
}

// updateExpenseRequest captures optional fields for expense updates.
type updateExpenseRequest struct {
	Date        *string  `json:"date"`        // Optional RFC3339 expense date.
	Description *string  `json:"description"` // Optional description.
	Amount      *float64 `json:"amount"`      // Optional amount in the entry currency.
	Currency    *string  `json:"currency"`    // Optional currency for a new amount.
	Status      *string  `json:"status"`      // Optional payment state.
	ServiceID   *uint64  `json:"service_id"`  // Optional related service; 0 clears it.
}

// Update validates and applies expense field updates. When the amount is
// re-entered in USD it is converted again, once, at this write.
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateExpenseRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var existing models.Expense
	if errFind := h.db.WithContext(c.Request.Context()).First(&existing, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	updates := map[string]any{
		"updated_at": time.Now().UTC(),
	}

	if body.Date != nil {
		t, errParseTime := time.Parse(time.RFC3339, *body.Date)
		if errParseTime != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format"})
			return
		}
		updates["date"] = t
	}
	if body.Description != nil {
		updates["description"] = strings.TrimSpace(*body.Description)
	}
	if body.Status != nil {
		status := models.ExpenseStatus(strings.TrimSpace(*body.Status))
		if !models.ValidExpenseStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pendiente or pagado"})
			return
		}
		updates["status"] = status
	}
	if body.ServiceID != nil {
		if *body.ServiceID == 0 {
			updates["service_id"] = nil
		} else {
			var service models.Service
			if errFindService := h.db.WithContext(c.Request.Context()).First(&service, *body.ServiceID).Error; errFindService != nil {
				if errors.Is(errFindService, gorm.ErrRecordNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "query service failed"})
				return
			}
			updates["service_id"] = *body.ServiceID
		}
	}
	if body.Amount != nil {
		if *body.Amount < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount cannot be negative"})
			return
		}
		currency := existing.Currency
		if body.Currency != nil {
			currency = strings.ToUpper(strings.TrimSpace(*body.Currency))
			if currency != models.CurrencyARS && currency != models.CurrencyUSD {
				c.JSON(http.StatusBadRequest, gin.H{"error": "currency must be ARS or USD"})
				return
			}
			updates["currency"] = currency
		}
		updates["amount"] = h.fx.ConvertExpenseAmount(c.Request.Context(), *body.Amount, currency)
	} else if body.Currency != nil {
		// A currency change without a new amount would misstate the ledger.
		c.JSON(http.StatusBadRequest, gin.H{"error": "currency requires amount"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Expense{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes an expense by ID.
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Expense{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// formatExpense converts an expense model into a response payload. A
// service_id whose row no longer exists renders as "service not found".
func (h *ExpenseHandler) formatExpense(expense *models.Expense) gin.H {
	serviceName := ""
	if expense.ServiceID != nil {
		serviceName = "service not found"
		if expense.Service != nil {
			serviceName = expense.Service.Name
		}
	}
	return gin.H{
		"id":           expense.ID,
		"date":         expense.Date,
		"description":  expense.Description,
		"amount":       expense.Amount,
		"status":       expense.Status,
		"service_id":   expense.ServiceID,
		"service_name": serviceName,
		"currency":     expense.Currency,
		"created_at":   expense.CreatedAt,
		"updated_at":   expense.UpdatedAt,
	}
}
