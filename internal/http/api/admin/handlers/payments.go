package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/waichatt/console/internal/models"
	"gorm.io/gorm"
)

// PaymentHandler manages admin CRUD endpoints for client invoices.
type PaymentHandler struct {
	db *gorm.DB // Database handle for payment records.
}

// NewPaymentHandler constructs a payment handler.
func NewPaymentHandler(db *gorm.DB) *PaymentHandler {
	return &PaymentHandler{db: db}
}

// createPaymentRequest captures the payload for recording an invoice.
type createPaymentRequest struct {
	ClientID uint64  `json:"client_id"` // Invoiced client ID.
	PlanID   uint64  `json:"plan_id"`   // Invoiced plan ID.
	Amount   float64 `json:"amount"`    // Invoice amount; defaults to the plan price when 0.
	Status   string  `json:"status"`    // Invoice status.
	Date     string  `json:"date"`      // RFC3339 invoice date; defaults to now.
}

// Create validates input and records an invoice.
func (h *PaymentHandler) Create(c *gin.Context) {
	var body createPaymentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if body.ClientID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id is required"})
		return
	}
	if body.PlanID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plan_id is required"})
		return
	}

	status := models.PaymentStatus(strings.TrimSpace(body.Status))
	if status == "" {
		status = models.PaymentStatusPending
	}
	if !models.ValidPaymentStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pagado, pendiente or fallido"})
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

	var client models.Client
	if errFindClient := h.db.WithContext(c.Request.Context()).First(&client, body.ClientID).Error; errFindClient != nil {
		if errors.Is(errFindClient, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query client failed"})
		return
	}
	var plan models.Plan
	if errFindPlan := h.db.WithContext(c.Request.Context()).First(&plan, body.PlanID).Error; errFindPlan != nil {
		if errors.Is(errFindPlan, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query plan failed"})
		return
	}

	amount := body.Amount
	if amount == 0 {
		amount = plan.Price
	}

	now := time.Now().UTC()
	payment := models.Payment{
		ClientID:  body.ClientID,
		PlanID:    body.PlanID,
		Amount:    amount,
		Status:    status,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&payment).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create payment failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatPayment(&payment))
}

// List returns invoices filtered by query parameters.
func (h *PaymentHandler) List(c *gin.Context) {
	var (
		clientIDQ = strings.TrimSpace(c.Query("client_id"))
		statusQ   = strings.TrimSpace(c.Query("status"))
	)

	q := h.db.WithContext(c.Request.Context()).Model(&models.Payment{}).Preload("Client").Preload("Plan")
	if clientIDQ != "" {
		if id, errParse := strconv.ParseUint(clientIDQ, 10, 64); errParse == nil {
			q = q.Where("client_id = ?", id)
		}
	}
	if statusQ != "" {
		status := models.PaymentStatus(statusQ)
		if !models.ValidPaymentStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pagado, pendiente or fallido"})
			return
		}
		q = q.Where("status = ?", status)
	}

	var rows []models.Payment
	if errFind := q.Order("date DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list payments failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatPayment(&row))
	}
	c.JSON(http.StatusOK, gin.H{"payments": out})
}

// Get returns an invoice by ID.
func (h *PaymentHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var payment models.Payment
	if errFind := h.db.WithContext(c.Request.Context()).Preload("Client").Preload("Plan").First(&payment, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, h.formatPayment(&payment))
}

// updatePaymentRequest captures optional fields for invoice updates.
type updatePaymentRequest struct {
	PlanID *uint64  `json:"plan_id"` // Optional plan ID.
	Amount *float64 `json:"amount"`  // Optional invoice amount.
	Status *string  `json:"status"`  // Optional invoice status.
	Date   *string  `json:"date"`    // Optional RFC3339 invoice date.
}

// Update validates and applies invoice field updates. Status changes are
// admin actions; nothing is derived.
func (h *PaymentHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updatePaymentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var existing models.Payment
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

	if body.PlanID != nil {
		if *body.PlanID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "plan_id cannot be 0"})
			return
		}
		updates["plan_id"] = *body.PlanID
	}
	if body.Amount != nil {
		updates["amount"] = *body.Amount
	}
	if body.Status != nil {
		status := models.PaymentStatus(strings.TrimSpace(*body.Status))
		if !models.ValidPaymentStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pagado, pendiente or fallido"})
			return
		}
		updates["status"] = status
	}
	if body.Date != nil {
		t, errParseTime := time.Parse(time.RFC3339, *body.Date)
		if errParseTime != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format"})
			return
		}
		updates["date"] = t
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Payment{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes an invoice by ID.
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Payment{}, id)
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

// formatPayment converts a payment model into a response payload.
func (h *PaymentHandler) formatPayment(payment *models.Payment) gin.H {
	return gin.H{
		"id":          payment.ID,
		"client_id":   payment.ClientID,
		"client_name": payment.Client.Name,
		"plan_id":     payment.PlanID,
		"plan_name":   payment.Plan.Name,
		"amount":      payment.Amount,
		"status":      payment.Status,
		"date":        payment.Date,
		"created_at":  payment.CreatedAt,
		"updated_at":  payment.UpdatedAt,
	}
}
