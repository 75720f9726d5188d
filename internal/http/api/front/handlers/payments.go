package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/waichatt/console/internal/models"
	"gorm.io/gorm"
)

// PaymentHistoryHandler serves the caller's own invoice history.
type PaymentHistoryHandler struct {
	db *gorm.DB // Database handle for payment records.
}

// NewPaymentHistoryHandler constructs a payment history handler.
func NewPaymentHistoryHandler(db *gorm.DB) *PaymentHistoryHandler {
	return &PaymentHistoryHandler{db: db}
}

// List returns the invoices of the caller's client account. The scope comes
// from the session, not from query parameters; one tenant can never page
// through another's ledger.
func (h *PaymentHistoryHandler) List(c *gin.Context) {
	clientID := c.GetUint64("clientID")
	if clientID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session scope"})
		return
	}

	var rows []models.Payment
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Plan").
		Where("client_id = ?", clientID).
		Order("date DESC").
		Find(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list payments failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":        row.ID,
			"plan_name": row.Plan.Name,
			"amount":    row.Amount,
			"status":    row.Status,
			"date":      row.Date,
		})
	}
	c.JSON(http.StatusOK, gin.H{"payments": out})
}
