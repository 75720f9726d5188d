package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/waichatt/console/internal/db"
	"github.com/waichatt/console/internal/models"
	"gorm.io/gorm"
)

// ClientHandler manages admin CRUD endpoints for client accounts.
type ClientHandler struct {
	db *gorm.DB // Database handle for client records.
}

// NewClientHandler constructs a client handler.
func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

// createClientRequest captures the payload for creating a client account.
type createClientRequest struct {
	Name              string `json:"name"`              // Display name.
	Phone             string `json:"phone"`             // Contact phone.
	Email             string `json:"email"`             // Contact email.
	PlanID            uint64 `json:"plan_id"`           // Subscribed plan ID.
	MessagesRemaining *int   `json:"messagesRemaining"` // Optional starting quota; defaults to the plan allotment.
	Active            *bool  `json:"active"`            // Optional active flag.
}

// Create validates input and inserts a client account.
func (h *ClientHandler) Create(c *gin.Context) {
	var body createClientRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	if body.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if body.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	if body.PlanID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plan_id is required"})
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

	remaining := plan.IncludedMessages
	if body.MessagesRemaining != nil {
		remaining = *body.MessagesRemaining
	}
	active := true
	if body.Active != nil {
		active = *body.Active
	}

	now := time.Now().UTC()
	client := models.Client{
		Name:              body.Name,
		Phone:             strings.TrimSpace(body.Phone),
		Email:             body.Email,
		MessagesRemaining: remaining,
		PlanID:            body.PlanID,
		Active:            active,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&client).Error; errCreate != nil {
		if isDuplicateKey(errCreate) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create client failed"})
		return
	}
	client.Plan = plan
	c.JSON(http.StatusCreated, h.formatClient(&client))
}

// List returns client accounts, optionally filtered by name/email search and
// active state.
func (h *ClientHandler) List(c *gin.Context) {
	var (
		search  = strings.TrimSpace(c.Query("search"))
		activeQ = strings.TrimSpace(c.Query("active"))
	)

	q := h.db.WithContext(c.Request.Context()).Model(&models.Client{}).Preload("Plan")
	if search != "" {
		pattern := db.NormalizeLikePattern(h.db, "%"+search+"%")
		q = q.Where(
			h.db.Where(db.CaseInsensitiveLikeExpr(h.db, "name"), pattern).
				Or(db.CaseInsensitiveLikeExpr(h.db, "email"), pattern),
		)
	}
	if activeQ == "true" || activeQ == "1" {
		q = q.Where("active = ?", true)
	} else if activeQ == "false" || activeQ == "0" {
		q = q.Where("active = ?", false)
	}

	var rows []models.Client
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list clients failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatClient(&row))
	}
	c.JSON(http.StatusOK, gin.H{"clients": out})
}

// Get returns a client account by ID.
func (h *ClientHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var client models.Client
	if errFind := h.db.WithContext(c.Request.Context()).Preload("Plan").First(&client, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, h.formatClient(&client))
}

// updateClientRequest captures optional fields for client updates.
type updateClientRequest struct {
	Name              *string `json:"name"`              // Optional display name.
	Phone             *string `json:"phone"`             // Optional contact phone.
	Email             *string `json:"email"`             // Optional contact email.
	PlanID            *uint64 `json:"plan_id"`           // Optional plan ID.
	MessagesRemaining *int    `json:"messagesRemaining"` // Optional quota adjustment; negative values are allowed.
	Active            *bool   `json:"active"`            // Optional active flag.
}

// Update validates and applies client field updates.
func (h *ClientHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateClientRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var existing models.Client
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

	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}
		updates["name"] = name
	}
	if body.Phone != nil {
		updates["phone"] = strings.TrimSpace(*body.Phone)
	}
	if body.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*body.Email))
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email cannot be empty"})
			return
		}
		updates["email"] = email
	}
	if body.PlanID != nil {
		var plan models.Plan
		if errFindPlan := h.db.WithContext(c.Request.Context()).First(&plan, *body.PlanID).Error; errFindPlan != nil {
			if errors.Is(errFindPlan, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query plan failed"})
			return
		}
		updates["plan_id"] = *body.PlanID
	}
	if body.MessagesRemaining != nil {
		updates["messages_remaining"] = *body.MessagesRemaining
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Client{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a client account and its console users in one transaction.
// Payments reference the client historically and are kept.
func (h *ClientHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if errUsers := tx.Where("client_id = ?", id).Delete(&models.User{}).Error; errUsers != nil {
			return errUsers
		}
		res := tx.Delete(&models.Client{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errTx != nil {
		if errors.Is(errTx, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// formatClient converts a client model into a response payload.
func (h *ClientHandler) formatClient(client *models.Client) gin.H {
	return gin.H{
		"id":                client.ID,
		"name":              client.Name,
		"phone":             client.Phone,
		"email":             client.Email,
		"messagesRemaining": client.MessagesRemaining,
		"plan_id":           client.PlanID,
		"plan_name":         client.Plan.Name,
		"active":            client.Active,
		"created_at":        client.CreatedAt,
		"updated_at":        client.UpdatedAt,
	}
}

// isDuplicateKey reports whether an insert/update failed on a unique index.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 23505 is the Postgres unique_violation code.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// The embedded SQLite driver surfaces constraint failures as plain text.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint")
}
