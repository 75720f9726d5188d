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

// ServiceHandler manages admin CRUD endpoints for expense services.
type ServiceHandler struct {
	db *gorm.DB // Database handle for service records.
}

// NewServiceHandler constructs a service handler.
func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{db: db}
}

// createServiceRequest captures the payload for creating a service.
type createServiceRequest struct {
	Name          string  `json:"name"`           // Provider name.
	Type          string  `json:"type"`           // fijo or variable.
	DefaultAmount float64 `json:"default_amount"` // Default charge amount.
	Active        *bool   `json:"active"`         // Optional active flag.
	Description   string  `json:"description"`    // Free-form description.
}

// Create validates input and inserts a service.
func (h *ServiceHandler) Create(c *gin.Context) {
	var body createServiceRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	serviceType := models.ServiceType(strings.TrimSpace(body.Type))
	if !models.ValidServiceType(serviceType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be fijo or variable"})
		return
	}

	active := true
	if body.Active != nil {
		active = *body.Active
	}

	now := time.Now().UTC()
	service := models.Service{
		Name:          body.Name,
		Type:          serviceType,
		DefaultAmount: body.DefaultAmount,
		Active:        active,
		Description:   strings.TrimSpace(body.Description),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&service).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create service failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatService(&service))
}

// List returns services filtered by query parameters.
func (h *ServiceHandler) List(c *gin.Context) {
	var (
		typeQ   = strings.TrimSpace(c.Query("type"))
		activeQ = strings.TrimSpace(c.Query("active"))
	)

	q := h.db.WithContext(c.Request.Context()).Model(&models.Service{})
	if typeQ != "" {
		serviceType := models.ServiceType(typeQ)
		if !models.ValidServiceType(serviceType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be fijo or variable"})
			return
		}
		q = q.Where("type = ?", serviceType)
	}
	if activeQ == "true" || activeQ == "1" {
		q = q.Where("active = ?", true)
	} else if activeQ == "false" || activeQ == "0" {
		q = q.Where("active = ?", false)
	}

	var rows []models.Service
	if errFind := q.Order("name ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list services failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatService(&row))
	}
	c.JSON(http.StatusOK, gin.H{"services": out})
}

// updateServiceRequest captures optional fields for service updates.
type updateServiceRequest struct {
	Name          *string  `json:"name"`           // Optional provider name.
	Type          *string  `json:"type"`           // Optional cost classification.
	DefaultAmount *float64 `json:"default_amount"` // Optional default amount.
	Active        *bool    `json:"active"`         // Optional active flag.
	Description   *string  `json:"description"`    // Optional description.
}

// Update validates and applies service field updates.
func (h *ServiceHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateServiceRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var existing models.Service
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
	if body.Type != nil {
		serviceType := models.ServiceType(strings.TrimSpace(*body.Type))
		if !models.ValidServiceType(serviceType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be fijo or variable"})
			return
		}
		updates["type"] = serviceType
	}
	if body.DefaultAmount != nil {
		updates["default_amount"] = *body.DefaultAmount
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}
	if body.Description != nil {
		updates["description"] = strings.TrimSpace(*body.Description)
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Service{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a service by ID. Expenses that reference it keep their
// service_id; the finance view renders those as "service not found".
func (h *ServiceHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Service{}, id)
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

// formatService converts a service model into a response payload.
func (h *ServiceHandler) formatService(service *models.Service) gin.H {
	return gin.H{
		"id":             service.ID,
		"name":           service.Name,
		"type":           service.Type,
		"default_amount": service.DefaultAmount,
		"active":         service.Active,
		"description":    service.Description,
		"created_at":     service.CreatedAt,
		"updated_at":     service.UpdatedAt,
	}
}
