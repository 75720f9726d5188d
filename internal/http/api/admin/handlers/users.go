package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/waichatt/console/internal/models"
	"github.com/waichatt/console/internal/security"
	"gorm.io/gorm"
)

// UserHandler manages admin CRUD endpoints for console users.
type UserHandler struct {
	db *gorm.DB // Database handle for user records.
}

// NewUserHandler constructs a user handler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// createUserRequest captures the payload for creating a console user.
type createUserRequest struct {
	Name        string `json:"name"`         // Display name.
	Email       string `json:"email"`        // Unique login email.
	Password    string `json:"password"`     // Plaintext password, hashed before storage.
	BaseURL     string `json:"base_url"`     // Messaging API base URL.
	AccessToken string `json:"access_token"` // Messaging API access token.
	ClientID    uint64 `json:"client_id"`    // Owning client account ID.
	Role        string `json:"role"`         // Access level; unknown values fall back to user.
	EnableTOTP  bool   `json:"enable_totp"`  // Whether to enroll a second factor.
}

// Create validates input and inserts a console user.
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	if body.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	if len(body.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}
	if body.ClientID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id is required"})
		return
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

	hashed, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	totpSecret, totpURL := "", ""
	if body.EnableTOTP {
		secret, url, errTOTP := security.GenerateTOTPSecret(body.Email)
		if errTOTP != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "generate totp secret failed"})
			return
		}
		totpSecret, totpURL = secret, url
	}

	now := time.Now().UTC()
	user := models.User{
		Name:        strings.TrimSpace(body.Name),
		Email:       body.Email,
		Password:    hashed,
		BaseURL:     strings.TrimRight(strings.TrimSpace(body.BaseURL), "/"),
		AccessToken: strings.TrimSpace(body.AccessToken),
		ClientID:    body.ClientID,
		Role:        models.NormalizeRole(body.Role),
		TOTPSecret:  totpSecret,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&user).Error; errCreate != nil {
		if isDuplicateKey(errCreate) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}

	payload := h.formatUser(&user)
	if totpSecret != "" {
		// Returned once, at enrollment; never readable again.
		payload["totp_secret"] = totpSecret
		payload["totp_url"] = totpURL
	}
	c.JSON(http.StatusCreated, payload)
}

// List returns console users filtered by query parameters.
func (h *UserHandler) List(c *gin.Context) {
	var (
		clientIDQ = strings.TrimSpace(c.Query("client_id"))
		roleQ     = strings.TrimSpace(c.Query("role"))
	)

	q := h.db.WithContext(c.Request.Context()).Model(&models.User{})
	if clientIDQ != "" {
		if id, errParse := strconv.ParseUint(clientIDQ, 10, 64); errParse == nil {
			q = q.Where("client_id = ?", id)
		}
	}
	if roleQ != "" {
		q = q.Where("role = ?", models.NormalizeRole(roleQ))
	}

	var rows []models.User
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list users failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatUser(&row))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// Get returns a console user by ID.
func (h *UserHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, h.formatUser(&user))
}

// updateUserRequest captures optional fields for user updates.
type updateUserRequest struct {
	Name        *string `json:"name"`         // Optional display name.
	Email       *string `json:"email"`        // Optional login email.
	Password    *string `json:"password"`     // Optional new password.
	BaseURL     *string `json:"base_url"`     // Optional messaging API base URL.
	AccessToken *string `json:"access_token"` // Optional messaging API access token.
	ClientID    *uint64 `json:"client_id"`    // Optional owning client ID.
	Role        *string `json:"role"`         // Optional access level.
	DisableTOTP *bool   `json:"disable_totp"` // Optional second-factor removal.
}

// Update validates and applies user field updates.
func (h *UserHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var existing models.User
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
		updates["name"] = strings.TrimSpace(*body.Name)
	}
	if body.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*body.Email))
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email cannot be empty"})
			return
		}
		updates["email"] = email
	}
	if body.Password != nil {
		if len(*body.Password) < 8 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
			return
		}
		hashed, errHash := security.HashPassword(*body.Password)
		if errHash != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
			return
		}
		updates["password"] = hashed
	}
	if body.BaseURL != nil {
		updates["base_url"] = strings.TrimRight(strings.TrimSpace(*body.BaseURL), "/")
	}
	if body.AccessToken != nil {
		updates["access_token"] = strings.TrimSpace(*body.AccessToken)
	}
	if body.ClientID != nil {
		var client models.Client
		if errFindClient := h.db.WithContext(c.Request.Context()).First(&client, *body.ClientID).Error; errFindClient != nil {
			if errors.Is(errFindClient, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query client failed"})
			return
		}
		updates["client_id"] = *body.ClientID
	}
	if body.Role != nil {
		updates["role"] = models.NormalizeRole(*body.Role)
	}
	if body.DisableTOTP != nil && *body.DisableTOTP {
		updates["totp_secret"] = ""
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.User{}).Where("id = ?", id).Updates(updates)
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

// Delete removes a console user by ID.
func (h *UserHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.User{}, id)
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

// formatUser converts a user model into a response payload. The password
// hash and TOTP secret are never included.
func (h *UserHandler) formatUser(user *models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"name":         user.Name,
		"email":        user.Email,
		"base_url":     user.BaseURL,
		"client_id":    user.ClientID,
		"role":         user.Role,
		"totp_enabled": user.TOTPSecret != "",
		"created_at":   user.CreatedAt,
		"updated_at":   user.UpdatedAt,
	}
}
