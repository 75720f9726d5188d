package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/waichatt/console/internal/config"
	"github.com/waichatt/console/internal/models"
	"github.com/waichatt/console/internal/ratelimit"
	"github.com/waichatt/console/internal/security"
	"gorm.io/gorm"
)

// AuthHandler serves the login endpoint.
type AuthHandler struct {
	db      *gorm.DB           // Database handle for user records.
	jwtCfg  config.JWTConfig   // Token signing settings.
	limiter *ratelimit.Manager // Login attempt limiter.
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, limiter *ratelimit.Manager) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg, limiter: limiter}
}

// loginRequest captures the login payload.
type loginRequest struct {
	Email    string `json:"email"`     // Login email.
	Password string `json:"password"`  // Plaintext password.
	TOTPCode string `json:"totp_code"` // Second-factor code, when enrolled.
}

// Login verifies credentials and issues a session token. Failed lookups and
// failed password checks return the same message so the endpoint does not
// disclose which emails exist.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	if body.Email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	key := ratelimit.LoginKey(body.Email, c.ClientIP())
	result, errLimit := h.limiter.AllowLogin(c.Request.Context(), key)
	if errLimit != nil {
		log.WithError(errLimit).Warn("login: rate limit check failed")
	} else if !result.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts"})
		return
	}

	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).Where("email = ?", body.Email).First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	if !security.CheckPassword(user.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if user.TOTPSecret != "" {
		if strings.TrimSpace(body.TOTPCode) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "totp code required"})
			return
		}
		if !security.ValidateTOTPCode(user.TOTPSecret, strings.TrimSpace(body.TOTPCode)) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid totp code"})
			return
		}
	}

	token, errIssue := security.IssueSessionToken(h.jwtCfg.Secret, h.jwtCfg.Expiry, &user)
	if errIssue != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"role":  models.NormalizeRole(string(user.Role)),
		"name":  user.Name,
	})
}
