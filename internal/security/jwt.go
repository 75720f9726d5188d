package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/waichatt/console/internal/models"
)

// ErrInvalidToken indicates a malformed, expired, or badly signed session token.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims carries the authenticated identity inside a session token.
// Role travels in the claims so handlers can gate access without a database
// round-trip.
type SessionClaims struct {
	UserID   uint64      `json:"uid"`
	ClientID uint64      `json:"cid"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// IssueSessionToken signs a session token for the given user.
func IssueSessionToken(secret string, expiry time.Duration, user *models.User) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", errors.New("jwt secret is empty")
	}
	if user == nil {
		return "", errors.New("nil user")
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}

	now := time.Now().UTC()
	claims := SessionClaims{
		UserID:   user.ID,
		ClientID: user.ClientID,
		Email:    user.Email,
		Role:     models.NormalizeRole(string(user.Role)),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			Subject:   user.Email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, errSign := token.SignedString([]byte(secret))
	if errSign != nil {
		return "", fmt.Errorf("sign session token: %w", errSign)
	}
	return signed, nil
}

// ParseSessionToken validates a session token and returns its claims. The
// role is re-normalized so downstream checks only ever see enum values.
func ParseSessionToken(secret, raw string) (*SessionClaims, error) {
	if strings.TrimSpace(secret) == "" || strings.TrimSpace(raw) == "" {
		return nil, ErrInvalidToken
	}

	var claims SessionClaims
	token, errParse := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if errParse != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	claims.Role = models.NormalizeRole(string(claims.Role))
	return &claims, nil
}
