package ratelimit

import (
	"context"
	"strings"
	"time"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter provides rate limit checks.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error)
}

// LoginKey builds the limiter key for a login attempt. Limits apply per
// identity and source address so one noisy client cannot lock out others.
func LoginKey(email, remoteAddr string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	remoteAddr = strings.TrimSpace(remoteAddr)
	return "login:" + email + ":" + remoteAddr
}
