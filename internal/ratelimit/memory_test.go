package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/waichatt/console/internal/config"
)

func testConfig(loginPerSecond int) config.RateLimitConfig {
	return config.RateLimitConfig{LoginPerSecond: loginPerSecond}
}

func TestMemoryLimiterEnforcesLimitWithinWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Unix(1_000_000, 0)

	for i := 0; i < 3; i++ {
		result, errAllow := limiter.Allow(context.Background(), "k", 3, now)
		if errAllow != nil {
			t.Fatalf("Allow: %v", errAllow)
		}
		if !result.Allowed {
			t.Fatalf("attempt %d denied, want allowed", i+1)
		}
	}

	result, errAllow := limiter.Allow(context.Background(), "k", 3, now)
	if errAllow != nil {
		t.Fatalf("Allow: %v", errAllow)
	}
	if result.Allowed {
		t.Fatal("fourth attempt allowed, want denied")
	}
}

func TestMemoryLimiterResetsNextSecond(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Unix(1_000_000, 0)

	if result, _ := limiter.Allow(context.Background(), "k", 1, now); !result.Allowed {
		t.Fatal("first attempt denied")
	}
	if result, _ := limiter.Allow(context.Background(), "k", 1, now); result.Allowed {
		t.Fatal("second attempt in same window allowed")
	}
	if result, _ := limiter.Allow(context.Background(), "k", 1, now.Add(time.Second)); !result.Allowed {
		t.Fatal("attempt in next window denied")
	}
}

func TestMemoryLimiterSeparatesKeys(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Unix(1_000_000, 0)

	if result, _ := limiter.Allow(context.Background(), "a", 1, now); !result.Allowed {
		t.Fatal("key a denied")
	}
	if result, _ := limiter.Allow(context.Background(), "b", 1, now); !result.Allowed {
		t.Fatal("key b denied, want independent counters")
	}
}

func TestMemoryLimiterSweepsExpiredCounters(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Unix(1_000_000, 0)

	if _, errAllow := limiter.Allow(context.Background(), "a", 1, now); errAllow != nil {
		t.Fatalf("Allow: %v", errAllow)
	}
	if _, errAllow := limiter.Allow(context.Background(), "b", 1, now); errAllow != nil {
		t.Fatalf("Allow: %v", errAllow)
	}

	// An attempt past the sweep interval drops the stale per-visitor counters.
	later := now.Add((sweepIntervalSeconds + 1) * time.Second)
	if _, errAllow := limiter.Allow(context.Background(), "c", 1, later); errAllow != nil {
		t.Fatalf("Allow: %v", errAllow)
	}

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if len(limiter.attempts) != 1 {
		t.Fatalf("counters = %d, want 1 after sweep", len(limiter.attempts))
	}
	if limiter.attempts["c"] == nil {
		t.Fatal("current-window counter swept, want kept")
	}
}

func TestManagerZeroLimitAllowsAll(t *testing.T) {
	manager := NewManager(testConfig(0), nil, nil)
	result, errAllow := manager.AllowLogin(context.Background(), "login:a@b.c:1.2.3.4")
	if errAllow != nil {
		t.Fatalf("AllowLogin: %v", errAllow)
	}
	if !result.Allowed {
		t.Fatal("zero limit denied, want allowed")
	}
}

func TestManagerMemoryFallback(t *testing.T) {
	now := time.Unix(2_000_000, 0)
	manager := NewManager(testConfig(2), func() time.Time { return now }, nil)

	key := LoginKey("a@b.c", "1.2.3.4")
	for i := 0; i < 2; i++ {
		result, errAllow := manager.AllowLogin(context.Background(), key)
		if errAllow != nil {
			t.Fatalf("AllowLogin: %v", errAllow)
		}
		if !result.Allowed {
			t.Fatalf("attempt %d denied", i+1)
		}
	}
	result, errAllow := manager.AllowLogin(context.Background(), key)
	if errAllow != nil {
		t.Fatalf("AllowLogin: %v", errAllow)
	}
	if result.Allowed {
		t.Fatal("third attempt allowed, want denied")
	}
}

func TestLoginKey(t *testing.T) {
	key := LoginKey("  Admin@Example.COM ", "10.0.0.1")
	if key != "login:admin@example.com:10.0.0.1" {
		t.Fatalf("key = %q", key)
	}
}
