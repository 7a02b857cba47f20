package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowWithinLimit(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Close()

	cfg := RateLimitConfig{Window: time.Minute, MaxRequests: 3}

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("10.0.0.1:/api/sync/case", cfg)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, retryAfter := rl.Allow("10.0.0.1:/api/sync/case", cfg)
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, 0)
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Close()

	cfg := RateLimitConfig{Window: time.Minute, MaxRequests: 1}

	allowed, _ := rl.Allow("10.0.0.1:/api/sync/case", cfg)
	require.True(t, allowed)
	allowed, _ = rl.Allow("10.0.0.1:/api/sync/case", cfg)
	require.False(t, allowed)

	allowed, _ = rl.Allow("10.0.0.2:/api/sync/case", cfg)
	assert.True(t, allowed, "a different client must not be throttled")

	allowed, _ = rl.Allow("10.0.0.1:/api/reference-data", cfg)
	assert.True(t, allowed, "a different route must not be throttled")
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Close()

	cfg := RateLimitConfig{Window: 10 * time.Millisecond, MaxRequests: 1}

	allowed, _ := rl.Allow("k", cfg)
	require.True(t, allowed)
	allowed, _ = rl.Allow("k", cfg)
	require.False(t, allowed)

	time.Sleep(20 * time.Millisecond)

	allowed, _ = rl.Allow("k", cfg)
	assert.True(t, allowed, "expired window starts a fresh count")
}

func TestRateLimiterSweepDropsExpiredEntries(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Close()

	cfg := RateLimitConfig{Window: time.Millisecond, MaxRequests: 1}
	rl.Allow("stale", cfg)

	time.Sleep(5 * time.Millisecond)
	rl.sweep(time.Now())

	rl.mu.Lock()
	_, ok := rl.entries["stale"]
	rl.mu.Unlock()
	assert.False(t, ok)
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(time.Minute)
	defer rl.Close()

	r := gin.New()
	r.GET("/ping", rl.Middleware(RateLimitConfig{Window: time.Minute, MaxRequests: 2}), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
