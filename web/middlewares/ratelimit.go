package middlewares

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"vbdreport.org/vbdreport/web/common"
)

// RateLimitConfig bounds request frequency for one route class.
type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
	Message     string
}

// Per-route-class configurations. API covers the sync endpoints; General
// covers everything else the server exposes.
var (
	RateLimitAPI     = RateLimitConfig{Window: time.Minute, MaxRequests: 100}
	RateLimitGeneral = RateLimitConfig{Window: time.Minute, MaxRequests: 200}
)

type rateLimitEntry struct {
	count     int
	resetTime time.Time
}

// RateLimiter counts requests per client ip + path within a window. State is
// per process; a distributed deployment needs a shared counter store instead.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry

	stop chan struct{}
	done chan struct{}
}

// NewRateLimiter constructs the limiter and starts its sweep task, which
// drops expired entries every sweepInterval. Close stops the task.
func NewRateLimiter(sweepInterval time.Duration) *RateLimiter {
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}
	rl := &RateLimiter{
		entries: make(map[string]*rateLimitEntry),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go rl.sweepLoop(sweepInterval)
	return rl
}

func (rl *RateLimiter) sweepLoop(interval time.Duration) {
	defer close(rl.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep(time.Now())
		}
	}
}

func (rl *RateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, entry := range rl.entries {
		if entry.resetTime.Before(now) {
			delete(rl.entries, key)
		}
	}
}

// Allow reports whether another request from key is within limits, and the
// seconds until the window resets when it is not.
func (rl *RateLimiter) Allow(key string, cfg RateLimitConfig) (bool, int) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.entries[key]
	if !ok || entry.resetTime.Before(now) {
		rl.entries[key] = &rateLimitEntry{count: 1, resetTime: now.Add(cfg.Window)}
		return true, 0
	}

	entry.count++
	if entry.count > cfg.MaxRequests {
		return false, int(time.Until(entry.resetTime).Seconds()) + 1
	}
	return true, 0
}

// Middleware applies cfg per client ip + request path.
func (rl *RateLimiter) Middleware(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + c.FullPath()
		allowed, retryAfter := rl.Allow(key, cfg)
		if !allowed {
			msg := cfg.Message
			if msg == "" {
				msg = fmt.Sprintf("too many requests, retry in %d seconds", retryAfter)
			}
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.NewErrorResponse(msg))
			return
		}
		c.Next()
	}
}

// Close stops the sweep task and waits for it to exit.
func (rl *RateLimiter) Close() {
	close(rl.stop)
	<-rl.done
}
