package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/farmacia/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// RateLimiter decides whether one more request for key fits the window
type RateLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
	Limit() int
}

// MemoryRateLimiter is a per-process fixed-window limiter
type MemoryRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     int
	window    time.Duration
	clock     clockz.Clock
	lastSweep time.Time
}

type client struct {
	count       int
	windowStart time.Time
}

// NewMemoryRateLimiter creates a new rate limiter
func NewMemoryRateLimiter(limit int, window time.Duration, clock clockz.Clock) *MemoryRateLimiter {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &MemoryRateLimiter{
		clients:   make(map[string]*client),
		limit:     limit,
		window:    window,
		clock:     clock,
		lastSweep: clock.Now(),
	}
}

// Allow checks if a request from the given key should be allowed
func (rl *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	rl.sweep(now)

	c, exists := rl.clients[key]
	if !exists || now.Sub(c.windowStart) >= rl.window {
		c = &client{windowStart: now}
		rl.clients[key] = c
	}
	if c.count >= rl.limit {
		return false, 0, nil
	}
	c.count++
	return true, rl.limit - c.count, nil
}

// Limit returns the requests allowed per window
func (rl *MemoryRateLimiter) Limit() int {
	return rl.limit
}

// sweep drops idle clients every other window. Callers hold mu.
func (rl *MemoryRateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.window*2 {
		return
	}
	for key, c := range rl.clients {
		if now.Sub(c.windowStart) >= rl.window {
			delete(rl.clients, key)
		}
	}
	rl.lastSweep = now
}

// RateLimit limits requests per caller. Authenticated callers are keyed by
// user id, everyone else by client IP. A failing limiter lets the request
// through.
func RateLimit(limiter RateLimiter, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if actor, ok := GetActor(c); ok {
			key = "user:" + actor.UserID.String()
		}

		allowed, remaining, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("Rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			c.AbortWithStatusJSON(dto.GetHTTPStatus(dto.ErrCodeRateLimited),
				dto.NewErrorResponseWithRequestID(dto.ErrCodeRateLimited,
					"Too many requests. Please try again later.", c.GetString(RequestIDContextKey)))
			return
		}
		c.Next()
	}
}
