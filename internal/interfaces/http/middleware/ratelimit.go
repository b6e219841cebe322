package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opsease/backend/internal/interfaces/http/dto"
	"github.com/patrickmn/go-cache"
)

// RateLimiter is a fixed-window request counter per client key. Each
// window starts with the key's first request and expires with its cache entry.
type RateLimiter struct {
	counts *cache.Cache
	limit  int
	window time.Duration
}

// NewRateLimiter creates a limiter allowing limit requests per window
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		counts: cache.New(window, window*2),
		limit:  limit,
		window: window,
	}
}

// Allow counts one request for key and reports whether it is within the
// limit, along with the requests left in the current window.
func (rl *RateLimiter) Allow(key string) (bool, int) {
	if err := rl.counts.Add(key, 1, rl.window); err == nil {
		return true, rl.limit - 1
	}
	n, err := rl.counts.IncrementInt(key, 1)
	if err != nil {
		// the window expired between Add and IncrementInt
		rl.counts.Set(key, 1, rl.window)
		return true, rl.limit - 1
	}
	if n > rl.limit {
		return false, 0
	}
	return true, rl.limit - n
}

// Limit returns the configured requests per window
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey limits requests per key returned by keyFunc
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	limit := strconv.Itoa(limiter.Limit())
	return func(c *gin.Context) {
		ok, remaining := limiter.Allow(keyFunc(c))
		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}
