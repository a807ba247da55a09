package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yaroslav/haloclient/internal/metrics"
)

// RateLimiter keeps one token bucket per client.
// Idle buckets are dropped during Allow once per cleanup interval.
type RateLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	rate        rate.Limit
	burst       int
	cleanup     time.Duration
	lastCleanup time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst per client.
func NewRateLimiter(rps float64, burst int, cleanup time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters:    make(map[string]*rate.Limiter),
		rate:        rate.Limit(rps),
		burst:       burst,
		cleanup:     cleanup,
		lastCleanup: time.Now(),
	}
}

// Allow reports whether a request from identifier may proceed.
func (rl *RateLimiter) Allow(identifier string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now := time.Now(); now.Sub(rl.lastCleanup) >= rl.cleanup {
		for id, limiter := range rl.limiters {
			// A full bucket has not been used since it refilled
			if limiter.Tokens() >= float64(rl.burst) {
				delete(rl.limiters, id)
			}
		}
		rl.lastCleanup = now
	}

	limiter, exists := rl.limiters[identifier]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[identifier] = limiter
	}

	return limiter.Allow()
}

// RateLimitByIP rejects clients exceeding rps with 429. A non-positive rps
// disables limiting.
func RateLimitByIP(rps float64, burst int, m *metrics.Metrics) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := NewRateLimiter(rps, burst, time.Minute)

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			if m != nil {
				m.RateLimitExceeded.Inc()
			}
			c.Header("Retry-After", "1")
			AbortWithProblem(c, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		c.Next()
	}
}
