package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures per-client request limiting.
// A zero RequestsPerSecond disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Enabled reports whether limiting is active
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerSecond > 0
}

// RateLimiter tracks a token bucket per client IP
type RateLimiter struct {
	config RateLimitConfig
	logger *zap.Logger

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	cleanupInterval time.Duration
	idleTimeout     time.Duration
	lastCleanup     time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new per-client rate limiter
func NewRateLimiter(cfg RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	return &RateLimiter{
		config:          cfg,
		logger:          logger.Named("ratelimit"),
		limiters:        make(map[string]*clientLimiter),
		cleanupInterval: 10 * time.Minute,
		idleTimeout:     30 * time.Minute,
		lastCleanup:     time.Now(),
	}
}

// Allow reports whether a request from client may proceed
func (r *RateLimiter) Allow(client string) bool {
	if !r.config.Enabled() {
		return true
	}

	r.mu.Lock()
	now := time.Now()
	if now.Sub(r.lastCleanup) > r.cleanupInterval {
		r.cleanup(now)
	}
	cl, ok := r.limiters[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(r.config.RequestsPerSecond), r.config.Burst)}
		r.limiters[client] = cl
	}
	cl.lastSeen = now
	r.mu.Unlock()

	return cl.limiter.Allow()
}

// cleanup drops limiters idle for longer than idleTimeout. Caller holds mu.
func (r *RateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-r.idleTimeout)
	for key, cl := range r.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(r.limiters, key)
		}
	}
	r.lastCleanup = now
}

// RateLimit returns a gin middleware that rejects clients over their limit with 429
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.ClientIP()
		if !rl.Allow(client) {
			rl.logger.Warn("Rate limit exceeded", zap.String("client_ip", client))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
