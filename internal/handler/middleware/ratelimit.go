package middleware

import (
	"net/http"
	"sync"
	"time"

	"stay-ledger/internal/handler/httperr"
	"stay-ledger/internal/pkg/clock"
	"stay-ledger/internal/pkg/config"
	"stay-ledger/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var errRateLimited = errs.New("rate limit exceeded")

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per caller, falling back to the client
// IP for anonymous requests. A bucket left idle long enough to refill is
// indistinguishable from a new one, so it is evicted.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	clock     clock.Clock
}

func NewRateLimiter(cfg config.RateLimitConfig, clk clock.Clock) *RateLimiter {
	perMinute := max(cfg.BookingsPerMinute, 1)
	burst := max(cfg.Burst, 1)
	interval := time.Minute / time.Duration(perMinute)
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Every(interval),
		burst:   burst,
		idle:    max(interval*time.Duration(burst), time.Minute),
		clock:   clk,
	}
}

func (r *RateLimiter) allow(key string) bool {
	now := r.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if now.Sub(r.lastSweep) >= r.idle {
		r.sweep(now)
	}
	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// sweep runs at most once per idle period, so a request pays for it rarely.
func (r *RateLimiter) sweep(now time.Time) {
	for key, b := range r.buckets {
		if now.Sub(b.lastSeen) >= r.idle {
			delete(r.buckets, key)
		}
	}
	r.lastSweep = now
}

// Tracked reports how many buckets are held.
func (r *RateLimiter) Tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buckets)
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if caller, ok := GetCaller(c); ok {
			key = "caller:" + caller.String()
		}
		if !r.allow(key) {
			c.Header("Retry-After", "60")
			httperr.AbortWithError(c, http.StatusTooManyRequests, httperr.CodeRateLimited, errRateLimited, "Too many requests", nil)
			return
		}
		c.Next()
	}
}
