package middleware

import (
	"sync"
	"time"

	"dayflow-hris/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a key may stay unused before its bucket is
// dropped. An idle bucket is full again long before this.
const limiterIdleTTL = 10 * time.Minute

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter keeps one token bucket per key (client IP or employee id).
// Buckets idle for limiterIdleTTL are evicted on a later lookup.
type KeyedRateLimiter struct {
	limiters  map[string]*keyedLimiter
	mu        sync.Mutex
	r         rate.Limit // jumlah request per detik
	b         int        // burst (kapasitas kantong)
	now       func() time.Time
	lastSweep time.Time
}

func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters:  make(map[string]*keyedLimiter),
		r:         r,
		b:         b,
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

func (k *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if now.Sub(k.lastSweep) >= limiterIdleTTL {
		k.sweep(now)
	}

	entry, exists := k.limiters[key]
	if !exists {
		entry = &keyedLimiter{limiter: rate.NewLimiter(k.r, k.b)}
		k.limiters[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter
}

// Len is the number of tracked keys.
func (k *KeyedRateLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

func (k *KeyedRateLimiter) sweep(now time.Time) {
	for key, entry := range k.limiters {
		if now.Sub(entry.lastSeen) >= limiterIdleTTL {
			delete(k.limiters, key)
		}
	}
	k.lastSweep = now
}

// RateLimitByIP guards a whole route group before authentication runs.
func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			abortWith(c, apperror.ErrRateLimitedIP)
			return
		}
		c.Next()
	}
}

// RateLimitByUser: r = request per detik, b = burst
func RateLimitByUser(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		userID := c.GetString(string(ContextEmployeeID))
		if userID == "" {
			c.Next() // belum login, biar AuthMiddleware yang menolak
			return
		}
		if !limiter.GetLimiter(userID).Allow() {
			abortWith(c, apperror.ErrRateLimitedUser)
			return
		}
		c.Next()
	}
}
