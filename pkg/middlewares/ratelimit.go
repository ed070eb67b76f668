package middlewares

import (
	"context"
	"sync"
	"time"

	"community_chat_service/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter token bucket per member (or IP when anonymous)
type RateLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*keyLimiter
	r          rate.Limit
	burst      int
	ttl        time.Duration
	maxEntries int
}

// NewRateLimiter create a per-key limiter, r events per second
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:   make(map[string]*keyLimiter),
		r:          r,
		burst:      burst,
		ttl:        15 * time.Minute,
		maxEntries: 10000,
	}
}

// Allow report whether key may proceed now
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	entry, ok := rl.limiters[key]
	if !ok {
		if len(rl.limiters) >= rl.maxEntries {
			rl.mu.Unlock()
			return false
		}
		entry = &keyLimiter{limiter: rate.NewLimiter(rl.r, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

// Run evict stale keys until ctx is done
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evict(time.Now())
		}
	}
}

func (rl *RateLimiter) evict(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > rl.ttl {
			delete(rl.limiters, key)
		}
	}
}

// Handler fiber middleware, must run after JWTMiddleware to key by member
func (rl *RateLimiter) Handler(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := MemberID(c)
		if key == "" {
			key = c.IP()
		}
		if !rl.Allow(key) {
			if m != nil {
				m.RateLimited.Inc()
			}
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many chat requests, please slow down a bit.",
			})
		}
		return c.Next()
	}
}
