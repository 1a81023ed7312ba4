package serverutils

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// IPRateLimiter hands out one token bucket per client IP. Buckets idle for
// longer than ttl are dropped on the next sweep.
type IPRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(perMinute int) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &IPRateLimiter{
		limiters:  make(map[string]*ipLimiter),
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     perMinute,
		ttl:       10 * time.Minute,
		lastSweep: time.Now(),
	}
}

func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > l.ttl {
		for key, entry := range l.limiters {
			if now.Sub(entry.lastSeen) > l.ttl {
				delete(l.limiters, key)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

func (l *IPRateLimiter) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !l.Allow(ctx.IP()) {
			return ctx.Status(fiber.StatusTooManyRequests).
				JSON(ErrorResponse(fiber.StatusTooManyRequests, "Too many login attempts, slow down"))
		}
		return ctx.Next()
	}
}
