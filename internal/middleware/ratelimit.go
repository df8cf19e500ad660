package middleware

import (
	"sync"
	"time"

	"medreminder/internal/response"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures a RateLimiter. A non-positive RPS disables
// limiting. IdleTTL and MaxClients bound the per-client state; zero values
// leave the corresponding bound off.
type RateLimitConfig struct {
	RPS        float64
	Burst      int
	IdleTTL    time.Duration
	MaxClients int
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP with a token bucket.
type RateLimiter struct {
	cfg     RateLimitConfig
	now     func() time.Time
	mu      sync.Mutex
	clients map[string]*client
}

// RateLimitOption customizes a RateLimiter.
type RateLimitOption func(*RateLimiter)

// WithRateLimitClock overrides the clock used for idle tracking.
func WithRateLimitClock(now func() time.Time) RateLimitOption {
	return func(l *RateLimiter) { l.now = now }
}

// NewRateLimiter creates a RateLimiter.
func NewRateLimiter(cfg RateLimitConfig, opts ...RateLimitOption) *RateLimiter {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	l := &RateLimiter{
		cfg:     cfg,
		now:     time.Now,
		clients: make(map[string]*client),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Handler answers 429 once a client IP has spent its burst.
func (l *RateLimiter) Handler() fiber.Handler {
	if l.cfg.RPS <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return func(c *fiber.Ctx) error {
		if !l.allow(c.IP()) {
			return response.Error(c, fiber.StatusTooManyRequests, "Too many requests, please try again later")
		}
		return c.Next()
	}
}

func (l *RateLimiter) allow(ip string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.clients[ip]
	if !ok {
		if l.cfg.MaxClients > 0 && len(l.clients) >= l.cfg.MaxClients {
			l.evictLocked(now)
		}
		cl = &client{limiter: rate.NewLimiter(rate.Limit(l.cfg.RPS), l.cfg.Burst)}
		l.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// Sweep forgets clients idle for longer than IdleTTL and returns how many
// were removed.
func (l *RateLimiter) Sweep() int {
	if l.cfg.IdleTTL <= 0 {
		return 0
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for ip, cl := range l.clients {
		if l.idle(cl, now) {
			delete(l.clients, ip)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *RateLimiter) idle(cl *client, now time.Time) bool {
	return l.cfg.IdleTTL > 0 && now.Sub(cl.lastSeen) >= l.cfg.IdleTTL
}

// evictLocked drops idle clients, or the least recently seen one when none
// is idle. Callers must hold the lock.
func (l *RateLimiter) evictLocked(now time.Time) {
	var (
		victim     string
		victimSeen time.Time
		haveVictim bool
	)
	for ip, cl := range l.clients {
		if l.idle(cl, now) {
			delete(l.clients, ip)
			continue
		}
		if !haveVictim || cl.lastSeen.Before(victimSeen) {
			victim, victimSeen, haveVictim = ip, cl.lastSeen, true
		}
	}
	if len(l.clients) >= l.cfg.MaxClients && haveVictim {
		delete(l.clients, victim)
	}
}
