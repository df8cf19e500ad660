// Package session keeps the in-process mapping from opaque bearer tokens to
// authenticated users.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"medreminder/internal/models"

	"github.com/google/uuid"
)

// Config bounds the registry. A zero TTL keeps sessions until logout; a zero
// MaxSessions leaves the registry unbounded.
type Config struct {
	TTL         time.Duration
	MaxSessions int
}

type entry struct {
	user      models.User
	expiresAt time.Time // zero when the session never expires
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]entry
	cfg      Config
	now      func() time.Time
}

// Option customizes a Registry.
type Option func(*Registry)

// WithClock overrides the clock used for expiry.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates an empty Registry.
func NewRegistry(cfg Config, opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]entry),
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create binds a new random token to user. The password hash is not retained.
func (r *Registry) Create(user models.User) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	token := id.String()
	user.PasswordHash = ""

	now := r.now()
	e := entry{user: user}
	if r.cfg.TTL > 0 {
		e.expiresAt = now.Add(r.cfg.TTL)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cfg.MaxSessions > 0 && len(r.sessions) >= r.cfg.MaxSessions {
		r.evictLocked(now)
	}
	r.sessions[token] = e
	return token, nil
}

// Resolve returns the user bound to token. Blank, unknown and expired tokens
// resolve to nothing; expired ones are dropped.
func (r *Registry) Resolve(token string) (*models.User, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, false
	}

	r.mu.RLock()
	e, ok := r.sessions[token]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if e.expired(r.now()) {
		r.mu.Lock()
		// Re-check: the token may have been replaced or removed meanwhile.
		if cur, still := r.sessions[token]; still && cur.expired(r.now()) {
			delete(r.sessions, token)
		}
		r.mu.Unlock()
		return nil, false
	}

	user := e.user
	return &user, true
}

// Invalidate removes token. Unknown tokens are ignored.
func (r *Registry) Invalidate(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}

// Sweep removes every expired session and returns how many were removed.
func (r *Registry) Sweep() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token, e := range r.sessions {
		if e.expired(now) {
			delete(r.sessions, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// evictLocked makes room for one session: expired sessions go first, otherwise
// the one closest to expiry. Callers must hold the write lock.
func (r *Registry) evictLocked(now time.Time) {
	var (
		victim     string
		victimExp  time.Time
		haveVictim bool
	)
	for token, e := range r.sessions {
		if e.expired(now) {
			delete(r.sessions, token)
			continue
		}
		if !haveVictim || earlier(e.expiresAt, victimExp) {
			victim, victimExp, haveVictim = token, e.expiresAt, true
		}
	}
	if len(r.sessions) < r.cfg.MaxSessions {
		return
	}
	if haveVictim {
		delete(r.sessions, victim)
	}
}

// earlier orders expiry times with zero (never expires) last.
func earlier(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	if b.IsZero() {
		return true
	}
	return a.Before(b)
}
