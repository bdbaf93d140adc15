package handlers

import (
	"context"
	"net/http"
	"net/netip"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/netchat/netchat/internal/models"
)

// limiterTTL is how long an idle client address keeps its limiter.
const limiterTTL = 30 * time.Minute

// PasswordLimiter throttles password checks per client address.
//
// The address is the socket peer recorded by CapturePeer. Forwarded headers
// only count when that peer is one of the trusted proxies.
type PasswordLimiter struct {
	limit   rate.Limit
	burst   int
	trusted []netip.Prefix

	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
	lastAccess map[string]time.Time
	lastSweep  time.Time
	now        func() time.Time
}

// NewPasswordLimiter allows perSecond sustained checks per address with the
// given burst. Requests arriving from a trusted proxy are keyed on the
// forwarded client address instead of the proxy's.
func NewPasswordLimiter(perSecond float64, burst int, trusted ...netip.Prefix) *PasswordLimiter {
	return &PasswordLimiter{
		limit:      rate.Limit(perSecond),
		burst:      burst,
		trusted:    trusted,
		limiters:   make(map[string]*rate.Limiter),
		lastAccess: make(map[string]time.Time),
		now:        time.Now,
	}
}

// Allow reports whether addr may make another password check now.
func (l *PasswordLimiter) Allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > limiterTTL {
		l.sweep(now)
	}

	limiter, ok := l.limiters[addr]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[addr] = limiter
	}
	l.lastAccess[addr] = now
	return limiter.AllowN(now, 1)
}

// sweep drops limiters idle for longer than limiterTTL. Caller holds mu.
func (l *PasswordLimiter) sweep(now time.Time) {
	cutoff := now.Add(-limiterTTL)
	for addr, seen := range l.lastAccess {
		if seen.Before(cutoff) {
			delete(l.limiters, addr)
			delete(l.lastAccess, addr)
		}
	}
	l.lastSweep = now
}

// Middleware rejects requests over the limit with 429.
func (l *PasswordLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := l.clientKey(r)
		if !l.Allow(addr) {
			log.Warn().Str("ip", addr).Str("path", r.URL.Path).Msg("[RateLimit] Too many password checks")
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, models.ErrorResponse{Error: "Too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey returns the address a request is throttled under.
func (l *PasswordLimiter) clientKey(r *http.Request) string {
	peer := peerAddr(r)
	addr, err := netip.ParseAddr(peer)
	if err != nil {
		return peer
	}
	for _, p := range l.trusted {
		if p.Contains(addr.Unmap()) {
			return clientIP(r)
		}
	}
	return peer
}

type peerKey struct{}

// CapturePeer records the socket peer address. It must run before
// middleware.RealIP rewrites RemoteAddr.
func CapturePeer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), peerKey{}, hostOnly(r.RemoteAddr))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// peerAddr returns the address recorded by CapturePeer, or the current
// RemoteAddr when the request did not pass through it.
func peerAddr(r *http.Request) string {
	if peer, ok := r.Context().Value(peerKey{}).(string); ok {
		return peer
	}
	return clientIP(r)
}
