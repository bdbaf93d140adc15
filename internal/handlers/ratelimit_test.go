package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func TestPasswordLimiter_PerAddress(t *testing.T) {
	l := NewPasswordLimiter(1, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "other addresses have their own budget")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestPasswordLimiter_SweepsIdleAddresses(t *testing.T) {
	l := NewPasswordLimiter(1, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.1")
	now = now.Add(limiterTTL + time.Minute)
	l.Allow("10.0.0.2")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.limiters, "10.0.0.1")
	assert.Contains(t, l.limiters, "10.0.0.2")
}

func TestPasswordLimiter_Middleware(t *testing.T) {
	l := NewPasswordLimiter(0.001, 1)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/verify", nil)
	req.RemoteAddr = "192.0.2.4:4000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests"}`, rec.Body.String())
}

// throttledChain mounts the limiter the way the server does: peer capture,
// then RealIP, then the limiter.
func throttledChain(l *PasswordLimiter) http.Handler {
	return CapturePeer(middleware.RealIP(l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))))
}

func TestPasswordLimiter_IgnoresRotatingForwardedFor(t *testing.T) {
	l := NewPasswordLimiter(1, 10)
	h := throttledChain(l)

	throttled := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/verify", nil)
		req.RemoteAddr = "192.0.2.8:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			throttled++
		}
	}
	assert.GreaterOrEqual(t, throttled, 39)

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Len(t, l.limiters, 1, "one bucket for the one peer")
}

func TestPasswordLimiter_TrustedProxyForwardsClient(t *testing.T) {
	l := NewPasswordLimiter(0.001, 1, netip.MustParsePrefix("10.0.0.0/8"))
	h := throttledChain(l)

	send := func(peer, forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/verify", nil)
		req.RemoteAddr = peer
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("10.1.2.3:443", "203.0.113.1"))
	assert.Equal(t, http.StatusNoContent, send("10.1.2.3:443", "203.0.113.2"), "distinct clients behind the proxy")
	assert.Equal(t, http.StatusTooManyRequests, send("10.1.2.3:443", "203.0.113.1"))

	assert.Equal(t, http.StatusNoContent, send("192.0.2.9:5000", "203.0.113.3"))
	assert.Equal(t, http.StatusTooManyRequests, send("192.0.2.9:5000", "203.0.113.4"), "untrusted peer keyed on itself")
}
