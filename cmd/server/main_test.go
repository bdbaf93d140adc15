package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netchat/netchat/internal/appwrite/appwritetest"
	"github.com/netchat/netchat/internal/config"
	"github.com/netchat/netchat/internal/handlers"
	"github.com/netchat/netchat/internal/hashing"
	"github.com/netchat/netchat/internal/ipify"
	"github.com/netchat/netchat/internal/models"
	"github.com/netchat/netchat/internal/services"
)

func newTestRouter(t *testing.T) (http.Handler, *appwritetest.Store) {
	t.Helper()
	cfg := config.Defaults()
	cfg.AppwriteProjectID = "proj"
	cfg.MainChannelID = "main"

	store := appwritetest.New()
	hasher := hashing.New(hashing.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	channels := services.NewChannelService(store, hasher, ipify.Static("127.0.0.1"), cfg)
	messages := services.NewMessageService(channels, store, hasher, cfg)
	r, err := newRouter(cfg, handlers.NewChannelHandler(channels), handlers.NewMessageHandler(messages))
	require.NoError(t, err)
	return r, store
}

func TestRouter_CreateThenVerify(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/create_channel",
		strings.NewReader(`{"channelName":"secret","password":"hunter2"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var ch models.Channel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ch))
	assert.Equal(t, models.DefaultExpiration, ch.Expiration)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/verify",
		strings.NewReader(`{"channel":{"id":"`+ch.ID+`"},"pass":"hunter2"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/get_messages",
		strings.NewReader(`{"id":"`+ch.ID+`","password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_NetworkChannelHonorsForwardedFor(t *testing.T) {
	r, store := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/channels/network", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.50")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	docs := store.Documents("channels")
	require.Len(t, docs, 1)
	assert.Equal(t, "Net 203.0.113.50", docs[0]["name"])
}

func TestRouter_ThrottlesPasswordChecks(t *testing.T) {
	r, store := newTestRouter(t)
	store.Insert("channels", map[string]any{"$id": "c1", "name": "general"})

	codes := make([]int, 0, 12)
	for i := 0; i < 12; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/verify", strings.NewReader(`{"channel":{"id":"c1"},"pass":""}`))
		req.RemoteAddr = "192.0.2.8:1234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Contains(t, codes, http.StatusTooManyRequests)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/channels", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "listing is not throttled")
}

func TestRouter_ForwardedForDoesNotResetThrottle(t *testing.T) {
	r, store := newTestRouter(t)
	store.Insert("channels", map[string]any{"$id": "c1", "name": "general"})

	throttled := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/verify", strings.NewReader(`{"channel":{"id":"c1"},"pass":""}`))
		req.RemoteAddr = "192.0.2.8:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			throttled++
		}
	}
	assert.GreaterOrEqual(t, throttled, 39)
}

func TestNewRouter_RejectsBadTrustedProxy(t *testing.T) {
	cfg := config.Defaults()
	cfg.TrustedProxies = []string{"not-an-address"}
	_, err := newRouter(cfg, nil, nil)
	assert.Error(t, err)
}

func TestRouter_HealthAndUnknownRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/verify", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
