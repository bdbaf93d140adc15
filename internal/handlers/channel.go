package handlers

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/netchat/netchat/internal/models"
	"github.com/netchat/netchat/internal/services"
)

// ChannelHandler contains HTTP handlers for channel operations.
type ChannelHandler struct {
	channelService *services.ChannelService
}

// NewChannelHandler creates a new ChannelHandler instance.
func NewChannelHandler(channelService *services.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

// CreateChannel handles POST /api/create_channel
// Stores a new channel, hashing its password when one is given.
func (h *ChannelHandler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChannelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var expiration time.Time
	if req.Expiration != "" {
		parsed, err := time.Parse(time.RFC3339Nano, req.Expiration)
		if err != nil {
			writeError(w, r, models.NewValidationError("expiration", "must be an RFC 3339 timestamp"))
			return
		}
		expiration = parsed
	}

	channel, err := h.channelService.Create(r.Context(), services.CreateChannelParams{
		Name:       req.ChannelName,
		Password:   req.Password,
		Expiration: expiration,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, channel)
}

// ListChannels handles GET /api/channels
// Returns every public channel. Network channels are not listed.
func (h *ChannelHandler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.channelService.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, channels)
}

// NetworkChannel handles GET /api/channels/network
// Returns the channel shared by everyone behind the caller's public IP.
func (h *ChannelHandler) NetworkChannel(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	channel, err := h.channelService.GetOrCreateNetworkChannel(r.Context(), ip)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Debug().Str("ip", ip).Str("id", channel.ID).Msg("[Channel] Resolved network channel")
	writeJSON(w, http.StatusOK, channel)
}

// Verify handles POST /api/verify
// Answers true or false as text/plain. The password hash never leaves the server.
func (h *ChannelHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ok, err := h.channelService.VerifyPassword(r.Context(), req.Channel.ID, req.Pass)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if ok {
		w.Write([]byte("true"))
	} else {
		w.Write([]byte("false"))
	}
}

// clientIP returns the caller address. middleware.RealIP has already replaced
// RemoteAddr with the forwarded address when the proxy sent one.
func clientIP(r *http.Request) string {
	return hostOnly(r.RemoteAddr)
}

// hostOnly strips the port from a RemoteAddr value.
func hostOnly(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return strings.TrimSpace(remoteAddr)
	}
	return host
}
