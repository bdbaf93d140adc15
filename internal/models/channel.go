package models

import (
	"strings"
	"time"
)

// NetworkChannelPrefix marks channels that were auto-provisioned for a
// public IP address. Such channels are hidden from the public channel list.
const NetworkChannelPrefix = "Net"

// MainChannelName is the display name of the default channel every client sees.
const MainChannelName = "Main"

var (
	// DefaultExpiration is applied when a channel record carries no expiration.
	DefaultExpiration = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	// NetworkChannelExpiration is the far-future expiration given to network channels.
	NetworkChannelExpiration = time.Date(2035, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// Channel represents a named chat room, optionally protected by a password.
type Channel struct {
	// ID is the document id assigned by the remote store
	ID string `json:"id"`

	// Name is the display name of the channel
	Name string `json:"name"`

	// Expiration is the point in time after which the channel is considered stale
	Expiration time.Time `json:"expiration"`

	// Password is the encoded argon2 hash of the channel password.
	// It only ever exists server-side and is never serialized.
	Password *string `json:"-"`

	// Protected tells clients that a password is required to read messages
	Protected bool `json:"protected"`

	// SavedPassword is the password the local user remembered for this channel.
	// It lives in the local cache only and is sent solely for verification.
	SavedPassword *string `json:"savedPassword,omitempty"`
}

// ChannelParams holds the named inputs for NewChannel.
type ChannelParams struct {
	ID            string
	Name          string
	Expiration    time.Time
	Password      *string
	SavedPassword *string
}

// NewChannel validates params and builds a Channel.
// A zero Expiration falls back to DefaultExpiration.
func NewChannel(p ChannelParams) (Channel, error) {
	if strings.TrimSpace(p.ID) == "" {
		return Channel{}, NewValidationError("id", "channel id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return Channel{}, NewValidationError("name", "channel name is required")
	}

	expiration := p.Expiration
	if expiration.IsZero() {
		expiration = DefaultExpiration
	}

	password := p.Password
	if password != nil && *password == "" {
		password = nil
	}

	return Channel{
		ID:            p.ID,
		Name:          p.Name,
		Expiration:    expiration.UTC(),
		Password:      password,
		Protected:     password != nil,
		SavedPassword: p.SavedPassword,
	}, nil
}

// IsNetworkChannel reports whether the channel was auto-provisioned for an IP.
func (c Channel) IsNetworkChannel() bool {
	return strings.HasPrefix(c.Name, NetworkChannelPrefix)
}

// NetworkChannelName returns the reserved channel name for an IP address.
func NetworkChannelName(ip string) string {
	return NetworkChannelPrefix + " " + ip
}

// CreateChannelRequest is the request body for POST /api/create_channel
type CreateChannelRequest struct {
	ChannelName string  `json:"channelName"`
	Password    *string `json:"password,omitempty"`
	Expiration  string  `json:"expiration"`
}

// ChannelRef identifies a channel in a verification request.
type ChannelRef struct {
	ID string `json:"id"`
}

// VerifyRequest is the request body for POST /api/verify
type VerifyRequest struct {
	Channel ChannelRef `json:"channel"`
	Pass    string     `json:"pass"`
}
