// Package cache keeps the list of channels a user has joined, plus the user's
// chosen display identity, in client-local storage.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/netchat/netchat/internal/models"
	"github.com/netchat/netchat/internal/storage"
)

// Storage keys.
const (
	KeySavedChannels = "saved_channels"
	KeyUsername      = "username"
	KeyAvatarID      = "avatar_id"
)

// DefaultsFunc computes the channels a fresh client starts with.
type DefaultsFunc func(ctx context.Context) ([]models.Channel, error)

// ChannelCache is the saved channel list of one client.
// A nil store means client storage is unavailable; every operation then falls
// back to computed defaults or becomes a no-op.
type ChannelCache struct {
	store    storage.Scoped
	defaults DefaultsFunc
}

// NewChannelCache creates a cache over store, which may be nil.
func NewChannelCache(store storage.Scoped, defaults DefaultsFunc) *ChannelCache {
	return &ChannelCache{store: store, defaults: defaults}
}

// Available reports whether a backing store is present.
func (c *ChannelCache) Available() bool {
	return c.store != nil
}

// load returns the cached list and whether a cache entry exists at all.
func (c *ChannelCache) load(ctx context.Context) ([]models.Channel, bool, error) {
	if c.store == nil {
		return nil, false, models.ErrStorageUnavailable
	}
	raw, ok, err := c.store.Get(ctx, KeySavedChannels)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read saved channels: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	var channels []models.Channel
	if err := json.Unmarshal([]byte(raw), &channels); err != nil {
		return nil, false, fmt.Errorf("failed to parse saved channels: %w", err)
	}
	return channels, true, nil
}

func (c *ChannelCache) persist(ctx context.Context, channels []models.Channel) error {
	if channels == nil {
		channels = []models.Channel{}
	}
	data, err := json.Marshal(channels)
	if err != nil {
		return fmt.Errorf("failed to encode saved channels: %w", err)
	}
	if err := c.store.Set(ctx, KeySavedChannels, string(data)); err != nil {
		return fmt.Errorf("failed to write saved channels: %w", err)
	}
	return nil
}

// Exists reports whether a saved channel list has been written yet.
func (c *ChannelCache) Exists(ctx context.Context) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	_, ok, err := c.store.Get(ctx, KeySavedChannels)
	return ok, err
}

// Seed computes the default channels and persists them.
func (c *ChannelCache) Seed(ctx context.Context) ([]models.Channel, error) {
	channels, err := c.defaults(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute default channels: %w", err)
	}
	if c.store == nil {
		return channels, nil
	}
	if err := c.persist(ctx, channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// GetAll returns the saved channels. When nothing is cached yet the defaults
// are computed and persisted; without storage they are only computed.
func (c *ChannelCache) GetAll(ctx context.Context) ([]models.Channel, error) {
	if c.store == nil {
		log.Debug().Msg("[Cache] storage unavailable, using default channels")
		return c.defaults(ctx)
	}

	channels, ok, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return channels, nil
	}
	return c.Seed(ctx)
}

// Find returns the first saved channel with the given id. found is false when
// the channel is not saved or storage is unavailable.
func (c *ChannelCache) Find(ctx context.Context, id string) (ch models.Channel, found bool, err error) {
	if c.store == nil {
		return models.Channel{}, false, nil
	}
	channels, _, err := c.load(ctx)
	if err != nil {
		return models.Channel{}, false, err
	}
	for _, saved := range channels {
		if saved.ID == id {
			return saved, true, nil
		}
	}
	return models.Channel{}, false, nil
}

// IsSaved reports whether a channel with the same id is in the saved list.
func (c *ChannelCache) IsSaved(ctx context.Context, channel models.Channel) (bool, error) {
	channels, err := c.GetAll(ctx)
	if err != nil {
		return false, err
	}
	for _, saved := range channels {
		if saved.ID == channel.ID {
			return true, nil
		}
	}
	return false, nil
}

// Save appends channel to the saved list, starting from the defaults when no
// list exists yet. Saving an id twice stores it twice.
func (c *ChannelCache) Save(ctx context.Context, channel models.Channel) error {
	if c.store == nil {
		log.Debug().Str("channel", channel.ID).Msg("[Cache] storage unavailable, save skipped")
		return nil
	}

	channels, ok, err := c.load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		if channels, err = c.defaults(ctx); err != nil {
			return fmt.Errorf("failed to compute default channels: %w", err)
		}
	}

	// the hash never leaves the server side
	channel.Password = nil
	channels = append(channels, channel)
	return c.persist(ctx, channels)
}

// Unsave removes the first saved entry with the channel's id. It does nothing
// when no list exists or the id is not in it.
func (c *ChannelCache) Unsave(ctx context.Context, channel models.Channel) error {
	if c.store == nil {
		log.Debug().Str("channel", channel.ID).Msg("[Cache] storage unavailable, unsave skipped")
		return nil
	}

	channels, ok, err := c.load(ctx)
	if err != nil || !ok {
		return err
	}
	for i, saved := range channels {
		if saved.ID == channel.ID {
			channels = append(channels[:i], channels[i+1:]...)
			return c.persist(ctx, channels)
		}
	}
	return nil
}

// GetPassword returns the password remembered for a saved channel, or "".
func (c *ChannelCache) GetPassword(ctx context.Context, id string) (string, error) {
	ch, found, err := c.Find(ctx, id)
	if err != nil || !found || ch.SavedPassword == nil {
		return "", err
	}
	return *ch.SavedPassword, nil
}
