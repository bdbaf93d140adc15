package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/netchat/netchat/internal/cache"
	"github.com/netchat/netchat/internal/models"
)

// Directory resolves channel ids on the client side, consulting the local
// channel cache before the remote store.
type Directory struct {
	channels *ChannelService
	cache    *cache.ChannelCache
}

// NewDirectory creates a Directory. The cache should be built with
// channels.DefaultChannels as its defaults.
func NewDirectory(channels *ChannelService, cache *cache.ChannelCache) *Directory {
	return &Directory{channels: channels, cache: cache}
}

// Resolve returns the saved channel with the given id.
//
// When no saved list exists yet the defaults are seeded and Main is returned,
// whatever id was asked for. Without client storage Main is returned as well.
// Otherwise an id that is not saved yields models.ErrNotFound.
func (d *Directory) Resolve(ctx context.Context, id string) (models.Channel, error) {
	if !d.cache.Available() {
		return d.channels.MainChannel(), nil
	}

	exists, err := d.cache.Exists(ctx)
	if err != nil {
		return models.Channel{}, err
	}
	if !exists {
		if _, err := d.cache.Seed(ctx); err != nil {
			// still usable without the defaults
			log.Warn().Err(err).Msg("[Directory] Failed to seed default channels")
		}
		return d.channels.MainChannel(), nil
	}

	ch, found, err := d.cache.Find(ctx, id)
	if err != nil {
		return models.Channel{}, err
	}
	if !found {
		return models.Channel{}, fmt.Errorf("channel %s: %w", id, models.ErrNotFound)
	}
	return ch, nil
}

// Current resolves the channel the client is looking at. An empty id means Main.
func (d *Directory) Current(ctx context.Context, id string) (models.Channel, error) {
	if id == "" {
		id = d.channels.MainChannel().ID
	}
	return d.Resolve(ctx, id)
}

// Discover fetches a channel the client has not saved yet from the remote
// store and saves it locally.
func (d *Directory) Discover(ctx context.Context, id string, savedPassword *string) (models.Channel, error) {
	ch, err := d.channels.Get(ctx, id)
	if err != nil {
		return models.Channel{}, err
	}
	ch.SavedPassword = savedPassword
	if err := d.cache.Save(ctx, ch); err != nil {
		return models.Channel{}, err
	}
	ch.Password = nil
	return ch, nil
}

// ResolveOrDiscover resolves id locally and falls back to Discover when the
// channel is not saved.
func (d *Directory) ResolveOrDiscover(ctx context.Context, id string) (models.Channel, error) {
	ch, err := d.Resolve(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return d.Discover(ctx, id, nil)
	}
	return ch, err
}
