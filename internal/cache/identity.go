package cache

import (
	"context"

	"github.com/netchat/netchat/internal/models"
)

// GetUsername returns the display name the user picked, or "".
func (c *ChannelCache) GetUsername(ctx context.Context) (string, error) {
	return c.read(ctx, KeyUsername)
}

// SetUsername stores the user's display name.
func (c *ChannelCache) SetUsername(ctx context.Context, username string) error {
	return c.write(ctx, KeyUsername, username)
}

// GetAvatarID returns the id of the user's avatar, or nil when none is set.
func (c *ChannelCache) GetAvatarID(ctx context.Context) (*string, error) {
	v, err := c.read(ctx, KeyAvatarID)
	if err != nil || v == "" {
		return nil, err
	}
	return &v, nil
}

// SetAvatarID stores the user's avatar id. An empty id clears it.
func (c *ChannelCache) SetAvatarID(ctx context.Context, avatarID string) error {
	if avatarID == "" {
		if c.store == nil {
			return models.ErrStorageUnavailable
		}
		return c.store.Delete(ctx, KeyAvatarID)
	}
	return c.write(ctx, KeyAvatarID, avatarID)
}

func (c *ChannelCache) read(ctx context.Context, key string) (string, error) {
	if c.store == nil {
		return "", nil
	}
	v, _, err := c.store.Get(ctx, key)
	return v, err
}

// write fails with ErrStorageUnavailable when there is no store.
func (c *ChannelCache) write(ctx context.Context, key, value string) error {
	if c.store == nil {
		return models.ErrStorageUnavailable
	}
	return c.store.Set(ctx, key, value)
}
