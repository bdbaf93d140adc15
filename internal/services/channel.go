package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/netchat/netchat/internal/appwrite"
	"github.com/netchat/netchat/internal/config"
	"github.com/netchat/netchat/internal/models"
)

// ChannelService handles all channel-related operations against the remote store.
type ChannelService struct {
	db            DocumentStore
	hasher        PasswordHasher
	ip            IPSource
	collectionID  string
	mainChannelID string
}

// NewChannelService creates a new ChannelService instance.
func NewChannelService(db DocumentStore, hasher PasswordHasher, ip IPSource, cfg *config.Config) *ChannelService {
	return &ChannelService{
		db:            db,
		hasher:        hasher,
		ip:            ip,
		collectionID:  cfg.ChannelsCollectionID,
		mainChannelID: cfg.MainChannelID,
	}
}

// MainChannel returns the always-present Main channel.
func (s *ChannelService) MainChannel() models.Channel {
	return models.Channel{
		ID:         s.mainChannelID,
		Name:       models.MainChannelName,
		Expiration: models.DefaultExpiration,
	}
}

// ListAll returns every public channel. Network channels are left out.
// Order is whatever the store returns.
func (s *ChannelService) ListAll(ctx context.Context) ([]models.Channel, error) {
	list, err := s.db.ListDocuments(ctx, s.collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	var records []appwrite.ChannelRecord
	if err := list.Decode(&records); err != nil {
		return nil, err
	}

	channels := make([]models.Channel, 0, len(records))
	for _, r := range records {
		if strings.HasPrefix(r.Name, models.NetworkChannelPrefix) {
			continue
		}
		ch, err := r.ToChannel()
		if err != nil {
			log.Warn().Err(err).Str("id", r.ID).Msg("[Channel] Skipping malformed channel document")
			continue
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

// Get retrieves a channel by its id, including its password hash.
func (s *ChannelService) Get(ctx context.Context, id string) (models.Channel, error) {
	if strings.TrimSpace(id) == "" {
		return models.Channel{}, models.NewValidationError("id", "channel id is required")
	}

	var record appwrite.ChannelRecord
	if err := s.db.GetDocument(ctx, s.collectionID, id, &record); err != nil {
		return models.Channel{}, fmt.Errorf("failed to get channel %s: %w", id, err)
	}
	return record.ToChannel()
}

// GetOrCreateNetworkChannel returns the channel reserved for ip, creating it
// when it does not exist yet.
//
// The lookup and the create are two separate requests. Two callers with the
// same ip racing through here can both miss and both create, leaving duplicate
// channels with the same name. Only a unique index on the name attribute in the
// store would prevent that.
func (s *ChannelService) GetOrCreateNetworkChannel(ctx context.Context, ip string) (models.Channel, error) {
	if strings.TrimSpace(ip) == "" {
		return models.Channel{}, models.NewValidationError("ip", "ip address is required")
	}
	name := models.NetworkChannelName(ip)

	list, err := s.db.ListDocuments(ctx, s.collectionID,
		appwrite.Equal("name", name),
		appwrite.Limit(1),
	)
	if err != nil {
		return models.Channel{}, fmt.Errorf("failed to look up network channel: %w", err)
	}

	var records []appwrite.ChannelRecord
	if err := list.Decode(&records); err != nil {
		return models.Channel{}, err
	}
	if list.Total > 0 && len(records) > 0 {
		return models.NewChannel(models.ChannelParams{
			ID:         records[0].ID,
			Name:       records[0].Name,
			Expiration: models.NetworkChannelExpiration,
		})
	}

	var created appwrite.ChannelRecord
	data := appwrite.ChannelData{
		Name:       name,
		Expiration: appwrite.FormatTime(models.NetworkChannelExpiration),
	}
	if err := s.db.CreateDocument(ctx, s.collectionID, appwrite.UniqueID, data, &created); err != nil {
		return models.Channel{}, fmt.Errorf("failed to create network channel: %w", err)
	}
	log.Info().Str("id", created.ID).Str("name", name).Msg("[Channel] Created network channel")

	return models.NewChannel(models.ChannelParams{
		ID:         created.ID,
		Name:       created.Name,
		Expiration: models.NetworkChannelExpiration,
	})
}

// NetworkChannel resolves the public IP through the configured source and
// returns its network channel.
func (s *ChannelService) NetworkChannel(ctx context.Context) (models.Channel, error) {
	ip, err := s.ip.PublicIP(ctx)
	if err != nil {
		return models.Channel{}, fmt.Errorf("failed to resolve public ip: %w", err)
	}
	return s.GetOrCreateNetworkChannel(ctx, ip)
}

// DefaultChannels returns the channels a new client starts with: Main and the
// network channel of the current public IP.
func (s *ChannelService) DefaultChannels(ctx context.Context) ([]models.Channel, error) {
	network, err := s.NetworkChannel(ctx)
	if err != nil {
		return nil, err
	}
	return []models.Channel{s.MainChannel(), network}, nil
}

// CreateChannelParams holds the named inputs for Create.
type CreateChannelParams struct {
	Name       string
	Password   *string
	Expiration time.Time
}

// Create stores a new channel. A non-empty password is hashed before it is
// sent; the store assigns the id.
func (s *ChannelService) Create(ctx context.Context, p CreateChannelParams) (models.Channel, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return models.Channel{}, models.NewValidationError("channelName", "channel name is required")
	}

	var hashed *string
	if p.Password != nil && *p.Password != "" {
		h, err := s.hasher.Hash(*p.Password)
		if err != nil {
			return models.Channel{}, err
		}
		hashed = &h
	}

	expiration := p.Expiration
	if expiration.IsZero() {
		expiration = models.DefaultExpiration
	}

	data := appwrite.ChannelData{
		Name:       name,
		Expiration: appwrite.FormatTime(expiration),
		Password:   hashed,
	}
	var created appwrite.ChannelRecord
	if err := s.db.CreateDocument(ctx, s.collectionID, appwrite.UniqueID, data, &created); err != nil {
		return models.Channel{}, fmt.Errorf("failed to create channel: %w", err)
	}
	log.Info().Str("id", created.ID).Bool("protected", hashed != nil).Msg("[Channel] Created channel")

	return created.ToChannel()
}

// VerifyPassword checks pass against the stored hash of a channel.
// Channels without a password accept any input.
func (s *ChannelService) VerifyPassword(ctx context.Context, channelID, pass string) (bool, error) {
	ch, err := s.Get(ctx, channelID)
	if err != nil {
		return false, err
	}
	if ch.Password == nil {
		return true, nil
	}
	return s.hasher.Verify(*ch.Password, pass)
}
