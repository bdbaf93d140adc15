package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/netchat/netchat/internal/appwrite"
	"github.com/netchat/netchat/internal/config"
	"github.com/netchat/netchat/internal/models"
)

// PageSize is the number of messages returned per page.
const PageSize = 20

// MessageService handles message retrieval for channels.
// Protected channels are checked against their password hash before any
// message is read.
type MessageService struct {
	channels             *ChannelService
	db                   DocumentStore
	hasher               PasswordHasher
	messagesCollectionID string
	urls                 models.URLBuilder
}

// NewMessageService creates a new MessageService instance.
func NewMessageService(channels *ChannelService, db DocumentStore, hasher PasswordHasher, cfg *config.Config) *MessageService {
	return &MessageService{
		channels:             channels,
		db:                   db,
		hasher:               hasher,
		messagesCollectionID: cfg.MessagesCollectionID,
		urls:                 cfg.URLBuilder(),
	}
}

// FetchPageParams selects a page of messages.
type FetchPageParams struct {
	// ChannelID is the channel to read
	ChannelID string

	// Password is checked when the channel is protected
	Password *string

	// Cursor is the id of the last message of the previous page
	Cursor *string
}

// FetchPage returns up to PageSize messages of a channel, newest first.
// A wrong password on a protected channel returns models.ErrAuthenticationFailed
// without querying any message.
func (s *MessageService) FetchPage(ctx context.Context, p FetchPageParams) ([]models.Message, error) {
	if strings.TrimSpace(p.ChannelID) == "" {
		return nil, models.NewValidationError("id", "channel id is required")
	}

	ch, err := s.channels.Get(ctx, p.ChannelID)
	if err != nil {
		return nil, err
	}

	if ch.Password != nil {
		supplied := ""
		if p.Password != nil {
			supplied = *p.Password
		}
		ok, err := s.hasher.Verify(*ch.Password, supplied)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Info().Str("channel", ch.ID).Msg("[Message] Rejected password for protected channel")
			return nil, models.ErrAuthenticationFailed
		}
	}

	queries := []appwrite.Query{
		appwrite.Equal("channels", ch.ID),
		appwrite.OrderDesc("$createdAt"),
		appwrite.Limit(PageSize),
	}
	if p.Cursor != nil && *p.Cursor != "" {
		queries = append(queries, appwrite.CursorAfter(*p.Cursor))
	}

	list, err := s.db.ListDocuments(ctx, s.messagesCollectionID, queries...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	var records []appwrite.MessageRecord
	if err := list.Decode(&records); err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(records))
	for _, r := range records {
		msg, err := r.ToMessage()
		if err != nil {
			// Skip malformed messages
			log.Warn().Err(err).Str("id", r.ID).Msg("[Message] Skipping malformed message document")
			continue
		}
		messages = append(messages, s.urls.Decorate(msg))
	}
	return messages, nil
}
