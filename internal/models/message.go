package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageType classifies where a message came from.
type MessageType int

const (
	// MessageTypeUser is a message written by a chat participant
	MessageTypeUser MessageType = iota
	// MessageTypeSystem is a notice generated by the application
	MessageTypeSystem
	// MessageTypeTemp is an optimistic client-side message not yet confirmed by the store
	MessageTypeTemp
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeUser:
		return "user"
	case MessageTypeSystem:
		return "system"
	case MessageTypeTemp:
		return "temp"
	default:
		return "unknown"
	}
}

var imageMimeTypes = map[string]struct{}{
	"image/png":     {},
	"image/jpeg":    {},
	"image/gif":     {},
	"image/webp":    {},
	"image/svg+xml": {},
	"image/bmp":     {},
	"image/x-icon":  {},
}

var videoMimeTypes = map[string]struct{}{
	"video/mp4":        {},
	"video/webm":       {},
	"video/ogg":        {},
	"video/x-matroska": {},
	"video/3gpp":       {},
	"video/quicktime":  {},
}

// MessageFile is a file attached to a message.
type MessageFile struct {
	// ID is the file id in the object store bucket
	ID string `json:"id"`

	// Name is the original file name
	Name string `json:"name"`

	// MimeType drives media classification
	MimeType string `json:"mimeType"`

	// Size is the file size in bytes
	Size int64 `json:"size"`

	// ViewURL and DownloadURL are derived from the object store location
	ViewURL     string `json:"viewUrl,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// IsImage reports whether the file is a displayable image.
func (f MessageFile) IsImage() bool {
	_, ok := imageMimeTypes[f.MimeType]
	return ok
}

// IsVideo reports whether the file is a playable video.
func (f MessageFile) IsVideo() bool {
	_, ok := videoMimeTypes[f.MimeType]
	return ok
}

// IsMedia reports whether the file is an image or a video.
func (f MessageFile) IsMedia() bool {
	return f.IsImage() || f.IsVideo()
}

// Message represents a chat message read from the remote store.
// Messages are immutable once built.
type Message struct {
	// ID is the document id of the message
	ID string `json:"id"`

	// Content is the message text
	Content string `json:"content"`

	// Username is the author's display name
	Username string `json:"username"`

	// CreatedAt is the store's creation timestamp
	CreatedAt time.Time `json:"createdAt"`

	// Type tells user messages apart from system notices and optimistic messages
	Type MessageType `json:"type"`

	// AvatarID points to the author's avatar in the profiles bucket
	AvatarID *string `json:"avatarId"`

	// AvatarURL is derived from AvatarID when one is set
	AvatarURL string `json:"avatarUrl,omitempty"`

	// Files are the attachments, in upload order
	Files []MessageFile `json:"files"`
}

// MessageParams holds the named inputs for NewMessage.
type MessageParams struct {
	ID        string
	Content   string
	Username  string
	CreatedAt time.Time
	Type      MessageType
	AvatarID  *string
	Files     []MessageFile
}

// NewMessage validates params and builds a Message.
func NewMessage(p MessageParams) (Message, error) {
	if strings.TrimSpace(p.ID) == "" {
		return Message{}, NewValidationError("id", "message id is required")
	}
	if p.Type < MessageTypeUser || p.Type > MessageTypeTemp {
		return Message{}, NewValidationError("type", "unknown message type")
	}

	files := make([]MessageFile, len(p.Files))
	copy(files, p.Files)

	avatarID := p.AvatarID
	if avatarID != nil && *avatarID == "" {
		avatarID = nil
	}

	return Message{
		ID:        p.ID,
		Content:   p.Content,
		Username:  p.Username,
		CreatedAt: p.CreatedAt,
		Type:      p.Type,
		AvatarID:  avatarID,
		Files:     files,
	}, nil
}

// NewTempMessage builds an optimistic message shown before the store confirms it.
func NewTempMessage(content, username string, avatarID *string) Message {
	msg, _ := NewMessage(MessageParams{
		ID:        uuid.New().String(),
		Content:   content,
		Username:  username,
		CreatedAt: time.Now().UTC(),
		Type:      MessageTypeTemp,
		AvatarID:  avatarID,
	})
	return msg
}

// MediaFiles returns the attachments that are images or videos.
func (m Message) MediaFiles() []MessageFile {
	var out []MessageFile
	for _, f := range m.Files {
		if f.IsMedia() {
			out = append(out, f)
		}
	}
	return out
}

// NonMediaFiles returns the attachments that are neither images nor videos.
func (m Message) NonMediaFiles() []MessageFile {
	var out []MessageFile
	for _, f := range m.Files {
		if !f.IsMedia() {
			out = append(out, f)
		}
	}
	return out
}

// GetMessagesRequest is the request body for POST /api/get_messages
type GetMessagesRequest struct {
	ID          string  `json:"id"`
	Password    *string `json:"password,omitempty"`
	LastMessage *string `json:"lastMessage,omitempty"`
}

// ErrorResponse is the JSON body returned on failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
