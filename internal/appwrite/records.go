package appwrite

import (
	"time"

	"github.com/netchat/netchat/internal/models"
)

// ChannelRecord is a document of the channels collection.
type ChannelRecord struct {
	ID         string  `json:"$id"`
	CreatedAt  string  `json:"$createdAt,omitempty"`
	Name       string  `json:"name"`
	Expiration *string `json:"expiration"`
	Password   *string `json:"password"`
}

// ToChannel converts the record into a Channel.
func (r ChannelRecord) ToChannel() (models.Channel, error) {
	return models.NewChannel(models.ChannelParams{
		ID:         r.ID,
		Name:       r.Name,
		Expiration: parseTime(r.Expiration),
		Password:   r.Password,
	})
}

// ChannelData is the payload written when creating a channel.
type ChannelData struct {
	Name       string  `json:"name"`
	Expiration string  `json:"expiration"`
	Password   *string `json:"password"`
}

// FileRecord describes an attachment stored in the files bucket.
type FileRecord struct {
	ID       string `json:"$id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"sizeOriginal"`
}

// MessageRecord is a document of the messages collection.
type MessageRecord struct {
	ID        string       `json:"$id"`
	CreatedAt string       `json:"$createdAt"`
	Content   string       `json:"content"`
	Username  string       `json:"username"`
	Type      int          `json:"type"`
	AvatarID  *string      `json:"avatarId"`
	Files     []FileRecord `json:"files"`
}

// ToMessage converts the record into a Message.
func (r MessageRecord) ToMessage() (models.Message, error) {
	files := make([]models.MessageFile, 0, len(r.Files))
	for _, f := range r.Files {
		files = append(files, models.MessageFile{
			ID:       f.ID,
			Name:     f.Name,
			MimeType: f.MimeType,
			Size:     f.Size,
		})
	}

	return models.NewMessage(models.MessageParams{
		ID:        r.ID,
		Content:   r.Content,
		Username:  r.Username,
		CreatedAt: parseTime(&r.CreatedAt),
		Type:      models.MessageType(r.Type),
		AvatarID:  r.AvatarID,
		Files:     files,
	})
}

// FormatTime renders a time the way the store expects datetime attributes.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime reads a datetime attribute, returning the zero time when absent or unreadable.
func parseTime(s *string) time.Time {
	if s == nil || *s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return time.Time{}
	}
	return t
}
