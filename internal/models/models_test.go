package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1, "1.00 B"},
		{1023, "1023.00 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{5 * 1024 * 1024 * 1024, "5.00 GB"},
		{1024 * 1024 * 1024 * 1024, "1.00 TB"},
		{2048 * 1024 * 1024 * 1024 * 1024, "2048.00 TB"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatBytes(tc.in), "FormatBytes(%d)", tc.in)
	}
}

func TestFormatDate(t *testing.T) {
	day := func(h, m int) time.Time { return time.Date(2024, 3, 9, h, m, 0, 0, time.UTC) }

	assert.Equal(t, "2:05 PM", FormatDate(day(14, 5)))
	assert.Equal(t, "12:30 AM", FormatDate(day(0, 30)))
	assert.Equal(t, "12:00 PM", FormatDate(day(12, 0)))
	assert.Equal(t, "11:59 AM", FormatDate(day(11, 59)))
	assert.Equal(t, "11:07 PM", FormatDate(day(23, 7)))
}

func TestNewChannel_Validation(t *testing.T) {
	_, err := NewChannel(ChannelParams{Name: "general"})
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "id", ve.Field)

	_, err = NewChannel(ChannelParams{ID: "abc"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestNewChannel_Defaults(t *testing.T) {
	ch, err := NewChannel(ChannelParams{ID: "abc", Name: "general"})
	require.NoError(t, err)
	assert.Equal(t, DefaultExpiration, ch.Expiration)
	assert.False(t, ch.Protected)
	assert.Nil(t, ch.Password)

	ch, err = NewChannel(ChannelParams{ID: "abc", Name: "general", Password: strPtr("")})
	require.NoError(t, err)
	assert.False(t, ch.Protected, "empty hash means unprotected")

	ch, err = NewChannel(ChannelParams{ID: "abc", Name: "secret", Password: strPtr("$argon2id$...")})
	require.NoError(t, err)
	assert.True(t, ch.Protected)
}

func TestNetworkChannelName(t *testing.T) {
	assert.Equal(t, "Net 203.0.113.7", NetworkChannelName("203.0.113.7"))

	ch, err := NewChannel(ChannelParams{ID: "n1", Name: NetworkChannelName("203.0.113.7")})
	require.NoError(t, err)
	assert.True(t, ch.IsNetworkChannel())
}

func TestMessageFile_Classification(t *testing.T) {
	msg, err := NewMessage(MessageParams{
		ID: "m1",
		Files: []MessageFile{
			{ID: "f1", Name: "cat.png", MimeType: "image/png"},
			{ID: "f2", Name: "clip.mov", MimeType: "video/quicktime"},
			{ID: "f3", Name: "notes.pdf", MimeType: "application/pdf"},
			{ID: "f4", Name: "raw", MimeType: ""},
		},
	})
	require.NoError(t, err)

	assert.True(t, msg.Files[0].IsImage())
	assert.False(t, msg.Files[0].IsVideo())
	assert.True(t, msg.Files[1].IsVideo())
	assert.False(t, msg.Files[2].IsImage() || msg.Files[2].IsVideo())

	media := msg.MediaFiles()
	require.Len(t, media, 2)
	assert.Equal(t, "f1", media[0].ID)
	assert.Equal(t, "f2", media[1].ID)

	other := msg.NonMediaFiles()
	require.Len(t, other, 2)
	assert.Equal(t, "f3", other[0].ID)
	assert.Equal(t, "f4", other[1].ID)
}

func TestNewMessage_Validation(t *testing.T) {
	_, err := NewMessage(MessageParams{Content: "hi"})
	assert.True(t, IsValidation(err))

	_, err = NewMessage(MessageParams{ID: "m1", Type: MessageType(9)})
	assert.True(t, IsValidation(err))

	msg, err := NewMessage(MessageParams{ID: "m1", AvatarID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, msg.AvatarID)
	assert.NotNil(t, msg.Files)
}

func TestNewTempMessage(t *testing.T) {
	a := NewTempMessage("hello", "ana", nil)
	b := NewTempMessage("hello", "ana", nil)
	assert.Equal(t, MessageTypeTemp, a.Type)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestURLBuilder(t *testing.T) {
	b := URLBuilder{
		Endpoint:      "https://nyc.cloud.appwrite.io/v1/",
		ProjectID:     "proj",
		FilesBucket:   "message_files",
		AvatarsBucket: "profiles",
	}
	assert.Equal(t,
		"https://nyc.cloud.appwrite.io/v1/storage/buckets/message_files/files/f1/view?project=proj",
		b.FileView("f1"))
	assert.Equal(t,
		"https://nyc.cloud.appwrite.io/v1/storage/buckets/message_files/files/f1/download?project=proj",
		b.FileDownload("f1"))
	assert.Equal(t,
		"https://nyc.cloud.appwrite.io/v1/storage/buckets/profiles/files/a9/view?project=proj",
		b.Avatar("a9"))

	msg, err := NewMessage(MessageParams{ID: "m1", AvatarID: strPtr("a9"), Files: []MessageFile{{ID: "f1"}}})
	require.NoError(t, err)
	decorated := b.Decorate(msg)
	assert.Equal(t, b.Avatar("a9"), decorated.AvatarURL)
	assert.Equal(t, b.FileDownload("f1"), decorated.Files[0].DownloadURL)
	assert.Empty(t, msg.Files[0].ViewURL, "original message is left untouched")
}

func TestGroupMessages(t *testing.T) {
	base := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	mk := func(id, user string, offset time.Duration, typ MessageType) Message {
		m, err := NewMessage(MessageParams{ID: id, Username: user, CreatedAt: base.Add(offset), Type: typ})
		require.NoError(t, err)
		return m
	}

	msgs := []Message{
		mk("1", "ana", 0, MessageTypeUser),
		mk("2", "ana", time.Minute, MessageTypeUser),
		mk("3", "bo", 2*time.Minute, MessageTypeUser),
		mk("4", "ana", 3*time.Minute, MessageTypeUser),
		mk("5", "ana", 9*time.Minute, MessageTypeUser),
		mk("6", "ana", 9*time.Minute, MessageTypeSystem),
		mk("7", "ana", 10*time.Minute, MessageTypeUser),
	}

	groups := GroupMessages(msgs, DefaultGroupWindow)
	require.Len(t, groups, 6)
	assert.Len(t, groups[0].Messages, 2)
	assert.Equal(t, "bo", groups[1].Username)
	assert.Equal(t, "4", groups[2].Messages[0].ID)
	assert.Equal(t, "5", groups[3].Messages[0].ID, "outside the window starts a new group")
	assert.Equal(t, MessageTypeSystem, groups[4].Messages[0].Type)
	assert.Equal(t, "7", groups[5].Messages[0].ID)
	assert.Equal(t, base.Add(9*time.Minute), groups[3].CreatedAt)

	assert.Empty(t, GroupMessages(nil, DefaultGroupWindow))
}
