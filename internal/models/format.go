package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatDate renders the clock time of t as "h:mm AM" or "h:mm PM" in t's location.
func FormatDate(t time.Time) string {
	hour := t.Hour()
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	suffix := "PM"
	if hour < 12 {
		suffix = "AM"
	}
	return fmt.Sprintf("%d:%02d %s", hour12, t.Minute(), suffix)
}

// FormatBytes renders a byte count with a base-1024 unit and two decimals.
// Sizes beyond the terabyte range are still expressed in TB.
func FormatBytes(n int64) string {
	if n == 0 {
		return "0 B"
	}
	value := float64(n)
	unit := 0
	for (value >= 1024 || value <= -1024) && unit < len(byteUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", value, byteUnits[unit])
}

// URLBuilder derives object store URLs for attachments and avatars.
type URLBuilder struct {
	// Endpoint is the API root, e.g. https://nyc.cloud.appwrite.io/v1
	Endpoint string

	// ProjectID is appended as the project query parameter
	ProjectID string

	// FilesBucket holds message attachments
	FilesBucket string

	// AvatarsBucket holds profile pictures
	AvatarsBucket string
}

// FileView returns the inline view URL of an attachment.
func (b URLBuilder) FileView(fileID string) string {
	return b.fileURL(b.FilesBucket, fileID, "view")
}

// FileDownload returns the download URL of an attachment.
func (b URLBuilder) FileDownload(fileID string) string {
	return b.fileURL(b.FilesBucket, fileID, "download")
}

// Avatar returns the view URL of a profile picture.
func (b URLBuilder) Avatar(avatarID string) string {
	return b.fileURL(b.AvatarsBucket, avatarID, "view")
}

// Decorate fills in the derived URLs of a message and its files.
func (b URLBuilder) Decorate(m Message) Message {
	if m.AvatarID != nil {
		m.AvatarURL = b.Avatar(*m.AvatarID)
	}
	files := make([]MessageFile, len(m.Files))
	for i, f := range m.Files {
		f.ViewURL = b.FileView(f.ID)
		f.DownloadURL = b.FileDownload(f.ID)
		files[i] = f
	}
	m.Files = files
	return m
}

func (b URLBuilder) fileURL(bucket, fileID, action string) string {
	return fmt.Sprintf("%s/storage/buckets/%s/files/%s/%s?project=%s",
		strings.TrimRight(b.Endpoint, "/"),
		url.PathEscape(bucket),
		url.PathEscape(fileID),
		action,
		url.QueryEscape(b.ProjectID))
}
