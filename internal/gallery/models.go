package gallery

import (
	"fmt"
	"strings"
	"time"
)

// Image is one gallery photo. Bytes live in the media CDN; this record only
// carries metadata and the delivery URL.
type Image struct {
	ID         string
	Title      string
	URL        string
	PublicID   string
	UploadedAt time.Time
	AlbumID    *string
	IsCover    bool
}

// InAlbum reports whether the image belongs to the given album.
func (i Image) InAlbum(albumID string) bool {
	return i.AlbumID != nil && *i.AlbumID == albumID
}

// Unclassified reports whether the image has no album reference.
func (i Image) Unclassified() bool {
	return i.AlbumID == nil
}

// Album groups images for presentation. Deleting an album never deletes its
// images; they become unclassified.
type Album struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// ValidateAlbumName checks the album-name requirement shared by create and
// rename operations.
func ValidateAlbumName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("album name is required")
	}
	return name, nil
}

// Session is an authenticated admin session issued by the remote auth service.
type Session struct {
	AccessToken string
	Email       string
	ExpiresAt   time.Time
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
