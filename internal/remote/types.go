package remote

import (
	"time"

	"galeria/internal/gallery"
)

// imageRecord mirrors one row of the hosted images table.
type imageRecord struct {
	ID         string    `json:"id,omitempty"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	PublicID   string    `json:"public_id,omitempty"`
	AlbumID    *string   `json:"album_id"`
	IsCover    bool      `json:"is_cover,omitempty"`
	UploadedAt time.Time `json:"uploaded_at,omitempty"`
}

// albumRecord mirrors one row of the hosted albums table.
type albumRecord struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        struct {
		Email string `json:"email"`
	} `json:"user"`
}

type errorResponse struct {
	Message          string `json:"message"`
	Code             string `json:"code"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func toImage(rec imageRecord) gallery.Image {
	return gallery.Image{
		ID:         rec.ID,
		Title:      rec.Title,
		URL:        rec.URL,
		PublicID:   rec.PublicID,
		AlbumID:    rec.AlbumID,
		IsCover:    rec.IsCover,
		UploadedAt: rec.UploadedAt,
	}
}

func toImages(recs []imageRecord) []gallery.Image {
	out := make([]gallery.Image, len(recs))
	for i, rec := range recs {
		out[i] = toImage(rec)
	}
	return out
}

func toAlbum(rec albumRecord) gallery.Album {
	return gallery.Album{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
	}
}

func toAlbums(recs []albumRecord) []gallery.Album {
	out := make([]gallery.Album, len(recs))
	for i, rec := range recs {
		out[i] = toAlbum(rec)
	}
	return out
}
