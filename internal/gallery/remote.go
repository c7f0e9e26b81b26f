package gallery

import "context"

// ListOptions selects a slice of the remote image collection.
// Page is 1-based; Page 0 or PageSize 0 requests the whole collection.
type ListOptions struct {
	AlbumID  *string
	Page     int
	PageSize int
}

// Paginated reports whether the options describe a bounded page.
func (o ListOptions) Paginated() bool {
	return o.Page > 0 && o.PageSize > 0
}

// ImagePage is one slice of the remote collection plus the total row count
// the server computed for the active filter.
type ImagePage struct {
	Items      []Image
	TotalCount int
}

// Remote is the hosted backend consumed by the Store. Implementations wrap
// the row store and auth surface of the backend service; the Store never
// talks HTTP itself.
type Remote interface {
	ListImages(ctx context.Context, opts ListOptions) (ImagePage, error)
	ListCoverImages(ctx context.Context) ([]Image, error)
	InsertImage(ctx context.Context, title, url string, albumID *string) (Image, error)
	DeleteImage(ctx context.Context, id string) error
	UpdateImageAlbum(ctx context.Context, id string, albumID *string) error
	UpdateImageTitle(ctx context.Context, id, title string) error
	SetImageCover(ctx context.Context, id string, cover bool) error

	ListAlbums(ctx context.Context) ([]Album, error)
	InsertAlbum(ctx context.Context, name, description string) (Album, error)
	DeleteAlbum(ctx context.Context, id string) error
	UpdateAlbum(ctx context.Context, id, name, description string) error
	// ClearAlbumImages moves every image of the album to unclassified.
	// Called before DeleteAlbum so album deletion never orphans dangling
	// references and never deletes images.
	ClearAlbumImages(ctx context.Context, albumID string) error

	Session(ctx context.Context) (*Session, error)
}
