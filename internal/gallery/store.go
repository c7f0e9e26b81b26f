package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
)

// DefaultPageSize matches the remote page size the gallery was designed
// around.
const DefaultPageSize = 12

// ErrNoSession is returned by mutations that require an authenticated admin
// session when none is active.
var ErrNoSession = errors.New("no authenticated session")

// StoreOptions configures a Store.
type StoreOptions struct {
	// PageSize bounds each load. Zero means unpaginated loads (the whole
	// collection at once, discovery mode).
	PageSize int
	// ShuffleOnLoad permutes each freshly loaded batch once, for
	// unordered-discovery presentation. Reordering an already loaded batch
	// is a separate explicit operation, Shuffle.
	ShuffleOnLoad bool
	Logger        *slog.Logger
}

type loadKey struct {
	page  int
	album string
}

// Store is the single authoritative in-memory view of images and albums for
// one UI session. All reads and writes go through the remote backend; local
// state is only ever replaced by re-fetching, never patched in place, so
// server-computed fields (counts, ordering) cannot diverge.
//
// Loads are deduplicated per (page, filter) key, and every load carries a
// monotonic token; a response is discarded unless its token is the latest
// issued, so a stale response can never overwrite fresher state.
type Store struct {
	remote        Remote
	logger        *slog.Logger
	pageSize      int
	shuffleOnLoad bool

	mu          sync.Mutex
	images      []Image
	albums      []Album
	cover       *Image
	totalImages int
	page        int
	albumFilter *string
	inflight    map[loadKey]int
	loadSeq     uint64
	initialized bool
}

// NewStore creates an empty store backed by the given remote.
func NewStore(remote Remote, opts StoreOptions) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pageSize := opts.PageSize
	if pageSize < 0 {
		pageSize = 0
	}
	return &Store{
		remote:        remote,
		logger:        logger.With("component", "gallery"),
		pageSize:      pageSize,
		shuffleOnLoad: opts.ShuffleOnLoad,
		page:          1,
		inflight:      make(map[loadKey]int),
	}
}

// LoadAll fetches images for the given album filter (nil means unfiltered)
// plus the album list and the cover image. A load already in flight for the
// same page and filter causes the call to be dropped; the in-flight load's
// eventual state update serves both callers. Loads for a different page or
// filter are never dropped.
func (s *Store) LoadAll(ctx context.Context, albumID *string) {
	s.mu.Lock()
	s.albumFilter = copyRef(albumID)
	key := s.loadKeyLocked()
	if s.inflight[key] > 0 {
		s.mu.Unlock()
		s.logger.Debug("load dropped, identical load in flight", "page", key.page, "album", key.album)
		return
	}
	token, opts := s.beginLoadLocked(key)
	s.mu.Unlock()

	s.fetchAndApply(ctx, token, key, opts)
}

// reload refreshes the current page and filter after a successful mutation.
// It bypasses the duplicate-load drop so a refresh always fires, but still
// participates in token ordering.
func (s *Store) reload(ctx context.Context) {
	s.mu.Lock()
	key := s.loadKeyLocked()
	token, opts := s.beginLoadLocked(key)
	s.mu.Unlock()

	s.fetchAndApply(ctx, token, key, opts)
}

// beginLoadLocked registers an in-flight fetch. The per-key count tracks
// overlapping fetches for the same key (a reload racing a LoadAll), so the
// entry survives until the last one completes.
func (s *Store) beginLoadLocked(key loadKey) (uint64, ListOptions) {
	s.inflight[key]++
	s.loadSeq++
	opts := ListOptions{AlbumID: copyRef(s.albumFilter)}
	if s.pageSize > 0 {
		opts.Page = s.page
		opts.PageSize = s.pageSize
	}
	return s.loadSeq, opts
}

func (s *Store) loadKeyLocked() loadKey {
	key := loadKey{page: s.page}
	if s.albumFilter != nil {
		key.album = *s.albumFilter
	}
	return key
}

// fetchAndApply performs the three remote reads in parallel and applies the
// result if the load is still the latest issued. Read failures are logged
// and swallowed; the previous state stays visible rather than blanking the
// UI.
func (s *Store) fetchAndApply(ctx context.Context, token uint64, key loadKey, opts ListOptions) {
	var (
		wg        sync.WaitGroup
		page      ImagePage
		albums    []Album
		covers    []Image
		pageErr   error
		albumsErr error
		coverErr  error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		page, pageErr = s.remote.ListImages(ctx, opts)
	}()
	go func() {
		defer wg.Done()
		albums, albumsErr = s.remote.ListAlbums(ctx)
	}()
	go func() {
		defer wg.Done()
		covers, coverErr = s.remote.ListCoverImages(ctx)
	}()
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if n := s.inflight[key]; n > 1 {
		s.inflight[key] = n - 1
	} else {
		delete(s.inflight, key)
	}

	if token != s.loadSeq {
		s.logger.Debug("stale load discarded", "token", token, "latest", s.loadSeq)
		return
	}

	if pageErr != nil {
		s.logger.Error("loading images failed", "error", pageErr, "page", key.page, "album", key.album)
	} else {
		s.initialized = true
		items := page.Items
		if items == nil {
			items = []Image{}
		}
		if s.shuffleOnLoad {
			shuffleImages(items)
		}
		s.images = items
		s.totalImages = page.TotalCount
	}

	if albumsErr != nil {
		s.logger.Error("loading albums failed", "error", albumsErr)
	} else if albums != nil {
		s.albums = albums
	} else {
		s.albums = []Album{}
	}

	if coverErr != nil {
		s.logger.Error("loading cover image failed", "error", coverErr)
	} else if len(covers) > 0 {
		img := covers[0]
		s.cover = &img
	} else {
		s.cover = nil
	}
}

// AddImage records an already uploaded image. The URL must come from a prior
// media upload; the store never moves bytes itself. A blank title falls back
// to the caller-supplied default, typically the source filename.
func (s *Store) AddImage(ctx context.Context, title, fallbackTitle, url string, albumID *string) (Image, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSpace(fallbackTitle)
	}
	if url == "" {
		return Image{}, fmt.Errorf("image url is required")
	}

	img, err := s.remote.InsertImage(ctx, title, url, albumID)
	if err != nil {
		s.logger.Error("adding image failed", "title", title, "error", err)
		return Image{}, err
	}
	s.reload(ctx)
	return img, nil
}

// DeleteImage removes the image and refreshes the current slice. The cover
// reference is re-resolved by the reload, so deleting the cover image never
// leaves a stale reference behind.
func (s *Store) DeleteImage(ctx context.Context, id string) error {
	if err := s.remote.DeleteImage(ctx, id); err != nil {
		s.logger.Error("deleting image failed", "id", id, "error", err)
		return err
	}
	s.reload(ctx)
	return nil
}

// AddAlbum creates an album. The name is required.
func (s *Store) AddAlbum(ctx context.Context, name, description string) (Album, error) {
	name, err := ValidateAlbumName(name)
	if err != nil {
		return Album{}, err
	}
	album, err := s.remote.InsertAlbum(ctx, name, description)
	if err != nil {
		s.logger.Error("adding album failed", "name", name, "error", err)
		return Album{}, err
	}
	s.reload(ctx)
	return album, nil
}

// DeleteAlbum moves the album's images to unclassified, deletes the album,
// and clears the active filter when it pointed at the deleted album.
func (s *Store) DeleteAlbum(ctx context.Context, id string) error {
	if err := s.remote.ClearAlbumImages(ctx, id); err != nil {
		s.logger.Error("unassigning album images failed", "album", id, "error", err)
		return err
	}
	if err := s.remote.DeleteAlbum(ctx, id); err != nil {
		s.logger.Error("deleting album failed", "album", id, "error", err)
		return err
	}

	s.mu.Lock()
	if s.albumFilter != nil && *s.albumFilter == id {
		s.albumFilter = nil
		s.page = 1
	}
	s.mu.Unlock()

	s.reload(ctx)
	return nil
}

// ReassignImageAlbum moves an image to another album, or to unclassified
// when albumID is nil.
func (s *Store) ReassignImageAlbum(ctx context.Context, imageID string, albumID *string) error {
	if err := s.remote.UpdateImageAlbum(ctx, imageID, albumID); err != nil {
		s.logger.Error("reassigning image failed", "id", imageID, "error", err)
		return err
	}
	s.reload(ctx)
	return nil
}

// RenameImage updates an image title. Requires an active session; the check
// happens immediately before the write and its absence is a hard failure.
func (s *Store) RenameImage(ctx context.Context, imageID, newTitle string) error {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return fmt.Errorf("image title is required")
	}
	if err := s.requireSession(ctx); err != nil {
		return err
	}
	if err := s.remote.UpdateImageTitle(ctx, imageID, newTitle); err != nil {
		s.logger.Error("renaming image failed", "id", imageID, "error", err)
		return err
	}
	s.reload(ctx)
	return nil
}

// RenameAlbum updates album name and description. Requires an active session.
func (s *Store) RenameAlbum(ctx context.Context, albumID, newName, newDescription string) error {
	newName, err := ValidateAlbumName(newName)
	if err != nil {
		return err
	}
	if err := s.requireSession(ctx); err != nil {
		return err
	}
	if err := s.remote.UpdateAlbum(ctx, albumID, newName, newDescription); err != nil {
		s.logger.Error("renaming album failed", "id", albumID, "error", err)
		return err
	}
	s.reload(ctx)
	return nil
}

// SetCoverImage flags the image as the gallery cover. At most one image may
// hold the flag: any current holder is cleared as part of the same logical
// operation, so two consecutive sets leave exactly the later image flagged.
func (s *Store) SetCoverImage(ctx context.Context, imageID string) error {
	covers, err := s.remote.ListCoverImages(ctx)
	if err != nil {
		s.logger.Error("resolving current cover failed", "error", err)
		return err
	}
	for _, current := range covers {
		if current.ID == imageID {
			continue
		}
		if err := s.remote.SetImageCover(ctx, current.ID, false); err != nil {
			s.logger.Error("clearing previous cover failed", "id", current.ID, "error", err)
			return err
		}
	}
	if err := s.remote.SetImageCover(ctx, imageID, true); err != nil {
		s.logger.Error("setting cover failed", "id", imageID, "error", err)
		return err
	}
	s.reload(ctx)
	return nil
}

// ClearCoverImage removes the cover flag from the image.
func (s *Store) ClearCoverImage(ctx context.Context, imageID string) error {
	if err := s.remote.SetImageCover(ctx, imageID, false); err != nil {
		s.logger.Error("clearing cover failed", "id", imageID, "error", err)
		return err
	}
	s.reload(ctx)
	return nil
}

// FilterByAlbum sets the active album filter, resets pagination to the first
// page, and triggers a reload. Resetting the page first avoids requesting an
// out-of-range page against a smaller filtered set.
func (s *Store) FilterByAlbum(ctx context.Context, albumID *string) {
	s.mu.Lock()
	s.page = 1
	s.mu.Unlock()
	s.LoadAll(ctx, albumID)
}

// SetPage navigates to the given page, clamped to the valid range, and
// triggers a reload.
func (s *Store) SetPage(ctx context.Context, page int) {
	s.mu.Lock()
	if page < 1 {
		page = 1
	}
	if total := s.totalPagesLocked(); total > 0 && page > total {
		page = total
	}
	s.page = page
	filter := copyRef(s.albumFilter)
	s.mu.Unlock()
	s.LoadAll(ctx, filter)
}

// Shuffle permutes the currently held images in place without issuing a new
// remote fetch.
func (s *Store) Shuffle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	shuffleImages(s.images)
}

func (s *Store) requireSession(ctx context.Context) error {
	session, err := s.remote.Session(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrNoSession
	}
	return nil
}

// Images returns a copy of the currently loaded image slice.
func (s *Store) Images() []Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Image, len(s.images))
	copy(out, s.images)
	return out
}

// Albums returns a copy of the loaded album list.
func (s *Store) Albums() []Album {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Album, len(s.albums))
	copy(out, s.albums)
	return out
}

// Cover returns the current cover image, or nil when none is flagged.
func (s *Store) Cover() *Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRef(s.cover)
}

// Page returns the current 1-based page number.
func (s *Store) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// PageSize returns the configured page size; zero means unpaginated.
func (s *Store) PageSize() int {
	return s.pageSize
}

// TotalImages returns the server-computed total for the active filter.
func (s *Store) TotalImages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalImages
}

// TotalPages derives the page count from the total and the page size.
func (s *Store) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPagesLocked()
}

func (s *Store) totalPagesLocked() int {
	if s.pageSize <= 0 {
		if s.totalImages > 0 {
			return 1
		}
		return 0
	}
	return (s.totalImages + s.pageSize - 1) / s.pageSize
}

// AlbumFilter returns the active album filter, nil when unfiltered.
func (s *Store) AlbumFilter() *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRef(s.albumFilter)
}

// Loading reports whether any load is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight) > 0
}

// Initialized reports whether an image load has succeeded at least once. A
// store whose every load failed stays uninitialized, so callers gating on it
// keep retrying instead of presenting an empty collection as final.
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func shuffleImages(images []Image) {
	rand.Shuffle(len(images), func(i, j int) {
		images[i], images[j] = images[j], images[i]
	})
}

func copyRef[T any](v *T) *T {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
