package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"galeria/internal/gallery"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "GALERIA_HTTP_TIMEOUT"

	imagesPath = "/rest/v1/images"
	albumsPath = "/rest/v1/albums"
)

// Client is a typed HTTP client for the hosted backend's row store and auth
// surface. It implements gallery.Remote.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client

	auth authState
}

// NewClient creates a backend client. anonKey is the service's public API
// key, sent with every request; an active session token replaces it for
// authorization once an admin signs in.
func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: strings.TrimSpace(anonKey),
		http:    &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// Ping checks whether the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("select", "id")
	query.Set("limit", "1")
	_, err := c.do(ctx, http.MethodGet, imagesPath, query, nil, nil, nil)
	return err
}

// ListImages fetches one slice of the images table, newest uploads first,
// together with the exact total for the active filter.
func (c *Client) ListImages(ctx context.Context, opts gallery.ListOptions) (gallery.ImagePage, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "uploaded_at.desc")
	if opts.AlbumID != nil {
		query.Set("album_id", "eq."+*opts.AlbumID)
	}
	if opts.Paginated() {
		query.Set("limit", strconv.Itoa(opts.PageSize))
		query.Set("offset", strconv.Itoa((opts.Page-1)*opts.PageSize))
	}

	var recs []imageRecord
	header, err := c.do(ctx, http.MethodGet, imagesPath, query, map[string]string{"Prefer": "count=exact"}, nil, &recs)
	if err != nil {
		return gallery.ImagePage{}, err
	}

	total, ok := totalFromContentRange(header.Get("Content-Range"))
	if !ok {
		total = len(recs)
	}
	return gallery.ImagePage{Items: toImages(recs), TotalCount: total}, nil
}

// ListCoverImages fetches every image currently flagged as cover.
func (c *Client) ListCoverImages(ctx context.Context) ([]gallery.Image, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("is_cover", "eq.true")

	var recs []imageRecord
	if _, err := c.do(ctx, http.MethodGet, imagesPath, query, nil, nil, &recs); err != nil {
		return nil, err
	}
	return toImages(recs), nil
}

// InsertImage creates an image row and returns the stored representation.
func (c *Client) InsertImage(ctx context.Context, title, urlStr string, albumID *string) (gallery.Image, error) {
	body := imageRecord{
		Title:      title,
		URL:        urlStr,
		AlbumID:    albumID,
		UploadedAt: time.Now().UTC(),
	}

	var recs []imageRecord
	_, err := c.do(ctx, http.MethodPost, imagesPath, nil, map[string]string{"Prefer": "return=representation"}, body, &recs)
	if err != nil {
		return gallery.Image{}, err
	}
	if len(recs) == 0 {
		return gallery.Image{}, fmt.Errorf("backend returned no representation for inserted image")
	}
	return toImage(recs[0]), nil
}

// DeleteImage removes an image row.
func (c *Client) DeleteImage(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, imagesPath, eqID(id), nil, nil, nil)
	return err
}

// UpdateImageAlbum moves an image between albums; nil clears the reference.
func (c *Client) UpdateImageAlbum(ctx context.Context, id string, albumID *string) error {
	_, err := c.do(ctx, http.MethodPatch, imagesPath, eqID(id), nil, map[string]any{"album_id": albumID}, nil)
	return err
}

// UpdateImageTitle sets a new display title.
func (c *Client) UpdateImageTitle(ctx context.Context, id, title string) error {
	_, err := c.do(ctx, http.MethodPatch, imagesPath, eqID(id), nil, map[string]any{"title": title}, nil)
	return err
}

// SetImageCover flips the cover flag on a single image.
func (c *Client) SetImageCover(ctx context.Context, id string, cover bool) error {
	_, err := c.do(ctx, http.MethodPatch, imagesPath, eqID(id), nil, map[string]any{"is_cover": cover}, nil)
	return err
}

// ListAlbums fetches all albums, newest first.
func (c *Client) ListAlbums(ctx context.Context) ([]gallery.Album, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "created_at.desc")

	var recs []albumRecord
	if _, err := c.do(ctx, http.MethodGet, albumsPath, query, nil, nil, &recs); err != nil {
		return nil, err
	}
	return toAlbums(recs), nil
}

// InsertAlbum creates an album row.
func (c *Client) InsertAlbum(ctx context.Context, name, description string) (gallery.Album, error) {
	body := albumRecord{
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	var recs []albumRecord
	_, err := c.do(ctx, http.MethodPost, albumsPath, nil, map[string]string{"Prefer": "return=representation"}, body, &recs)
	if err != nil {
		return gallery.Album{}, err
	}
	if len(recs) == 0 {
		return gallery.Album{}, fmt.Errorf("backend returned no representation for inserted album")
	}
	return toAlbum(recs[0]), nil
}

// DeleteAlbum removes an album row.
func (c *Client) DeleteAlbum(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, albumsPath, eqID(id), nil, nil, nil)
	return err
}

// UpdateAlbum sets album name and description.
func (c *Client) UpdateAlbum(ctx context.Context, id, name, description string) error {
	_, err := c.do(ctx, http.MethodPatch, albumsPath, eqID(id), nil,
		map[string]any{"name": name, "description": description}, nil)
	return err
}

// ClearAlbumImages unassigns every image of the album in one request.
func (c *Client) ClearAlbumImages(ctx context.Context, albumID string) error {
	query := url.Values{}
	query.Set("album_id", "eq."+albumID)
	_, err := c.do(ctx, http.MethodPatch, imagesPath, query, nil, map[string]any{"album_id": nil}, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, headers map[string]string, body any, out any) (http.Header, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	c.setAuthHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, err
	}
	return resp.Header, nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	if req == nil {
		return
	}
	if c.anonKey != "" {
		req.Header.Set("apikey", c.anonKey)
	}
	token := c.anonKey
	if session := c.auth.current(time.Now()); session != nil {
		token = session.AccessToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func decodeError(resp *http.Response) error {
	var errResp errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
		if errResp.Message != "" {
			return &APIError{Status: resp.StatusCode, Code: errResp.Code, Message: errResp.Message}
		}
		if errResp.ErrorDescription != "" {
			return &APIError{Status: resp.StatusCode, Code: errResp.Error, Message: errResp.ErrorDescription}
		}
	}
	return &APIError{Status: resp.StatusCode, Message: resp.Status}
}

func eqID(id string) url.Values {
	query := url.Values{}
	query.Set("id", "eq."+id)
	return query
}

// totalFromContentRange parses the trailing total of a Content-Range header,
// e.g. "0-11/25".
func totalFromContentRange(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	idx := strings.LastIndex(value, "/")
	if idx < 0 || idx == len(value)-1 {
		return 0, false
	}
	raw := value[idx+1:]
	if raw == "*" {
		return 0, false
	}
	total, err := strconv.Atoi(raw)
	if err != nil || total < 0 {
		return 0, false
	}
	return total, true
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}

// interface check
var _ gallery.Remote = (*Client)(nil)
