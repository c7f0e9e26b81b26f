package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const defaultUploadTimeout = 60 * time.Second

// UploadResult describes one stored CDN asset.
type UploadResult struct {
	URL      string
	PublicID string
}

// Uploader pushes image bytes to the media CDN via its unsigned upload
// endpoint. Deleting CDN assets is not possible with unsigned uploads; rows
// are the source of truth and orphaned assets age out CDN-side.
type Uploader struct {
	cloudName    string
	uploadPreset string
	folder       string
	baseURL      string
	http         *http.Client
}

// NewUploader creates an uploader for the given CDN cloud.
func NewUploader(cloudName, uploadPreset, folder string) *Uploader {
	return &Uploader{
		cloudName:    strings.TrimSpace(cloudName),
		uploadPreset: strings.TrimSpace(uploadPreset),
		folder:       strings.TrimSpace(folder),
		baseURL:      "https://api.cloudinary.com",
		http:         &http.Client{Timeout: defaultUploadTimeout},
	}
}

// WithBaseURL overrides the CDN API host, used by tests.
func (u *Uploader) WithBaseURL(base string) *Uploader {
	u.baseURL = strings.TrimRight(base, "/")
	return u
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends one file as an unsigned multipart upload.
func (u *Uploader) Upload(ctx context.Context, filename string, r io.Reader) (UploadResult, error) {
	var zero UploadResult
	if u.cloudName == "" || u.uploadPreset == "" {
		return zero, fmt.Errorf("media upload is not configured")
	}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		err := writeUploadForm(form, filename, r, u.uploadPreset, u.folder)
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", u.baseURL, u.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return zero, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.http.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return zero, fmt.Errorf("decoding upload response: %w", err)
	}
	if resp.StatusCode >= 400 {
		if decoded.Error.Message != "" {
			return zero, fmt.Errorf("media upload failed: %s", decoded.Error.Message)
		}
		return zero, fmt.Errorf("media upload failed: %s", resp.Status)
	}
	if decoded.SecureURL == "" {
		return zero, fmt.Errorf("media upload returned no url")
	}

	return UploadResult{URL: decoded.SecureURL, PublicID: decoded.PublicID}, nil
}

func writeUploadForm(form *multipart.Writer, filename string, r io.Reader, preset, folder string) error {
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	if err := form.WriteField("upload_preset", preset); err != nil {
		return err
	}
	if folder != "" {
		return form.WriteField("folder", folder)
	}
	return nil
}
