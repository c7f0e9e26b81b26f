package web

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"galeria/internal/media"
)

// handleMedia serves a sized variant of a CDN image, caching the bytes
// locally so repeat views skip the upstream fetch.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	quality, ok := media.ParseQuality(r.PathValue("quality"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	src := r.URL.Query().Get("src")
	if err := validateMediaSource(src); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	variant := media.VariantURL(src, quality)

	if s.cache != nil {
		rc, hit, err := s.cache.Open(ctx, variant)
		if err != nil {
			s.log().Warn("media cache read failed", "url", variant, "error", err)
		} else if hit {
			defer rc.Close()
			s.writeMedia(w, variant, rc)
			return
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, variant, nil)
	if err != nil {
		http.Error(w, "bad media url", http.StatusBadRequest)
		return
	}
	resp, err := s.fetch.Do(req)
	if err != nil {
		s.log().Error("fetching media failed", "url", variant, "error", err)
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.log().Error("upstream media error", "url", variant, "status", resp.StatusCode)
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
		return
	}

	if s.cache == nil {
		s.writeMedia(w, variant, resp.Body)
		return
	}

	if _, err := s.cache.Put(ctx, variant, resp.Body); err != nil {
		s.log().Warn("media cache write failed", "url", variant, "error", err)
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
		return
	}
	rc, hit, err := s.cache.Open(ctx, variant)
	if err != nil || !hit {
		s.log().Error("media cache readback failed", "url", variant, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer rc.Close()
	s.writeMedia(w, variant, rc)
}

func (s *Server) writeMedia(w http.ResponseWriter, variantURL string, r io.Reader) {
	w.Header().Set("Content-Type", mediaContentType(variantURL))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, r); err != nil {
		s.log().Debug("writing media response failed", "error", err)
	}
}

func validateMediaSource(src string) error {
	if src == "" {
		return fmt.Errorf("src parameter is required")
	}
	u, err := url.Parse(src)
	if err != nil {
		return fmt.Errorf("invalid src url")
	}
	if u.Scheme != "https" {
		return fmt.Errorf("src must be an https url")
	}
	if !strings.Contains(u.Path, "/upload/") {
		return fmt.Errorf("src is not a delivery url")
	}
	return nil
}

func mediaContentType(variantURL string) string {
	switch strings.ToLower(path.Ext(variantURL)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".avif":
		return "image/avif"
	case ".svg":
		return "image/svg+xml"
	default:
		return "image/jpeg"
	}
}
