package web

import (
	"bytes"
	"net/http"
	"strconv"

	"galeria/internal/prefs"
)

// renderPage buffers template output so a render failure becomes a clean 500
// instead of a half-written page.
func (s *Server) renderPage(w http.ResponseWriter, status int, page string, data map[string]any) {
	var buf bytes.Buffer
	if err := s.templates.render(&buf, page, data); err != nil {
		s.log().Error("rendering page failed", "page", page, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) pageData(r *http.Request) map[string]any {
	data := make(map[string]any)
	if email, ok := s.currentAdmin(r); ok {
		data["Admin"] = email
	} else {
		data["Admin"] = ""
	}
	return data
}

func (s *Server) viewMode() string {
	if s.prefs == nil {
		return prefs.ViewModeGrid
	}
	return s.prefs.ViewMode()
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.discovery.Initialized() {
		s.discovery.LoadAll(ctx, nil)
	}

	data := s.pageData(r)
	data["Cover"] = s.discovery.Cover()
	data["Images"] = s.discovery.Images()
	s.renderPage(w, http.StatusOK, "home.html", data)
}

func (s *Server) handleShuffle(w http.ResponseWriter, r *http.Request) {
	if s.discovery.Initialized() {
		s.discovery.Shuffle()
	} else {
		s.discovery.LoadAll(r.Context(), nil)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	album := query.Get("album")
	var albumID *string
	if album != "" {
		albumID = &album
	}

	current := ""
	if f := s.browse.AlbumFilter(); f != nil {
		current = *f
	}

	page, pageErr := strconv.Atoi(query.Get("page"))
	switch {
	case album != current:
		s.browse.FilterByAlbum(ctx, albumID)
		if pageErr == nil && page > 1 {
			s.browse.SetPage(ctx, page)
		}
	case pageErr == nil && page != s.browse.Page():
		s.browse.SetPage(ctx, page)
	default:
		s.browse.LoadAll(ctx, albumID)
	}

	data := s.pageData(r)
	data["Images"] = s.browse.Images()
	data["Albums"] = s.browse.Albums()
	data["Page"] = s.browse.Page()
	data["TotalPages"] = s.browse.TotalPages()
	data["ActiveAlbum"] = album
	data["ViewMode"] = s.viewMode()
	s.renderPage(w, http.StatusOK, "gallery.html", data)
}

func (s *Server) handleAlbums(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.browse.Initialized() {
		s.browse.LoadAll(ctx, s.browse.AlbumFilter())
	}

	data := s.pageData(r)
	data["Albums"] = s.browse.Albums()
	s.renderPage(w, http.StatusOK, "albums.html", data)
}

func (s *Server) handleViewMode(w http.ResponseWriter, r *http.Request) {
	mode := r.FormValue("mode")
	if s.prefs != nil {
		if err := s.prefs.SetViewMode(mode); err != nil {
			s.log().Warn("saving view mode failed", "mode", mode, "error", err)
		}
	}

	target := r.Header.Get("Referer")
	if target == "" {
		target = "/gallery"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
