package web

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Public views.
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /shuffle", s.handleShuffle)
	mux.HandleFunc("GET /gallery", s.handleGallery)
	mux.HandleFunc("GET /albums", s.handleAlbums)
	mux.HandleFunc("POST /view-mode", s.handleViewMode)

	// Auth.
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	// Media delivery via the variant cache.
	mux.HandleFunc("GET /media/{quality}", s.handleMedia)

	// Admin, session-gated.
	mux.Handle("GET /admin", s.requireAdmin(http.HandlerFunc(s.handleAdmin)))
	mux.Handle("POST /admin/images", s.requireAdmin(http.HandlerFunc(s.handleUploadImage)))
	mux.Handle("POST /admin/images/{id}/delete", s.requireAdmin(http.HandlerFunc(s.handleDeleteImage)))
	mux.Handle("POST /admin/images/{id}/move", s.requireAdmin(http.HandlerFunc(s.handleMoveImage)))
	mux.Handle("POST /admin/images/{id}/title", s.requireAdmin(http.HandlerFunc(s.handleRenameImage)))
	mux.Handle("POST /admin/images/{id}/cover", s.requireAdmin(http.HandlerFunc(s.handleSetCover)))
	mux.Handle("POST /admin/images/{id}/cover/clear", s.requireAdmin(http.HandlerFunc(s.handleClearCover)))
	mux.Handle("POST /admin/albums", s.requireAdmin(http.HandlerFunc(s.handleCreateAlbum)))
	mux.Handle("POST /admin/albums/{id}/delete", s.requireAdmin(http.HandlerFunc(s.handleDeleteAlbum)))
	mux.Handle("POST /admin/albums/{id}/rename", s.requireAdmin(http.HandlerFunc(s.handleRenameAlbum)))

	mux.HandleFunc("GET /health", s.handleHealth)

	return s.withRequestLogging(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
