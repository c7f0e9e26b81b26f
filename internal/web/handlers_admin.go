package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"galeria/internal/gallery"
)

const maxUploadBytes = 32 << 20

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	if page, err := strconv.Atoi(query.Get("page")); err == nil && page != s.browse.Page() {
		s.browse.SetPage(ctx, page)
	} else {
		s.browse.LoadAll(ctx, s.browse.AlbumFilter())
	}

	data := s.pageData(r)
	data["Images"] = s.browse.Images()
	data["Albums"] = s.browse.Albums()
	data["Page"] = s.browse.Page()
	data["TotalPages"] = s.browse.TotalPages()
	data["Error"] = query.Get("error")
	s.renderPage(w, http.StatusOK, "admin.html", data)
}

// finishMutation refreshes the discovery store so the landing page reflects
// the change, then sends the admin back to the dashboard. A failed mutation
// carries its message in the redirect for inline display.
func (s *Server) finishMutation(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		if errors.Is(err, gallery.ErrNoSession) {
			s.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		s.log().Error("admin mutation failed", "path", r.URL.Path, "error", err)
		http.Redirect(w, r, "/admin?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	s.discovery.LoadAll(r.Context(), nil)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func formAlbumID(r *http.Request) *string {
	album := strings.TrimSpace(r.FormValue("album"))
	if album == "" {
		return nil
	}
	return &album
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.finishMutation(w, r, err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.finishMutation(w, r, err)
		return
	}
	defer file.Close()

	result, err := s.uploader.Upload(ctx, header.Filename, file)
	if err != nil {
		s.finishMutation(w, r, err)
		return
	}

	_, err = s.browse.AddImage(ctx, r.FormValue("title"), header.Filename, result.URL, formAlbumID(r))
	s.finishMutation(w, r, err)
}

func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	err := s.browse.DeleteImage(r.Context(), r.PathValue("id"))
	s.finishMutation(w, r, err)
}

func (s *Server) handleMoveImage(w http.ResponseWriter, r *http.Request) {
	err := s.browse.ReassignImageAlbum(r.Context(), r.PathValue("id"), formAlbumID(r))
	s.finishMutation(w, r, err)
}

func (s *Server) handleRenameImage(w http.ResponseWriter, r *http.Request) {
	err := s.browse.RenameImage(r.Context(), r.PathValue("id"), r.FormValue("title"))
	s.finishMutation(w, r, err)
}

func (s *Server) handleSetCover(w http.ResponseWriter, r *http.Request) {
	err := s.browse.SetCoverImage(r.Context(), r.PathValue("id"))
	s.finishMutation(w, r, err)
}

func (s *Server) handleClearCover(w http.ResponseWriter, r *http.Request) {
	err := s.browse.ClearCoverImage(r.Context(), r.PathValue("id"))
	s.finishMutation(w, r, err)
}

func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	_, err := s.browse.AddAlbum(r.Context(), r.FormValue("name"), r.FormValue("description"))
	s.finishMutation(w, r, err)
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	err := s.browse.DeleteAlbum(r.Context(), r.PathValue("id"))
	s.finishMutation(w, r, err)
}

func (s *Server) handleRenameAlbum(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	description := r.FormValue("description")
	if description == "" {
		for _, album := range s.browse.Albums() {
			if album.ID == id {
				description = album.Description
				break
			}
		}
	}
	err := s.browse.RenameAlbum(r.Context(), id, r.FormValue("name"), description)
	s.finishMutation(w, r, err)
}
