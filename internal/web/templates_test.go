package web

import (
	"bytes"
	"strings"
	"testing"

	"galeria/internal/gallery"
)

func TestTemplatesRenderFullDocuments(t *testing.T) {
	set, err := newTemplateSet()
	if err != nil {
		t.Fatalf("building template set: %v", err)
	}

	album := gallery.Album{ID: "alb-1", Name: "Landscapes", Description: "Wide *views*."}
	albumID := album.ID
	images := []gallery.Image{{ID: "img-1", Title: "Dawn", URL: "https://cdn.example.com/upload/dawn.jpg", AlbumID: &albumID}}

	cases := []struct {
		page string
		data map[string]any
		want string
	}{
		{"home.html", map[string]any{"Admin": "", "Cover": &images[0], "Images": images}, "Dawn"},
		{"gallery.html", map[string]any{"Admin": "", "Albums": []gallery.Album{album}, "ActiveAlbum": "", "ViewMode": "grid", "Images": images, "Page": 1, "TotalPages": 3}, "Page 1 of 3"},
		{"albums.html", map[string]any{"Admin": "", "Albums": []gallery.Album{album}}, "Landscapes"},
		{"login.html", map[string]any{"Email": "admin@example.com", "Error": "", "Locked": false}, "Sign in"},
		{"admin.html", map[string]any{"Admin": "admin@example.com", "Error": "", "Albums": []gallery.Album{album}, "Images": images, "Page": 1, "TotalPages": 1}, "Upload image"},
	}

	for _, tc := range cases {
		t.Run(tc.page, func(t *testing.T) {
			var buf bytes.Buffer
			if err := set.render(&buf, tc.page, tc.data); err != nil {
				t.Fatalf("rendering %s: %v", tc.page, err)
			}
			out := buf.String()
			if !strings.Contains(out, "<!doctype html>") {
				t.Fatalf("expected %s to render inside the layout", tc.page)
			}
			if !strings.Contains(out, "<style>") {
				t.Fatalf("expected %s to inline the stylesheet", tc.page)
			}
			if !strings.Contains(out, tc.want) {
				t.Fatalf("expected %q in rendered %s", tc.want, tc.page)
			}
		})
	}
}
