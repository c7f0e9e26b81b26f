package web

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"galeria/internal/gallery"
)

func postForm(t *testing.T, env *testEnv, cookie *http.Cookie, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func TestUploadImage(t *testing.T) {
	env := newTestEnv(t, seededRemote(0))
	cookie := env.signIn(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "sunset.jpg")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write([]byte("jpeg-bytes")); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := form.WriteField("title", ""); err != nil {
		t.Fatalf("writing title field: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("closing form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/images", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != "/admin" {
		t.Fatalf("expected redirect to /admin, got %q", got)
	}

	env.remote.mu.Lock()
	defer env.remote.mu.Unlock()
	if len(env.remote.images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(env.remote.images))
	}
	img := env.remote.images[0]
	if img.Title != "sunset.jpg" {
		t.Fatalf("expected filename fallback title, got %q", img.Title)
	}
	if !strings.Contains(img.URL, "sunset.jpg") {
		t.Fatalf("expected uploaded URL, got %q", img.URL)
	}
}

func TestUploadImageRequiresSession(t *testing.T) {
	env := newTestEnv(t, seededRemote(0))
	rec := postForm(t, env, nil, "/admin/images", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login" {
		t.Fatalf("expected redirect to /login, got %q", got)
	}
}

func TestCreateAndDeleteAlbum(t *testing.T) {
	env := newTestEnv(t, seededRemote(3))
	cookie := env.signIn(t)

	rec := postForm(t, env, cookie, "/admin/albums", url.Values{
		"name":        {"Trips"},
		"description": {"Summer **2026**"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	env.remote.mu.Lock()
	if len(env.remote.albums) != 1 {
		env.remote.mu.Unlock()
		t.Fatal("expected album to be created")
	}
	albumID := env.remote.albums[0].ID
	env.remote.images[0].AlbumID = &albumID
	env.remote.mu.Unlock()

	rec = postForm(t, env, cookie, "/admin/albums/"+albumID+"/delete", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	env.remote.mu.Lock()
	defer env.remote.mu.Unlock()
	if len(env.remote.albums) != 0 {
		t.Fatal("expected album to be deleted")
	}
	if env.remote.images[0].AlbumID != nil {
		t.Fatal("expected image to become unclassified, not deleted")
	}
	if len(env.remote.images) != 3 {
		t.Fatalf("expected images to survive album deletion, got %d", len(env.remote.images))
	}
}

func TestCreateAlbumRejectsBlankName(t *testing.T) {
	env := newTestEnv(t, seededRemote(0))
	cookie := env.signIn(t)

	rec := postForm(t, env, cookie, "/admin/albums", url.Values{"name": {"   "}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	location := rec.Header().Get("Location")
	if !strings.Contains(location, "error=") {
		t.Fatalf("expected error in redirect, got %q", location)
	}

	env.remote.mu.Lock()
	defer env.remote.mu.Unlock()
	if len(env.remote.albums) != 0 {
		t.Fatal("expected no album to be created")
	}
}

func TestSetCoverReplacesPrevious(t *testing.T) {
	remote := seededRemote(3)
	remote.images[0].IsCover = true
	env := newTestEnv(t, remote)
	cookie := env.signIn(t)

	rec := postForm(t, env, cookie, "/admin/images/img-2/cover", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	env.remote.mu.Lock()
	defer env.remote.mu.Unlock()
	for _, img := range env.remote.images {
		want := img.ID == "img-2"
		if img.IsCover != want {
			t.Fatalf("image %s: expected cover=%v, got %v", img.ID, want, img.IsCover)
		}
	}
}

func TestRenameImage(t *testing.T) {
	env := newTestEnv(t, seededRemote(1))
	cookie := env.signIn(t)

	rec := postForm(t, env, cookie, "/admin/images/img-1/title", url.Values{"title": {"Dawn"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	env.remote.mu.Lock()
	defer env.remote.mu.Unlock()
	if env.remote.images[0].Title != "Dawn" {
		t.Fatalf("expected renamed title, got %q", env.remote.images[0].Title)
	}
}

func TestMoveImageBetweenAlbums(t *testing.T) {
	remote := seededRemote(2)
	remote.albums = []gallery.Album{{ID: "album-a", Name: "Trips"}}
	env := newTestEnv(t, remote)
	cookie := env.signIn(t)

	rec := postForm(t, env, cookie, "/admin/images/img-1/move", url.Values{"album": {"album-a"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	env.remote.mu.Lock()
	if !env.remote.images[0].InAlbum("album-a") {
		env.remote.mu.Unlock()
		t.Fatal("expected image to join the album")
	}
	env.remote.mu.Unlock()

	rec = postForm(t, env, cookie, "/admin/images/img-1/move", url.Values{"album": {""}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	env.remote.mu.Lock()
	defer env.remote.mu.Unlock()
	if env.remote.images[0].AlbumID != nil {
		t.Fatal("expected image to become unclassified")
	}
}
