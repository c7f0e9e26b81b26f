package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"galeria/internal/gallery"
)

func TestListImagesQueryAndCount(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		if r.Header.Get("Prefer") != "count=exact" {
			t.Errorf("expected Prefer count=exact, got %q", r.Header.Get("Prefer"))
		}
		if r.Header.Get("apikey") != "anon" {
			t.Errorf("expected apikey header, got %q", r.Header.Get("apikey"))
		}
		w.Header().Set("Content-Range", "0-11/25")
		_ = json.NewEncoder(w).Encode([]imageRecord{
			{ID: "a", Title: "First", URL: "https://cdn/a.jpg"},
			{ID: "b", Title: "Second", URL: "https://cdn/b.jpg"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon")
	album := "alb-1"
	page, err := client.ListImages(context.Background(), gallery.ListOptions{AlbumID: &album, Page: 2, PageSize: 12})
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}

	if page.TotalCount != 25 {
		t.Fatalf("expected total 25 from Content-Range, got %d", page.TotalCount)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if gotQuery["order"] != "uploaded_at.desc" {
		t.Fatalf("expected descending upload order, got %q", gotQuery["order"])
	}
	if gotQuery["album_id"] != "eq.alb-1" {
		t.Fatalf("expected album filter, got %q", gotQuery["album_id"])
	}
	if gotQuery["limit"] != "12" || gotQuery["offset"] != "12" {
		t.Fatalf("expected limit 12 offset 12, got limit %q offset %q", gotQuery["limit"], gotQuery["offset"])
	}
}

func TestListImagesMissingCountFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]imageRecord{{ID: "a"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon")
	page, err := client.ListImages(context.Background(), gallery.ListOptions{})
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if page.TotalCount != 1 {
		t.Fatalf("expected fallback total 1, got %d", page.TotalCount)
	}
}

func TestPing(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		var gotPath, gotSelect, gotLimit string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotSelect = r.URL.Query().Get("select")
			gotLimit = r.URL.Query().Get("limit")
			_, _ = w.Write([]byte("[]"))
		}))
		defer server.Close()

		client := NewClient(server.URL, "anon")
		if err := client.Ping(context.Background()); err != nil {
			t.Fatalf("Ping: %v", err)
		}
		if gotPath != imagesPath {
			t.Fatalf("expected ping against %s, got %s", imagesPath, gotPath)
		}
		if gotSelect != "id" || gotLimit != "1" {
			t.Fatalf("expected minimal select=id limit=1, got select=%q limit=%q", gotSelect, gotLimit)
		}
	})

	t.Run("backend error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL, "anon")
		err := client.Ping(context.Background())
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Status != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", apiErr.Status)
		}
	})
}

func TestInsertImageUsesRepresentation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Prefer") != "return=representation" {
			t.Errorf("expected return=representation, got %q", r.Header.Get("Prefer"))
		}
		var rec imageRecord
		_ = json.NewDecoder(r.Body).Decode(&rec)
		rec.ID = "server-id"
		_ = json.NewEncoder(w).Encode([]imageRecord{rec})
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon")
	img, err := client.InsertImage(context.Background(), "Sunset", "https://cdn/x.jpg", nil)
	if err != nil {
		t.Fatalf("InsertImage: %v", err)
	}
	if img.ID != "server-id" {
		t.Fatalf("expected server-assigned id, got %q", img.ID)
	}
	if img.Title != "Sunset" {
		t.Fatalf("expected title Sunset, got %q", img.Title)
	}
}

func TestDecodeErrorShapes(t *testing.T) {
	t.Run("row store shape", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "duplicate key", "code": "23505"})
		}))
		defer server.Close()

		client := NewClient(server.URL, "anon")
		err := client.DeleteImage(context.Background(), "x")
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Code != "23505" || apiErr.Message != "duplicate key" {
			t.Fatalf("unexpected error fields: %+v", apiErr)
		}
	})

	t.Run("auth shape", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_grant",
				"error_description": "Invalid login credentials",
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, "anon")
		_, err := client.SignIn(context.Background(), "a@b.c", "wrong")
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Code != "invalid_grant" {
			t.Fatalf("expected invalid_grant code, got %q", apiErr.Code)
		}
	})
}

func TestSignInSetsSessionAndNotifies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/v1/token" {
			if r.URL.Query().Get("grant_type") != "password" {
				t.Errorf("expected grant_type=password, got %q", r.URL.Query().Get("grant_type"))
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "tok-123",
				"token_type":   "bearer",
				"expires_in":   3600,
				"user":         map[string]string{"email": "admin@example.com"},
			})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon")

	var notified []*gallery.Session
	client.OnAuthStateChange(func(s *gallery.Session) {
		notified = append(notified, s)
	})

	session, err := client.SignIn(context.Background(), "admin@example.com", "secret")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if session.AccessToken != "tok-123" {
		t.Fatalf("expected token tok-123, got %q", session.AccessToken)
	}

	got, err := client.Session(context.Background())
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if got == nil || got.Email != "admin@example.com" {
		t.Fatalf("expected active session for admin@example.com, got %+v", got)
	}

	if err := client.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	got, _ = client.Session(context.Background())
	if got != nil {
		t.Fatalf("expected no session after sign out, got %+v", got)
	}

	if len(notified) != 2 {
		t.Fatalf("expected 2 auth notifications, got %d", len(notified))
	}
	if notified[0] == nil || notified[1] != nil {
		t.Fatal("expected sign-in then sign-out notifications")
	}
}

func TestSessionExpiry(t *testing.T) {
	client := NewClient("http://127.0.0.1:0", "anon")
	client.auth.set(&gallery.Session{AccessToken: "tok", ExpiresAt: time.Now().Add(-time.Minute)})

	got, err := client.Session(context.Background())
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expired session to read as nil, got %+v", got)
	}
}

func TestTotalFromContentRange(t *testing.T) {
	cases := []struct {
		in    string
		total int
		ok    bool
	}{
		{"0-11/25", 25, true},
		{"*/100", 100, true},
		{"0-0/*", 0, false},
		{"", 0, false},
		{"garbage", 0, false},
	}
	for _, tc := range cases {
		total, ok := totalFromContentRange(tc.in)
		if total != tc.total || ok != tc.ok {
			t.Fatalf("totalFromContentRange(%q) = %d,%v; expected %d,%v", tc.in, total, ok, tc.total, tc.ok)
		}
	}
}

func TestHTTPTimeoutFromEnv(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})

	t.Run("duration format", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "45s")
		if got := httpTimeoutFromEnv(); got != 45*time.Second {
			t.Fatalf("expected 45s timeout, got %v", got)
		}
	})

	t.Run("integer seconds", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "25")
		if got := httpTimeoutFromEnv(); got != 25*time.Second {
			t.Fatalf("expected 25s timeout, got %v", got)
		}
	})

	t.Run("invalid falls back", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "invalid")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})
}
