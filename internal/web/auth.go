package web

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"sync"
	"time"
)

const sessionCookieName = "galeria_session"

var browserSessionTTL = 24 * time.Hour

// sessionRegistry maps hashed browser session tokens to the admin identity.
// The registry is in-memory only: the authoritative session is the backend
// auth token held by the remote client, and a restart simply requires a new
// login.
type sessionRegistry struct {
	mu      sync.Mutex
	entries map[string]browserSession
}

type browserSession struct {
	email     string
	expiresAt time.Time
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{entries: make(map[string]browserSession)}
}

func (r *sessionRegistry) create(email string, now time.Time) (string, error) {
	token, err := generateSessionToken()
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[hashSessionToken(token)] = browserSession{
		email:     email,
		expiresAt: now.Add(browserSessionTTL),
	}
	return token, nil
}

func (r *sessionRegistry) lookup(token string, now time.Time) (string, bool) {
	if token == "" {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := hashSessionToken(token)
	entry, ok := r.entries[key]
	if !ok {
		return "", false
	}
	if now.After(entry.expiresAt) {
		delete(r.entries, key)
		return "", false
	}
	return entry.email, true
}

func (r *sessionRegistry) revoke(token string) {
	if token == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, hashSessionToken(token))
}

func hashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

type adminContextKey struct{}

func contextWithAdmin(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, adminContextKey{}, email)
}

func adminFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	email, ok := ctx.Value(adminContextKey{}).(string)
	return email, ok
}

// requireAdmin gates a handler behind a valid browser session plus an active
// backend session. Either one missing sends the visitor to the login page.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := s.currentAdmin(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithAdmin(r.Context(), email)))
	})
}

func (s *Server) currentAdmin(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	email, ok := s.sessions.lookup(cookie.Value, time.Now())
	if !ok {
		return "", false
	}
	if s.auth != nil {
		session, err := s.auth.Session(r.Context())
		if err != nil || session == nil {
			return "", false
		}
	}
	return email, true
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(browserSessionTTL / time.Second),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
