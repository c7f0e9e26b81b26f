package remote

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"galeria/internal/gallery"
)

type authState struct {
	mu        sync.Mutex
	session   *gallery.Session
	listeners []func(*gallery.Session)
}

func (a *authState) current(now time.Time) *gallery.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session.Expired(now) {
		a.session = nil
		return nil
	}
	out := *a.session
	return &out
}

func (a *authState) set(session *gallery.Session) {
	a.mu.Lock()
	a.session = session
	listeners := make([]func(*gallery.Session), len(a.listeners))
	copy(listeners, a.listeners)
	a.mu.Unlock()

	for _, notify := range listeners {
		notify(session)
	}
}

func (a *authState) subscribe(fn func(*gallery.Session)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// SignIn exchanges credentials for a session with the hosted auth service.
// Credential verification happens entirely remotely.
func (c *Client) SignIn(ctx context.Context, email, password string) (*gallery.Session, error) {
	query := url.Values{}
	query.Set("grant_type", "password")

	var resp signInResponse
	_, err := c.do(ctx, http.MethodPost, "/auth/v1/token", query, nil, signInRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	session := &gallery.Session{
		AccessToken: resp.AccessToken,
		Email:       resp.User.Email,
		ExpiresAt:   time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	c.auth.set(session)
	return session, nil
}

// SignOut revokes the active session. The local session is dropped even when
// the remote revocation fails; the token would expire on its own anyway.
func (c *Client) SignOut(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, nil, nil)
	c.auth.set(nil)
	return err
}

// Session returns the active session, or nil when signed out or expired.
func (c *Client) Session(ctx context.Context) (*gallery.Session, error) {
	return c.auth.current(time.Now()), nil
}

// RestoreSession adopts a previously issued session, typically one a CLI
// login persisted. Expired sessions are ignored.
func (c *Client) RestoreSession(session gallery.Session) {
	if session.Expired(time.Now()) {
		return
	}
	c.auth.set(&session)
}

// OnAuthStateChange registers a callback invoked whenever the session is
// established or dropped. Callbacks run synchronously on the goroutine that
// changed the state.
func (c *Client) OnAuthStateChange(fn func(*gallery.Session)) {
	if fn == nil {
		return
	}
	c.auth.subscribe(fn)
}
