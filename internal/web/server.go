package web

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"galeria/internal/gallery"
	"galeria/internal/media"
	"galeria/internal/prefs"
)

const (
	allowRemoteEnvKey = "GALERIA_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
)

// Authenticator is the slice of the backend auth surface the web layer
// needs.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*gallery.Session, error)
	SignOut(ctx context.Context) error
	Session(ctx context.Context) (*gallery.Session, error)
}

// Uploader pushes image bytes to the media CDN.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (media.UploadResult, error)
}

// Options wires the server's collaborators.
type Options struct {
	// Browse is the paginated store backing the gallery and admin views.
	Browse *gallery.Store
	// Discovery is the unpaginated, shuffled store backing the landing
	// view.
	Discovery *gallery.Store
	Auth      Authenticator
	Uploader  Uploader
	Cache     *media.VariantCache
	Prefs     *prefs.Prefs
	Lockout   *prefs.Lockout
	Logger    *slog.Logger
}

// Server renders the gallery UI and binds user intents to store operations.
// It only reads store state and calls store operations; it never mutates
// store internals.
type Server struct {
	addr      string
	browse    *gallery.Store
	discovery *gallery.Store
	auth      Authenticator
	uploader  Uploader
	cache     *media.VariantCache
	prefs     *prefs.Prefs
	lockout   *prefs.Lockout
	logger    *slog.Logger
	sessions  *sessionRegistry
	templates *templateSet
	fetch     *http.Client
}

// New creates a server instance.
func New(addr string, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	templates, err := newTemplateSet()
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return &Server{
		addr:      addr,
		browse:    opts.Browse,
		discovery: opts.Discovery,
		auth:      opts.Auth,
		uploader:  opts.Uploader,
		cache:     opts.Cache,
		prefs:     opts.Prefs,
		lockout:   opts.Lockout,
		logger:    logger,
		sessions:  newSessionRegistry(),
		templates: templates,
		fetch:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log().Info("starting gallery server", "addr", s.addr)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return server.ListenAndServe()
}

// ListenAddr converts a base URL into a listen address, refusing non-local
// hosts unless explicitly allowed.
func ListenAddr(baseURL string) (string, error) {
	if baseURL == "" {
		return "", fmt.Errorf("listen address is required")
	}
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(baseURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}
	return baseURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
