package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Fixed keys of the preference file. These are the only values the gallery
// persists locally; everything durable lives in the remote backend.
const (
	KeyViewMode      = "viewMode"
	KeyLoginAttempts = "loginAttempts"
	KeyLoginLockout  = "loginLockout"
)

// View modes for the public grid.
const (
	ViewModeGrid    = "grid"
	ViewModeMasonry = "masonry"
)

type values struct {
	ViewMode      string `yaml:"viewMode,omitempty"`
	LoginAttempts int    `yaml:"loginAttempts,omitempty"`
	LoginLockout  int64  `yaml:"loginLockout,omitempty"`
}

// Prefs is the local preference file: a UI view-mode choice plus transient
// login-attempt counters. Writes are flushed immediately.
type Prefs struct {
	path string

	mu   sync.Mutex
	vals values
}

// Load reads the preference file at path, tolerating a missing file.
func Load(path string) (*Prefs, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("prefs path is required")
	}

	p := &Prefs{path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(raw, &p.vals); err != nil {
		return nil, fmt.Errorf("parsing prefs %s: %w", path, err)
	}
	return p, nil
}

// ViewMode returns the stored view mode, defaulting to grid.
func (p *Prefs) ViewMode() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.vals.ViewMode == ViewModeMasonry {
		return ViewModeMasonry
	}
	return ViewModeGrid
}

// SetViewMode persists the view mode. Unknown values fall back to grid.
func (p *Prefs) SetViewMode(mode string) error {
	if mode != ViewModeMasonry {
		mode = ViewModeGrid
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vals.ViewMode = mode
	return p.flushLocked()
}

// LoginAttempts returns the stored failed-attempt counter.
func (p *Prefs) LoginAttempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vals.LoginAttempts
}

// LoginLockout returns the lockout deadline in unix milliseconds, zero when
// none is set.
func (p *Prefs) LoginLockout() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vals.LoginLockout
}

// SetLoginState persists the attempt counter and lockout deadline together.
func (p *Prefs) SetLoginState(attempts int, lockoutMillis int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vals.LoginAttempts = attempts
	p.vals.LoginLockout = lockoutMillis
	return p.flushLocked()
}

func (p *Prefs) flushLocked() error {
	raw, err := yaml.Marshal(p.vals)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, raw, 0o600)
}
