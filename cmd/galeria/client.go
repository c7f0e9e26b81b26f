package main

import (
	"log/slog"
	"path/filepath"

	"galeria/internal/config"
	"galeria/internal/remote"
)

// newRemoteClient builds the backend client and adopts any persisted login
// session so mutating commands work across invocations.
func newRemoteClient(cfg *config.Config) (*remote.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := remote.NewClient(cfg.BackendURL, cfg.BackendAnonKey)

	session, err := loadSessionFile(sessionFilePath(cfg))
	if err != nil {
		slog.Warn("ignoring unreadable session file", "error", err)
	} else if session != nil {
		client.RestoreSession(*session)
	}
	return client, nil
}

func sessionFilePath(cfg *config.Config) string {
	return filepath.Join(filepath.Dir(cfg.PrefsPath), "session.yaml")
}
