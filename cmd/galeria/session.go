package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"galeria/internal/gallery"
)

type sessionFile struct {
	AccessToken string    `yaml:"access_token"`
	Email       string    `yaml:"email"`
	ExpiresAt   time.Time `yaml:"expires_at"`
}

func loadSessionFile(path string) (*gallery.Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var file sessionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	if file.AccessToken == "" {
		return nil, nil
	}

	session := gallery.Session{
		AccessToken: file.AccessToken,
		Email:       file.Email,
		ExpiresAt:   file.ExpiresAt,
	}
	if session.Expired(time.Now()) {
		return nil, nil
	}
	return &session, nil
}

func saveSessionFile(path string, session *gallery.Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(sessionFile{
		AccessToken: session.AccessToken,
		Email:       session.Email,
		ExpiresAt:   session.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func removeSessionFile(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
