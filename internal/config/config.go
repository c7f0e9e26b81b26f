package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultListenAddr     = "http://127.0.0.1:8484"
	DefaultPageSize       = 12
	DefaultLogLevel       = "info"
	DefaultUploadFolder   = "gallery"
	DefaultConfigFileName = ".galeria.toml"
	DefaultPrefsFileName  = "prefs.yaml"
	DefaultMediaCacheDir  = "media-cache"
	defaultStateDirName   = ".galeria"

	configDirEnvKey = "GALERIA_CONFIG_DIR"

	backendURLEnvKey   = "GALERIA_BACKEND_URL"
	anonKeyEnvKey      = "GALERIA_BACKEND_ANON_KEY"
	cloudNameEnvKey    = "GALERIA_CDN_CLOUD_NAME"
	uploadPresetEnvKey = "GALERIA_CDN_UPLOAD_PRESET"
	listenAddrEnvKey   = "GALERIA_LISTEN_ADDR"
)

// Config defines runtime configuration for galeria. Credentials here are the
// backend's public client keys; nothing secret lives in this file.
type Config struct {
	BackendURL     string `toml:"backend_url"`
	BackendAnonKey string `toml:"backend_anon_key"`

	CDNCloudName    string `toml:"cdn_cloud_name"`
	CDNUploadPreset string `toml:"cdn_upload_preset"`
	CDNUploadFolder string `toml:"cdn_upload_folder"`

	ListenAddr    string `toml:"listen_addr"`
	PageSize      int    `toml:"page_size"`
	ShuffleHome   bool   `toml:"shuffle_home"`
	MediaCacheDir string `toml:"media_cache_dir"`
	PrefsPath     string `toml:"prefs_path"`
	LogLevel      string `toml:"log_level"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		CDNUploadFolder: DefaultUploadFolder,
		ListenAddr:      DefaultListenAddr,
		PageSize:        DefaultPageSize,
		ShuffleHome:     true,
		LogLevel:        DefaultLogLevel,
	}
}

var allowedKeys = []string{
	"backend_url",
	"backend_anon_key",
	"cdn_cloud_name",
	"cdn_upload_preset",
	"cdn_upload_folder",
	"listen_addr",
	"page_size",
	"shuffle_home",
	"media_cache_dir",
	"prefs_path",
	"log_level",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "backend_url":
		return c.BackendURL, nil
	case "backend_anon_key":
		return c.BackendAnonKey, nil
	case "cdn_cloud_name":
		return c.CDNCloudName, nil
	case "cdn_upload_preset":
		return c.CDNUploadPreset, nil
	case "cdn_upload_folder":
		return c.CDNUploadFolder, nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "page_size":
		return strconv.Itoa(c.PageSize), nil
	case "shuffle_home":
		return strconv.FormatBool(c.ShuffleHome), nil
	case "media_cache_dir":
		return c.MediaCacheDir, nil
	case "prefs_path":
		return c.PrefsPath, nil
	case "log_level":
		return c.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// Path returns the location of the config file.
func Path() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, DefaultConfigFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsed, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	data[key] = parsed

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

func parseSetValue(key, value string) (any, error) {
	switch key {
	case "page_size":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid page_size: %s", value)
		}
		return n, nil
	case "shuffle_home":
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid shuffle_home: %s", value)
		}
		return b, nil
	default:
		return value, nil
	}
}

// Load reads config from the config file and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		if loadErr := loadFileIfExists(path, &cfg); loadErr != nil {
			return nil, loadErr
		}
	}

	if v := strings.TrimSpace(os.Getenv(backendURLEnvKey)); v != "" {
		cfg.BackendURL = v
	}
	if v := strings.TrimSpace(os.Getenv(anonKeyEnvKey)); v != "" {
		cfg.BackendAnonKey = v
	}
	if v := strings.TrimSpace(os.Getenv(cloudNameEnvKey)); v != "" {
		cfg.CDNCloudName = v
	}
	if v := strings.TrimSpace(os.Getenv(uploadPresetEnvKey)); v != "" {
		cfg.CDNUploadPreset = v
	}
	if v := strings.TrimSpace(os.Getenv(listenAddrEnvKey)); v != "" {
		cfg.ListenAddr = v
	}

	cfg.applyStateDefaults()
	return &cfg, nil
}

func loadFileIfExists(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// applyStateDefaults fills in state-file paths under the user's state dir
// when the config leaves them empty.
func (c *Config) applyStateDefaults() {
	if c.PageSize < 0 {
		c.PageSize = 0
	}
	if c.PrefsPath != "" && c.MediaCacheDir != "" {
		return
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	stateDir := filepath.Join(home, defaultStateDirName)
	if c.PrefsPath == "" {
		c.PrefsPath = filepath.Join(stateDir, DefaultPrefsFileName)
	}
	if c.MediaCacheDir == "" {
		c.MediaCacheDir = filepath.Join(stateDir, DefaultMediaCacheDir)
	}
}

// Validate checks that the remote endpoints required by every command are
// configured.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return fmt.Errorf("backend_url is required (set it with: galeria config set backend_url <url>)")
	}
	if strings.TrimSpace(c.BackendAnonKey) == "" {
		return fmt.Errorf("backend_anon_key is required")
	}
	return nil
}
