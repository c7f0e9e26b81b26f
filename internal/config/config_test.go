package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.PageSize != DefaultPageSize {
		t.Fatalf("expected default page size %d, got %d", DefaultPageSize, cfg.PageSize)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Fatalf("expected default listen addr %s, got %s", DefaultListenAddr, cfg.ListenAddr)
	}
	if !cfg.ShuffleHome {
		t.Fatal("expected shuffle_home to default to true")
	}
}

func TestLoadFromFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFileName)
	content := "backend_url = \"https://file.example\"\nbackend_anon_key = \"key-from-file\"\npage_size = 24\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv(configDirEnvKey, dir)
	t.Setenv(backendURLEnvKey, "https://env.example")
	t.Setenv(anonKeyEnvKey, "")
	t.Setenv(cloudNameEnvKey, "")
	t.Setenv(uploadPresetEnvKey, "")
	t.Setenv(listenAddrEnvKey, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != "https://env.example" {
		t.Fatalf("expected env override, got %q", cfg.BackendURL)
	}
	if cfg.BackendAnonKey != "key-from-file" {
		t.Fatalf("expected file value, got %q", cfg.BackendAnonKey)
	}
	if cfg.PageSize != 24 {
		t.Fatalf("expected page size 24 from file, got %d", cfg.PageSize)
	}
	if cfg.PrefsPath == "" || cfg.MediaCacheDir == "" {
		t.Fatal("expected state paths to be defaulted")
	}
}

func TestSetKeyRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)

	if err := SetKey(path, "cdn_cloud_name", "demo"); err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	if err := SetKey(path, "page_size", "6"); err != nil {
		t.Fatalf("SetKey page_size: %v", err)
	}

	cfg := Default()
	if err := loadFileIfExists(path, &cfg); err != nil {
		t.Fatalf("loadFileIfExists: %v", err)
	}
	if cfg.CDNCloudName != "demo" {
		t.Fatalf("expected cloud name demo, got %q", cfg.CDNCloudName)
	}
	if cfg.PageSize != 6 {
		t.Fatalf("expected page size 6, got %d", cfg.PageSize)
	}
}

func TestSetKeyRejectsUnknownAndInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	if err := SetKey(path, "nope", "x"); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
	if err := SetKey(path, "page_size", "many"); err == nil {
		t.Fatal("expected invalid page_size to be rejected")
	}
	if err := SetKey(path, "shuffle_home", "perhaps"); err == nil {
		t.Fatal("expected invalid shuffle_home to be rejected")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure without backend url")
	}
	cfg.BackendURL = "https://backend.example"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure without anon key")
	}
	cfg.BackendAnonKey = "anon"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestIsAllowedKey(t *testing.T) {
	for _, key := range AllowedKeys() {
		if !IsAllowedKey(key) {
			t.Fatalf("expected %q to be allowed", key)
		}
	}
	if IsAllowedKey("attachments.max_upload_bytes") {
		t.Fatal("expected foreign key to be rejected")
	}
}
