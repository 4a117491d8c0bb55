package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("URZIS_HOME", home)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Storage.Type != StorageSQLite {
		t.Fatalf("expected default storage type sqlite, got %q", cfg.Storage.Type)
	}
	if cfg.Storage.SQLite == nil {
		t.Fatalf("expected sqlite storage section to be populated")
	}
	if want := filepath.Join(home, "session.db"); cfg.Storage.SQLite.Path != want {
		t.Fatalf("expected sqlite path %q, got %q", want, cfg.Storage.SQLite.Path)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Fatalf("expected default timeout 30s, got %v", cfg.Timeout())
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected default log level warn, got %q", cfg.LogLevel)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("URZIS_HOME", t.TempDir())
	t.Setenv("URZIS_STORAGE_TYPE", "memory")
	t.Setenv("URZIS_HTTP_TIMEOUT", "5")
	t.Setenv("URZIS_SERVER_URL", "https://pass.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Storage.Type != StorageMemory {
		t.Fatalf("expected memory storage, got %q", cfg.Storage.Type)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Fatalf("expected timeout 5s, got %v", cfg.Timeout())
	}
	if cfg.ServerURL != "https://pass.example.com" {
		t.Fatalf("unexpected server url %q", cfg.ServerURL)
	}
}

func TestLoadConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("URZIS_HOME", home)

	content := []byte("log_level: debug\nstorage:\n  type: file\n  file:\n    path: /tmp/urzis-session.yaml\n")
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log level debug, got %q", cfg.LogLevel)
	}
	if cfg.Storage.Type != StorageFile {
		t.Fatalf("expected file storage, got %q", cfg.Storage.Type)
	}
	if cfg.Storage.File.Path != "/tmp/urzis-session.yaml" {
		t.Fatalf("absolute path should be kept, got %q", cfg.Storage.File.Path)
	}
}

func TestLoadConfigRejectsUnknownStorage(t *testing.T) {
	t.Setenv("URZIS_HOME", t.TempDir())
	t.Setenv("URZIS_STORAGE_TYPE", "redis")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unsupported storage type")
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Setenv("URZIS_HOME", t.TempDir())

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}
