package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"urzis-pass/internal/config"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported storage provider")
	ErrEmptyKey            = errors.New("storage key must not be empty")
)

// Provider is a small durable key/value store. Values are plain strings.
type Provider interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

func NewProvider(cfg *config.Storage) (Provider, error) {
	switch cfg.Type {
	case config.StorageSQLite:
		if cfg.SQLite == nil || cfg.SQLite.Path == "" {
			return nil, fmt.Errorf("%w: sqlite path not configured", ErrUnsupportedProvider)
		}
		provider, err := NewSQLiteProvider(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		if err := provider.Migrate(context.Background(), -1); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			provider.Close()
			return nil, err
		}
		return provider, nil

	case config.StorageFile:
		if cfg.File == nil || cfg.File.Path == "" {
			return nil, fmt.Errorf("%w: file path not configured", ErrUnsupportedProvider)
		}
		return NewFileProvider(cfg.File.Path), nil

	case config.StorageMemory:
		return NewMemoryProvider(), nil
	}

	slog.Error("Unsupported storage configuration", "type", cfg.Type)
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Type)
}
