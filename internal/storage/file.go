package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileProvider stores values as a flat YAML mapping. The file is re-read on every
// Get so that a second process sees the latest login or logout.
type FileProvider struct {
	path string

	mu     sync.Mutex
	logger *slog.Logger
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{
		path:   path,
		logger: slog.With("component", "storage", "path", path),
	}
}

func (f *FileProvider) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return "", false, err
	}
	value, ok := entries[key]
	return value, ok, nil
}

func (f *FileProvider) Set(ctx context.Context, key string, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return f.persist(entries)
}

func (f *FileProvider) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	for _, key := range keys {
		delete(entries, key)
	}
	return f.persist(entries)
}

func (f *FileProvider) Close() error {
	return nil
}

func (f *FileProvider) load() (map[string]string, error) {
	entries := make(map[string]string)

	b, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return entries, nil
	} else if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	if err := yaml.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	// An empty document decodes to a nil map
	if entries == nil {
		entries = make(map[string]string)
	}
	return entries, nil
}

// persist writes through a temporary file so a crash never leaves a truncated session.
func (f *FileProvider) persist(entries map[string]string) error {
	b, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session folder: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}

	f.logger.Debug("Session file written", "keys", len(entries))
	return nil
}
