package storage

import (
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteProvider struct {
	*SQLProvider
}

func NewSQLiteProvider(path string) (*SQLiteProvider, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create storage folder: %w", err)
		}
	}

	provider, err := NewSQLProvider("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer, and every :memory: connection is a separate database
	provider.db.SetMaxOpenConns(1)

	return &SQLiteProvider{SQLProvider: provider}, nil
}
