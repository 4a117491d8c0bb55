package storage

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"urzis-pass/internal/config"
)

func exerciseProvider(t *testing.T, p Provider) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := p.Get(ctx, "token"); err != nil || ok {
		t.Fatalf("Get() on empty store = ok %v, err %v", ok, err)
	}

	if err := p.Set(ctx, "token", "tok123"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := p.Set(ctx, "tenant", "acme"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := p.Set(ctx, "token", "tok456"); err != nil {
		t.Fatalf("Set() overwrite error: %v", err)
	}

	value, ok, err := p.Get(ctx, "token")
	if err != nil || !ok || value != "tok456" {
		t.Fatalf("Get(token) = %q, %v, %v", value, ok, err)
	}

	if err := p.Delete(ctx, "token", "missing"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, ok, _ := p.Get(ctx, "token"); ok {
		t.Fatalf("token should be gone after Delete()")
	}
	if value, ok, _ := p.Get(ctx, "tenant"); !ok || value != "acme" {
		t.Fatalf("tenant should survive, got %q %v", value, ok)
	}

	if err := p.Set(ctx, "", "x"); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestMemoryProvider(t *testing.T) {
	exerciseProvider(t, NewMemoryProvider())
}

func TestFileProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	exerciseProvider(t, NewFileProvider(path))

	// A second provider on the same file sees the persisted state
	reopened := NewFileProvider(path)
	value, ok, err := reopened.Get(context.Background(), "tenant")
	if err != nil || !ok || value != "acme" {
		t.Fatalf("reopened Get(tenant) = %q, %v, %v", value, ok, err)
	}
}

func TestSQLiteProvider(t *testing.T) {
	p, err := NewProvider(&config.Storage{
		Type:   config.StorageSQLite,
		SQLite: &config.SQLiteStorage{Path: ":memory:"},
	})
	if err != nil {
		t.Fatalf("NewProvider() error: %v", err)
	}
	defer p.Close()

	exerciseProvider(t, p)
}

func TestSQLiteProviderPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	cfg := &config.Storage{Type: config.StorageSQLite, SQLite: &config.SQLiteStorage{Path: path}}

	p, err := NewProvider(cfg)
	if err != nil {
		t.Fatalf("NewProvider() error: %v", err)
	}
	if err := p.Set(context.Background(), "serverUrl", "https://pass.example.com"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	p.Close()

	// Reopening runs migrations again, which must be a no-op
	p, err = NewProvider(cfg)
	if err != nil {
		t.Fatalf("NewProvider() reopen error: %v", err)
	}
	defer p.Close()

	value, ok, err := p.Get(context.Background(), "serverUrl")
	if err != nil || !ok || value != "https://pass.example.com" {
		t.Fatalf("Get(serverUrl) = %q, %v, %v", value, ok, err)
	}

	version, err := p.(*SQLiteProvider).GetSchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("GetSchemaVersion() error: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected schema version 1, got %d", version)
	}
}

func TestNewProviderUnsupported(t *testing.T) {
	if _, err := NewProvider(&config.Storage{Type: "redis"}); !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
	if _, err := NewProvider(&config.Storage{Type: config.StorageFile}); !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider for missing file path, got %v", err)
	}
}

func newMockProvider(t *testing.T) (*SQLProvider, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return newSQLProviderWithDB(sqlx.NewDb(db, "sqlite3")), mock
}

func TestSQLProviderGetError(t *testing.T) {
	p, mock := newMockProvider(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_store WHERE key = ?")).
		WithArgs("token").
		WillReturnError(errors.New("disk I/O error"))

	if _, _, err := p.Get(context.Background(), "token"); err == nil {
		t.Fatalf("expected error from Get()")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLProviderDeleteExpandsKeys(t *testing.T) {
	p, mock := newMockProvider(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv_store WHERE key IN (?, ?)")).
		WithArgs("token", "tenant").
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := p.Delete(context.Background(), "token", "tenant"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMigrationRunnerOrdering(t *testing.T) {
	runner := NewMigrationRunner("sqlite3")

	up, err := runner.LoadMigrations(0, -1)
	if err != nil {
		t.Fatalf("LoadMigrations(up) error: %v", err)
	}
	if len(up) == 0 || !up[0].Up || up[0].Version != 1 {
		t.Fatalf("unexpected up migrations: %+v", up)
	}

	down, err := runner.LoadMigrations(1, 0)
	if err != nil {
		t.Fatalf("LoadMigrations(down) error: %v", err)
	}
	if len(down) != 1 || down[0].Up {
		t.Fatalf("unexpected down migrations: %+v", down)
	}

	if _, err := runner.LoadMigrations(1, 1); !errors.Is(err, ErrMigrateCurrentVersionSameAsTarget) {
		t.Fatalf("expected ErrMigrateCurrentVersionSameAsTarget, got %v", err)
	}

	if _, err := NewMigrationRunner("postgres").LatestVersion(); !errors.Is(err, ErrUnsupportedMigrationDriver) {
		t.Fatalf("expected ErrUnsupportedMigrationDriver, got %v", err)
	}
}
