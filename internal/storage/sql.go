package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

type SQLProvider struct {
	db     *sqlx.DB
	driver string

	logger *slog.Logger
}

func NewSQLProvider(driverName string, dataSource string) (*SQLProvider, error) {
	db, err := sqlx.Open(driverName, dataSource)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driverName, err)
	}
	return newSQLProviderWithDB(db), nil
}

func newSQLProviderWithDB(db *sqlx.DB) *SQLProvider {
	return &SQLProvider{
		db:     db,
		driver: db.DriverName(),
		logger: slog.With("component", "storage", "driver", db.DriverName()),
	}
}

func (p *SQLProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *SQLProvider) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}

	var value string
	err := p.db.GetContext(ctx, &value, "SELECT value FROM kv_store WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (p *SQLProvider) Set(ctx context.Context, key string, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	p.logger.Debug("Stored key", "key", key)
	return nil
}

func (p *SQLProvider) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := sqlx.In("DELETE FROM kv_store WHERE key IN (?)", keys)
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, p.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("delete %v: %w", keys, err)
	}
	p.logger.Debug("Deleted keys", "keys", keys)
	return nil
}

// GetSchemaVersion returns the highest applied migration version, 0 for a fresh database.
func (p *SQLProvider) GetSchemaVersion(ctx context.Context) (int, error) {
	if _, err := p.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return -1, fmt.Errorf("create schema_migrations: %w", err)
	}

	var version int
	if err := p.db.GetContext(ctx, &version, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"); err != nil {
		return -1, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// Migrate moves the schema to target. -1 means the latest embedded version.
func (p *SQLProvider) Migrate(ctx context.Context, target int) error {
	current, err := p.GetSchemaVersion(ctx)
	if err != nil {
		return err
	}

	runner := NewMigrationRunner(p.driver)
	migrations, err := runner.LoadMigrations(current, target)
	if errors.Is(err, ErrMigrateCurrentVersionSameAsTarget) {
		p.logger.Debug("Schema is up to date", "version", current)
		return nil
	} else if err != nil {
		return err
	}

	for _, m := range migrations {
		if err := p.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %04d_%s: %w", m.Version, m.Name, err)
		}
		p.logger.Info("Applied migration", "version", m.Version, "name", m.Name, "up", m.Up)
	}
	return nil
}

func (p *SQLProvider) applyMigration(ctx context.Context, m SchemaMigration) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}

	if m.Up {
		_, err = tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.Version)
	} else {
		_, err = tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", m.Version)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}
