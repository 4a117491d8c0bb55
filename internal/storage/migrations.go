// Schema migrations for SQL session providers.
//
// Migration SQL is embedded from migrations/<driver>/ and named
// NNNN_name.up.sql or NNNN_name.down.sql. Version is a four digit integer,
// direction is "up" (apply) or "down" (rollback). Adding a migration requires
// rebuilding the binary.

package storage

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strconv"
)

//go:embed migrations/**/*.sql
var migrationsFS embed.FS

var reMigrationFilename = regexp.MustCompile(`^(?P<Version>\d{4})\_(?P<Name>[^.]+)\.(?P<Direction>(up|down))\.sql$`)

var migrationDirs = map[string]string{
	"sqlite3": "migrations/sqlite3",
}

var (
	ErrMigrateCurrentVersionSameAsTarget = errors.New("current version is the same as target version")
	ErrUnsupportedMigrationDriver        = errors.New("unsupported migration driver")
)

// SchemaMigration represents a single database migration
type SchemaMigration struct {
	Version int
	Name    string
	Up      bool
	SQL     string
}

type MigrationRunner struct {
	driver string
	fsys   fs.FS
	logger *slog.Logger
}

func NewMigrationRunner(driver string) *MigrationRunner {
	return &MigrationRunner{
		driver: driver,
		fsys:   migrationsFS,
		logger: slog.With("component", "migrations", "driver", driver),
	}
}

// readAll parses every migration file for the driver. Unparseable names are skipped.
func (mr *MigrationRunner) readAll() ([]SchemaMigration, error) {
	dir, ok := migrationDirs[mr.driver]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMigrationDriver, mr.driver)
	}

	entries, err := fs.ReadDir(mr.fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var migrations []SchemaMigration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m, err := mr.parseMigrationFile(path.Join(dir, entry.Name()))
		if err != nil {
			mr.logger.Warn("Failed to parse migration file", "file", entry.Name(), "error", err)
			continue
		}
		migrations = append(migrations, m)
	}
	return migrations, nil
}

// LatestVersion returns the highest "up" migration version available.
func (mr *MigrationRunner) LatestVersion() (int, error) {
	all, err := mr.readAll()
	if err != nil {
		return -1, err
	}

	latest := 0
	for _, m := range all {
		if m.Up && m.Version > latest {
			latest = m.Version
		}
	}
	return latest, nil
}

// LoadMigrations returns the ordered migrations taking the schema from prior to target.
// A target of -1 means the latest version, 0 means the empty schema.
func (mr *MigrationRunner) LoadMigrations(prior int, target int) ([]SchemaMigration, error) {
	if target == -1 {
		latest, err := mr.LatestVersion()
		if err != nil {
			return nil, fmt.Errorf("failed to get latest migration version: %w", err)
		}
		target = latest
	}

	if prior == target {
		return nil, ErrMigrateCurrentVersionSameAsTarget
	}

	all, err := mr.readAll()
	if err != nil {
		return nil, err
	}

	var selected []SchemaMigration
	for _, m := range all {
		if skipMigration(m, prior, target) {
			continue
		}
		selected = append(selected, m)
	}

	up := prior < target
	sort.Slice(selected, func(i, j int) bool {
		if up {
			return selected[i].Version < selected[j].Version
		}
		return selected[i].Version > selected[j].Version
	})

	mr.logger.Debug("Loaded migrations", "count", len(selected), "from_version", prior, "to_version", target)
	return selected, nil
}

func skipMigration(m SchemaMigration, current int, target int) bool {
	if target > current {
		// Going up: only up migrations in (current, target]
		return !m.Up || m.Version <= current || m.Version > target
	}
	// Going down: only down migrations in (target, current]
	return m.Up || m.Version <= target || m.Version > current
}

func (mr *MigrationRunner) parseMigrationFile(name string) (SchemaMigration, error) {
	parts := reMigrationFilename.FindStringSubmatch(path.Base(name))
	if parts == nil {
		return SchemaMigration{}, fmt.Errorf("invalid migration filename: %s", path.Base(name))
	}

	body, err := fs.ReadFile(mr.fsys, name)
	if err != nil {
		return SchemaMigration{}, fmt.Errorf("failed to read migration file: %w", err)
	}

	version, _ := strconv.Atoi(parts[reMigrationFilename.SubexpIndex("Version")])
	return SchemaMigration{
		Version: version,
		Name:    parts[reMigrationFilename.SubexpIndex("Name")],
		Up:      parts[reMigrationFilename.SubexpIndex("Direction")] == "up",
		SQL:     string(body),
	}, nil
}
