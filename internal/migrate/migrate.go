// Package migrate applies the embedded schema migrations for the configured
// dialect, tracking applied versions in a schema_migrations table.
// Migration files live under sql/<driver>/ and are named 0001_name.sql, 0002_other.sql.
package migrate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"sort"

	"github.com/jmoiron/sqlx"
)

//go:embed sql
var sqlFS embed.FS

const tableName = "schema_migrations"

var migrationFileRe = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

// Migration is one applied file.
type Migration struct {
	Version string
	Name    string
	body    string
}

func (m Migration) File() string {
	return m.Version + "_" + m.Name + ".sql"
}

// Run applies every pending migration for db.DriverName() in version order and
// returns the ones it applied. Running it against an up-to-date database is a no-op.
func Run(ctx context.Context, db *sqlx.DB, logger *slog.Logger) ([]Migration, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pending, err := Pending(ctx, db)
	if err != nil {
		return nil, err
	}

	var done []Migration
	for _, m := range pending {
		if err := apply(ctx, db, m); err != nil {
			return done, fmt.Errorf("apply %s: %w", m.File(), err)
		}
		logger.Info("migration applied", "version", m.Version, "name", m.Name, "driver", db.DriverName())
		done = append(done, m)
	}
	return done, nil
}

// Pending lists the migrations Run would apply.
func Pending(ctx context.Context, db *sqlx.DB) ([]Migration, error) {
	all, err := load(db.DriverName())
	if err != nil {
		return nil, err
	}
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure migrations table: %w", err)
	}
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}

	var pending []Migration
	for _, m := range all {
		if !applied[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

func load(driverName string) ([]Migration, error) {
	dir := path.Join("sql", driverName)
	entries, err := fs.ReadDir(sqlFS, dir)
	if err != nil {
		return nil, fmt.Errorf("no migrations for driver %q: %w", driverName, err)
	}

	var out []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		version, name, ok := parseMigrationFilename(e.Name())
		if !ok {
			continue
		}
		body, err := fs.ReadFile(sqlFS, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		out = append(out, Migration{Version: version, Name: name, body: string(body)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func ensureMigrationsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+tableName+` (
			version    TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func appliedVersions(ctx context.Context, db *sqlx.DB) (map[string]bool, error) {
	var versions []string
	if err := db.SelectContext(ctx, &versions, "SELECT version FROM "+tableName); err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(versions))
	for _, v := range versions {
		out[v] = true
	}
	return out, nil
}

func parseMigrationFilename(filename string) (version, name string, ok bool) {
	m := migrationFileRe.FindStringSubmatch(filename)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func apply(ctx context.Context, db *sqlx.DB, m Migration) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.body); err != nil {
		return err
	}
	insert := tx.Rebind("INSERT INTO " + tableName + " (version, name) VALUES (?, ?)")
	if _, err := tx.ExecContext(ctx, insert, m.Version, m.Name); err != nil {
		return err
	}
	return tx.Commit()
}
