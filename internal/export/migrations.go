package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CurrentSchemaVersion tracks the database schema version
const CurrentSchemaVersion = "1.2.0"

// Migration is one forward step of the export schema.
type Migration struct {
	Version string
	Up      string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{Version: "1.0.0", Up: migrationV1Up},
	{Version: "1.1.0", Up: migrationV11Up},
	{Version: "1.2.0", Up: migrationV12Up},
}

const migrationV1Up = `
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS objects (
    path TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    kind TEXT NOT NULL,
    namespace TEXT NOT NULL,
    file TEXT,
    line INTEGER,
    visibility TEXT NOT NULL,
    scope TEXT NOT NULL,
    grp TEXT,
    signature TEXT,
    docstring TEXT,
    superclass TEXT,
    alias_of TEXT,
    value TEXT,
    explicit INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_objects_namespace ON objects(namespace);
CREATE INDEX IF NOT EXISTS idx_objects_kind ON objects(kind);

CREATE TABLE IF NOT EXISTS object_files (
    object_path TEXT NOT NULL,
    file TEXT NOT NULL,
    line INTEGER NOT NULL,
    FOREIGN KEY (object_path) REFERENCES objects(path) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS tags (
    object_path TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    types TEXT,
    subject TEXT,
    title TEXT,
    text TEXT,
    PRIMARY KEY (object_path, position),
    FOREIGN KEY (object_path) REFERENCES objects(path) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tags_name ON tags(name);

CREATE TABLE IF NOT EXISTS parameters (
    object_path TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    default_value TEXT,
    PRIMARY KEY (object_path, position),
    FOREIGN KEY (object_path) REFERENCES objects(path) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS mixins (
    object_path TEXT NOT NULL,
    kind TEXT NOT NULL,
    target TEXT NOT NULL,
    FOREIGN KEY (object_path) REFERENCES objects(path) ON DELETE CASCADE
);
`

// 1.1.0: attribute access and the undocumented view used by `stats`.
const migrationV11Up = `
ALTER TABLE objects ADD COLUMN attr_read INTEGER NOT NULL DEFAULT 0;
ALTER TABLE objects ADD COLUMN attr_write INTEGER NOT NULL DEFAULT 0;

CREATE VIEW IF NOT EXISTS undocumented AS
SELECT o.path, o.kind, o.file, o.line
FROM objects o
WHERE o.kind != 'root'
  AND o.explicit = 1
  AND o.visibility = 'public'
  AND (o.alias_of IS NULL OR o.alias_of = '')
  AND TRIM(COALESCE(o.docstring, '')) = ''
  AND NOT EXISTS (SELECT 1 FROM tags t WHERE t.object_path = o.path);
`

// 1.2.0: tags copied from an enclosing namespace do not count as docs.
const migrationV12Up = `
ALTER TABLE tags ADD COLUMN inherited INTEGER NOT NULL DEFAULT 0;

DROP VIEW IF EXISTS undocumented;
CREATE VIEW undocumented AS
SELECT o.path, o.kind, o.file, o.line
FROM objects o
WHERE o.kind != 'root'
  AND o.explicit = 1
  AND o.visibility = 'public'
  AND (o.alias_of IS NULL OR o.alias_of = '')
  AND TRIM(COALESCE(o.docstring, '')) = ''
  AND NOT EXISTS (SELECT 1 FROM tags t WHERE t.object_path = o.path AND t.inherited = 0);
`

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	current, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}
	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}
		if !current.LessThan(migrationVersion) {
			continue
		}
		if _, err := db.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}
		current = migrationVersion
	}
	return nil
}

// schemaVersion returns the last applied version, 0.0.0 for a fresh database.
func schemaVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)
	if errors.Is(err, sql.ErrNoRows) {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check schema_version table: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}
	defer func() { _ = rows.Close() }()

	latest := semver.MustParse("0.0.0")
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		v, err := semver.NewVersion(s)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %s: %w", s, err)
		}
		if latest.LessThan(v) {
			latest = v
		}
	}
	return latest, rows.Err()
}
