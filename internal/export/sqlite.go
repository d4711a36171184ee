package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tome/internal/code"
	"tome/internal/logging"
	"tome/internal/registry"
	"tome/internal/version"
)

// DriverName is the database/sql name of the pure Go SQLite driver.
const DriverName = "sqlite"

// ErrNotFound is returned when a requested object doesn't exist
var ErrNotFound = errors.New("not found")

var log = logging.ForComponent("export")

// DB is an export database.
type DB struct {
	db *sql.DB
}

// ObjectRow is one row of the objects table.
type ObjectRow struct {
	Path       string
	Name       string
	Kind       string
	Namespace  string
	File       string
	Line       int
	Visibility string
	Scope      string
	Signature  string
	Docstring  string
	Superclass string
	AliasOf    string
	AttrRead   bool
	AttrWrite  bool
}

// TagRow is one row of the tags table.
type TagRow struct {
	Name    string
	Types   []string
	Subject string
	Title   string
	Text    string
}

// Open opens (or creates) the database at path and migrates it.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Write replaces the database contents with the store in one transaction.
func (d *DB) Write(ctx context.Context, store *registry.Store) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"mixins", "parameters", "tags", "object_files", "objects", "meta"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	insertMeta := `INSERT INTO meta (key, value) VALUES (?, ?)`
	for _, kv := range [][2]string{
		{"tool", version.Number},
		{"exported_at", time.Now().UTC().Format(time.RFC3339)},
	} {
		if _, err = tx.ExecContext(ctx, insertMeta, kv[0], kv[1]); err != nil {
			return fmt.Errorf("write meta: %w", err)
		}
	}

	n := 0
	for decl := range store.Each() {
		if err = insertObject(ctx, tx, n, decl); err != nil {
			return fmt.Errorf("export %s: %w", decl.DisplayPath(), err)
		}
		n++
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	log.Info("exported registry", "objects", n)
	return nil
}

func insertObject(ctx context.Context, tx *sql.Tx, position int, d *code.Declaration) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO objects (path, position, name, kind, namespace, file, line, visibility, scope,
			grp, signature, docstring, superclass, alias_of, value, explicit, attr_read, attr_write)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Path, position, d.Name, d.Kind.String(), d.Namespace, d.File, d.Line,
		d.Visibility.String(), d.Scope.String(), d.Group, d.Signature, d.Docstring.Text,
		d.Superclass, d.AliasOf, d.Value, d.Explicit, d.Attr.Read, d.Attr.Write,
	)
	if err != nil {
		return err
	}
	for _, f := range d.Files {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO object_files (object_path, file, line) VALUES (?, ?, ?)`,
			d.Path, f.File, f.Line); err != nil {
			return err
		}
	}
	for i, t := range d.Docstring.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tags (object_path, position, name, types, subject, title, text, inherited) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			d.Path, i, t.Name, strings.Join(t.Types, ", "), t.Subject, t.Title, t.Text, t.Inherited); err != nil {
			return err
		}
	}
	for i, p := range d.Parameters {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO parameters (object_path, position, name, default_value) VALUES (?, ?, ?, ?)`,
			d.Path, i, p.Name, p.Default); err != nil {
			return err
		}
	}
	for _, m := range d.Mixins {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO mixins (object_path, kind, target) VALUES (?, ?, ?)`,
			d.Path, m.Kind.String(), m.Path); err != nil {
			return err
		}
	}
	return nil
}

// Object reads one exported object back.
func (d *DB) Object(ctx context.Context, path string) (*ObjectRow, error) {
	var o ObjectRow
	err := d.db.QueryRowContext(ctx, `
		SELECT path, name, kind, namespace, file, line, visibility, scope, signature,
			docstring, superclass, alias_of, attr_read, attr_write
		FROM objects WHERE path = ?`, path).Scan(
		&o.Path, &o.Name, &o.Kind, &o.Namespace, &o.File, &o.Line, &o.Visibility, &o.Scope,
		&o.Signature, &o.Docstring, &o.Superclass, &o.AliasOf, &o.AttrRead, &o.AttrWrite,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", code.Display(path), ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Tags returns the exported tags of path in source order.
func (d *DB) Tags(ctx context.Context, path string) ([]TagRow, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT name, types, subject, title, text FROM tags WHERE object_path = ? ORDER BY position`, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []TagRow
	for rows.Next() {
		var t TagRow
		var types string
		if err := rows.Scan(&t.Name, &types, &t.Subject, &t.Title, &t.Text); err != nil {
			return nil, err
		}
		if types != "" {
			t.Types = strings.Split(types, ", ")
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Paths lists the exported object paths in registry order.
func (d *DB) Paths(ctx context.Context) ([]string, error) {
	return d.strings(ctx, `SELECT path FROM objects ORDER BY position`)
}

// Undocumented lists the paths of the undocumented view.
func (d *DB) Undocumented(ctx context.Context) ([]string, error) {
	return d.strings(ctx, `SELECT u.path FROM undocumented u JOIN objects o ON o.path = u.path ORDER BY o.position`)
}

func (d *DB) strings(ctx context.Context, query string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SchemaVersion reports the applied migration level.
func (d *DB) SchemaVersion(ctx context.Context) (string, error) {
	v, err := schemaVersion(ctx, d.db)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}
