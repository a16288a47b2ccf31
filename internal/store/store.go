// Package store provides the SQLite-backed grocery item store.
//
// The database runs in embedded mode using ncruces/go-sqlite3 (CGO-free,
// WASM-compiled SQLite) with WAL enabled so readers are not blocked by
// writers.
//
// Schema:
//   - groceries: id (AUTOINCREMENT), name, quantity, checked
//
// Ids are assigned by SQLite's AUTOINCREMENT and are never reused, even
// after a row is deleted.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Sentinel errors returned by store operations. Callers map these to
// HTTP status codes with errors.Is.
var (
	// ErrNotFound is returned when no item with the given id exists.
	ErrNotFound = errors.New("not found")

	// ErrNameRequired is returned when a create or update supplies an
	// empty name.
	ErrNameRequired = errors.New("name required")

	// ErrNoFields is returned when an update patch contains none of the
	// recognized fields.
	ErrNoFields = errors.New("no fields to update")
)

// Item is a single grocery list entry.
//
// Checked is an integer flag (0 or 1) rather than a bool so the JSON wire
// format matches the persisted column exactly.
type Item struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Checked  int64  `json:"checked"`
}

// Fields is a partial update patch. Nil pointers mean "leave unchanged".
type Fields struct {
	Name     *string `json:"name,omitempty"`
	Quantity *int64  `json:"quantity,omitempty"`
	Checked  *int64  `json:"checked,omitempty"`
}

// Empty reports whether the patch carries no recognized fields.
func (f Fields) Empty() bool {
	return f.Name == nil && f.Quantity == nil && f.Checked == nil
}

// Store wraps the SQLite database holding grocery items.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates a new database connection at the specified path.
//
// The parent directory is created if needed. WAL mode and a busy timeout
// are enabled so concurrent requests serialize on the engine rather than
// failing immediately. The caller MUST call Close() when done.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{conn: conn, path: path}

	if _, err := s.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return s, nil
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
// Performs a WAL checkpoint to ensure all changes are persisted.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.conn = nil
	return nil
}

// InitSchema creates the groceries table if it doesn't exist.
// Idempotent - safe to call on every startup.
func (s *Store) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS groceries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		quantity INTEGER DEFAULT 1,
		checked INTEGER DEFAULT 0
	);
	`

	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// List returns all items, most recently created first.
func (s *Store) List(ctx context.Context) ([]Item, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, quantity, checked FROM groceries ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list groceries: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// Create inserts a new item and returns the stored row.
//
// An empty name yields ErrNameRequired. A quantity of zero (or less than
// zero coerced by the caller to zero) falls back to the default of 1,
// matching the behavior clients already rely on.
func (s *Store) Create(ctx context.Context, name string, quantity int64) (*Item, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if quantity == 0 {
		quantity = 1
	}

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO groceries (name, quantity) VALUES (?, ?)`, name, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to insert grocery: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted id: %w", err)
	}

	return s.Get(ctx, id)
}

// Get retrieves a single item by id. Returns ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id int64) (*Item, error) {
	var it Item
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, name, quantity, checked FROM groceries WHERE id = ?`, id).
		Scan(&it.ID, &it.Name, &it.Quantity, &it.Checked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query grocery %d: %w", id, err)
	}
	return &it, nil
}

// Update applies a partial patch to the item with the given id and
// returns the updated row.
//
// Only the supplied fields change; the update is a single statement so
// concurrent writers interleave at row granularity (last write wins).
// An empty patch yields ErrNoFields, an empty name ErrNameRequired, and
// a missing id ErrNotFound.
func (s *Store) Update(ctx context.Context, id int64, patch Fields) (*Item, error) {
	if patch.Empty() {
		return nil, ErrNoFields
	}
	if patch.Name != nil && *patch.Name == "" {
		return nil, ErrNameRequired
	}

	var sets []string
	var args []interface{}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *patch.Quantity)
	}
	if patch.Checked != nil {
		sets = append(sets, "checked = ?")
		args = append(args, *patch.Checked)
	}
	args = append(args, id)

	query := `UPDATE groceries SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update grocery %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return s.Get(ctx, id)
}

// Delete removes the item with the given id permanently.
// Returns ErrNotFound if no such item exists.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM groceries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete grocery %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Count returns the total number of items in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM groceries`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count groceries: %w", err)
	}
	return count, nil
}

// scanItems is a helper to scan multiple items from query results.
func scanItems(rows *sql.Rows) ([]Item, error) {
	items := []Item{}

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Quantity, &it.Checked); err != nil {
			return nil, fmt.Errorf("failed to scan grocery: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groceries: %w", err)
	}

	return items, nil
}
