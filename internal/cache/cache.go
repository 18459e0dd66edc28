// Package cache stores rendered notice bodies in SQLite so detail views
// and prerender jobs can skip unchanged notices.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS rendered (
	key            TEXT PRIMARY KEY,
	content_hash   TEXT NOT NULL,
	title          TEXT NOT NULL DEFAULT '',
	html           TEXT NOT NULL,
	tables         INTEGER NOT NULL DEFAULT 0,
	rendered_at    INTEGER NOT NULL,
	created_at     TEXT NOT NULL DEFAULT '',
	has_attachment INTEGER NOT NULL DEFAULT 0,
	link           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS rendered_at_idx ON rendered(rendered_at);
`

// addedColumns were introduced after the first schema. Databases created
// before them are altered on open.
var addedColumns = []struct{ name, def string }{
	{"created_at", "TEXT NOT NULL DEFAULT ''"},
	{"has_attachment", "INTEGER NOT NULL DEFAULT 0"},
	{"link", "TEXT NOT NULL DEFAULT ''"},
}

// Entry is one cached render with the notice metadata needed to serve it
// when the backend is down.
type Entry struct {
	Key           string
	ContentHash   string
	Title         string
	CreatedAt     string
	HasAttachment bool
	Link          string
	HTML          string
	Tables        int
	RenderedAt    time.Time
}

type Store struct {
	db *sql.DB
}

// Key builds the cache key of a board notice.
func Key(board, id string) string {
	return board + "/" + id
}

// Open opens or creates the cache database at path.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	rows, err := db.Query(`SELECT name FROM pragma_table_info('rendered')`)
	if err != nil {
		return fmt.Errorf("inspect cache schema: %w", err)
	}
	have := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fmt.Errorf("inspect cache schema: %w", err)
		}
		have[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect cache schema: %w", err)
	}
	for _, c := range addedColumns {
		if have[c.name] {
			continue
		}
		if _, err := db.Exec(`ALTER TABLE rendered ADD COLUMN ` + c.name + ` ` + c.def); err != nil {
			return fmt.Errorf("add cache column %s: %w", c.name, err)
		}
	}
	return nil
}

// Get returns the entry for key, or nil when there is none.
func (s *Store) Get(ctx context.Context, key string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT key, content_hash, title, created_at, has_attachment, link, html, tables, rendered_at
FROM rendered WHERE key = ?`, key)
	var e Entry
	var at int64
	err := row.Scan(&e.Key, &e.ContentHash, &e.Title, &e.CreatedAt, &e.HasAttachment, &e.Link, &e.HTML, &e.Tables, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	e.RenderedAt = time.Unix(at, 0)
	return &e, nil
}

// Put inserts or replaces an entry. A zero RenderedAt is set to now.
func (s *Store) Put(ctx context.Context, e Entry) error {
	if e.RenderedAt.IsZero() {
		e.RenderedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO rendered (key, content_hash, title, created_at, has_attachment, link, html, tables, rendered_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	content_hash   = excluded.content_hash,
	title          = excluded.title,
	created_at     = excluded.created_at,
	has_attachment = excluded.has_attachment,
	link           = excluded.link,
	html           = excluded.html,
	tables         = excluded.tables,
	rendered_at    = excluded.rendered_at`,
		e.Key, e.ContentHash, e.Title, e.CreatedAt, e.HasAttachment, e.Link, e.HTML, e.Tables, e.RenderedAt.Unix())
	if err != nil {
		return fmt.Errorf("put %s: %w", e.Key, err)
	}
	return nil
}

// Cleanup deletes entries rendered before now minus olderThan and
// returns how many were removed.
func (s *Store) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM rendered WHERE rendered_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup cache: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of cached entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rendered`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
