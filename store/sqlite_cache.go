// ABOUTME: SQLite-backed index mirroring session metadata for fast prefix and title-substring lookups.
// ABOUTME: Always rebuildable from the JSON metadata index; never the source of truth for session data.

package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteCache mirrors session summaries into a SQLite database so the
// resolver (component J) can do a prefix or substring lookup without a
// linear scan of every session in the JSON metadata index. It is always
// rebuildable from that index and never written to ahead of it.
type SqliteCache struct {
	db *sql.DB
}

// OpenSqliteCache opens or creates the cache database at path and ensures
// its schema exists.
func OpenSqliteCache(path string) (*SqliteCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			created TEXT NOT NULL,
			updated TEXT NOT NULL,
			message_count INTEGER NOT NULL
		);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &SqliteCache{db: db}, nil
}

// Close closes the underlying database connection.
func (c *SqliteCache) Close() error {
	return c.db.Close()
}

// Upsert writes or overwrites a session's cached summary row.
func (c *SqliteCache) Upsert(summary SessionSummary) error {
	_, err := c.db.Exec(`
		INSERT INTO sessions (session_id, title, created, updated, message_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			title=excluded.title,
			created=excluded.created,
			updated=excluded.updated,
			message_count=excluded.message_count`,
		summary.ID, summary.Title, summary.Created, summary.Updated, summary.MessageCount)
	if err != nil {
		return fmt.Errorf("upsert session cache row: %w", err)
	}
	return nil
}

// Rebuild clears the cache and repopulates it from the given summaries,
// which should come from Store.ListSessions (the source of truth). Used
// whenever the cache is found to be stale or absent.
func (c *SqliteCache) Rebuild(summaries []SessionSummary) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin rebuild tx: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear cache: %w", err)
	}

	for _, summary := range summaries {
		_, err := tx.Exec(`
			INSERT INTO sessions (session_id, title, created, updated, message_count)
			VALUES (?, ?, ?, ?, ?)`,
			summary.ID, summary.Title, summary.Created, summary.Updated, summary.MessageCount)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert cache row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild tx: %w", err)
	}
	return nil
}

// FindByPrefix returns ids of sessions whose id starts with prefix,
// ordered most-recently-updated first.
func (c *SqliteCache) FindByPrefix(prefix string) ([]string, error) {
	return c.queryIDs(
		"SELECT session_id FROM sessions WHERE session_id LIKE ? ORDER BY updated DESC",
		prefix+"%")
}

// FindByTitleSubstring returns ids of sessions whose title contains
// substr (case-insensitive), ordered most-recently-updated first.
func (c *SqliteCache) FindByTitleSubstring(substr string) ([]string, error) {
	return c.queryIDs(
		"SELECT session_id FROM sessions WHERE title LIKE ? ORDER BY updated DESC",
		"%"+substr+"%")
}

func (c *SqliteCache) queryIDs(query string, arg string) ([]string, error) {
	rows, err := c.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan cache row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
