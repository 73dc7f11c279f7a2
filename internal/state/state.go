// Package state provides the SQLite-backed per-day idempotency store. It
// records which sections were processed on a given calendar day so a
// non-"always" section is never synced more than once per day. Entries from
// prior days carry no meaning and are pruned.
package state

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS processed (
	day          TEXT NOT NULL,
	section_key  TEXT NOT NULL,
	processed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	count        INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (day, section_key)
);
`

// DayFormat is the layout for day keys.
const DayFormat = "2006-01-02"

// Day returns the day key for t.
func Day(t time.Time) string {
	return t.Format(DayFormat)
}

// Record describes one processed section for a day.
type Record struct {
	ProcessedAt time.Time
	Count       int
}

// Store defines idempotency-store operations. Consumers should depend on
// this interface rather than the concrete *DB type to ease testing.
type Store interface {
	Processed(day string) (map[string]Record, error)
	Mark(day, sectionKey string, count int) error
	Prune(before string) error
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// DB wraps a sql.DB with idempotency-store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("state: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("state: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("state: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Processed returns the sections already processed on day.
func (db *DB) Processed(day string) (map[string]Record, error) {
	rows, err := db.conn.Query(
		`SELECT section_key, processed_at, count FROM processed WHERE day = ?`, day)
	if err != nil {
		return nil, fmt.Errorf("state: query processed: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Record)
	for rows.Next() {
		var key string
		var rec Record
		if err := rows.Scan(&key, &rec.ProcessedAt, &rec.Count); err != nil {
			return nil, fmt.Errorf("state: scan processed: %w", err)
		}
		out[key] = rec
	}
	return out, rows.Err()
}

// Mark records that sectionKey was processed on day with count items. A
// repeated mark (forced re-run) replaces the earlier record.
func (db *DB) Mark(day, sectionKey string, count int) error {
	_, err := db.conn.Exec(`
		INSERT INTO processed (day, section_key, processed_at, count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(day, section_key) DO UPDATE SET
			processed_at = excluded.processed_at,
			count        = excluded.count
	`, day, sectionKey, time.Now().UTC(), count)
	if err != nil {
		return fmt.Errorf("state: mark processed: %w", err)
	}
	return nil
}

// Prune discards records for days before the given day key. Day keys sort
// lexicographically, so a plain string comparison is enough.
func (db *DB) Prune(before string) error {
	if _, err := db.conn.Exec(`DELETE FROM processed WHERE day < ?`, before); err != nil {
		return fmt.Errorf("state: prune: %w", err)
	}
	return nil
}
