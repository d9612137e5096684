// Package journal persists drained engine event batches to SQLite so
// sessions can be inspected after the fact.
package journal

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cristianvogel/elementary/js"
)

// Journal is an append-only event log backed by SQLite.
type Journal struct {
	db *sql.DB
	mu sync.Mutex
}

// Entry is one recorded event row.
type Entry struct {
	ID      int64
	Session string
	Type    string
	Payload string // event payload as JSON text
	At      time.Time
}

// Open creates or opens a journal database at dbPath.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("journal: opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		type TEXT NOT NULL,
		payload JSON NOT NULL,
		at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: creating table: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends every event in a drained batch, in batch order,
// tagged with the session it came from. Events whose payload cannot
// serialize (a Function smuggled into an event) are skipped with an
// error rather than aborting the rest of the batch.
func (j *Journal) Record(session string, batch js.Value) error {
	if !batch.IsArray() {
		return fmt.Errorf("journal: batch is %s, want array", batch.Kind())
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("journal: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO events (session, type, payload, at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("journal: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	var firstErr error
	for _, wrapped := range batch.Array() {
		if !wrapped.IsObject() {
			if firstErr == nil {
				firstErr = fmt.Errorf("journal: event is %s, want object", wrapped.Kind())
			}
			continue
		}
		eventType := js.GetWithDefault(wrapped, "type", "")
		payload := wrapped.GetWithDefault("event", js.Null())

		text, err := js.SerializeJSON(payload)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("journal: %s event: %w", eventType, err)
			}
			continue
		}
		if _, err := stmt.Exec(session, eventType, text, now); err != nil {
			return fmt.Errorf("journal: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("journal: commit: %w", err)
	}
	return firstErr
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	rows, err := j.db.Query(
		"SELECT id, session, type, payload, at FROM events ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Session, &e.Type, &e.Payload, &e.At); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountBySession returns how many events each session recorded.
func (j *Journal) CountBySession() (map[string]int, error) {
	rows, err := j.db.Query("SELECT session, COUNT(*) FROM events GROUP BY session")
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var session string
		var n int
		if err := rows.Scan(&session, &n); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		counts[session] = n
	}
	return counts, rows.Err()
}
