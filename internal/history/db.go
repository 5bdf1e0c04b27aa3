package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrEmpty is returned by Last when there is nothing left to undo.
var ErrEmpty = errors.New("no renames recorded")

const schema = `
CREATE TABLE IF NOT EXISTS renames (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    old_path TEXT NOT NULL,
    new_path TEXT NOT NULL,
    heading TEXT NOT NULL DEFAULT '',
    renamed_at INTEGER NOT NULL,
    undone INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_renames_renamed_at ON renames(renamed_at);
`

// Entry is a single journaled rename.
type Entry struct {
	ID        int64
	OldPath   string
	NewPath   string
	Heading   string
	RenamedAt time.Time
	Undone    bool
}

// DB wraps the SQLite rename journal.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the journal at the given path.
func Open(path string) (*DB, error) {
	return open(path + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
}

// OpenMemory opens an in-memory journal (for testing).
func OpenMemory() (*DB, error) {
	return open(":memory:")
}

func open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps :memory: databases alive across calls and
	// serializes writers.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, fmt.Errorf("init schema: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Record stores a rename and returns its ID.
func (db *DB) Record(e Entry) (int64, error) {
	if e.RenamedAt.IsZero() {
		e.RenamedAt = time.Now()
	}
	res, err := db.conn.Exec(`
		INSERT INTO renames (old_path, new_path, heading, renamed_at)
		VALUES (?, ?, ?, ?)
	`, e.OldPath, e.NewPath, e.Heading, e.RenamedAt.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("record rename: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent renames, newest first. A limit of zero or
// less returns all of them.
func (db *DB) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(`
		SELECT id, old_path, new_path, heading, renamed_at, undone
		FROM renames
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list renames: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Last returns the most recent rename that has not been undone.
func (db *DB) Last() (Entry, error) {
	row := db.conn.QueryRow(`
		SELECT id, old_path, new_path, heading, renamed_at, undone
		FROM renames
		WHERE undone = 0
		ORDER BY id DESC
		LIMIT 1
	`)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrEmpty
	}
	return e, err
}

// MarkUndone flags a rename as reverted.
func (db *DB) MarkUndone(id int64) error {
	res, err := db.conn.Exec("UPDATE renames SET undone = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark undone: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("mark undone: no rename with id %d", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var e Entry
	var at int64
	var undone int
	if err := s.Scan(&e.ID, &e.OldPath, &e.NewPath, &e.Heading, &at, &undone); err != nil {
		return Entry{}, err
	}
	e.RenamedAt = time.Unix(0, at)
	e.Undone = undone != 0
	return e, nil
}
