// Package store keeps a local ledger of completed fetches in SQLite, the
// way the teacher's internal/db package keeps its mailbox schema: open with
// mattn/go-sqlite3, turn on foreign keys, CREATE TABLE IF NOT EXISTS for
// whatever this package owns.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store records one row per completed FETCH, so a caller can tell whether a
// given mailbox/UID/section has already been retrieved.
type Store struct {
	db *sql.DB
}

// Open creates (or reuses) the SQLite file at path and ensures the fetches
// table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}
	if err := createFetchesTable(db); err != nil {
		return nil, fmt.Errorf("store: create fetches table: %w", err)
	}
	return &Store{db: db}, nil
}

func createFetchesTable(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS fetches (
		id INTEGER PRIMARY KEY,
		host TEXT NOT NULL,
		mailbox TEXT NOT NULL,
		uid_validity TEXT,
		uid TEXT NOT NULL,
		section TEXT,
		bytes_fetched INTEGER NOT NULL,
		mechanism TEXT,
		tls_used BOOLEAN NOT NULL,
		fetched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Fetch is one row of the ledger.
type Fetch struct {
	Host         string
	Mailbox      string
	UIDValidity  string
	UID          string
	Section      string
	BytesFetched int
	Mechanism    string
	TLSUsed      bool
	FetchedAt    time.Time
}

// Record inserts one completed fetch.
func (s *Store) Record(f Fetch) error {
	_, err := s.db.Exec(
		`INSERT INTO fetches (host, mailbox, uid_validity, uid, section, bytes_fetched, mechanism, tls_used)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Host, f.Mailbox, f.UIDValidity, f.UID, f.Section, f.BytesFetched, f.Mechanism, f.TLSUsed,
	)
	if err != nil {
		return fmt.Errorf("store: record fetch: %w", err)
	}
	return nil
}

// Seen reports whether host/mailbox/uid has already been fetched, so a
// caller can skip re-downloading an unchanged message.
func (s *Store) Seen(host, mailbox, uid string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM fetches WHERE host = ? AND mailbox = ? AND uid = ?`,
		host, mailbox, uid,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("store: query seen: %w", err)
	}
	return count > 0, nil
}

// Recent returns the most recent n fetch rows, newest first.
func (s *Store) Recent(n int) ([]Fetch, error) {
	rows, err := s.db.Query(
		`SELECT host, mailbox, uid_validity, uid, section, bytes_fetched, mechanism, tls_used, fetched_at
		 FROM fetches ORDER BY id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("store: query recent: %w", err)
	}
	defer rows.Close()

	var out []Fetch
	for rows.Next() {
		var f Fetch
		if err := rows.Scan(&f.Host, &f.Mailbox, &f.UIDValidity, &f.UID, &f.Section,
			&f.BytesFetched, &f.Mechanism, &f.TLSUsed, &f.FetchedAt); err != nil {
			return nil, fmt.Errorf("store: scan recent: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
