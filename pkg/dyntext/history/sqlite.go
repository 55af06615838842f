package history

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists history to SQLite.
// It is suitable for single-process use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite history store.
// The path should be a file path (e.g., "./history.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			run_id TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			cycle INTEGER NOT NULL,
			node_id TEXT NOT NULL,
			template TEXT NOT NULL,
			text TEXT NOT NULL,
			counter INTEGER NOT NULL,
			idx INTEGER NOT NULL,
			total INTEGER NOT NULL,
			path TEXT NOT NULL,
			cached INTEGER NOT NULL,
			error TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			PRIMARY KEY (run_id, sequence)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_history_node
		ON history(run_id, node_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	// Sequence is max + 1 within the run.
	_, err := s.db.Exec(`
		INSERT INTO history (
			run_id, sequence, cycle, node_id, template, text,
			counter, idx, total, path, cached, error, timestamp
		)
		VALUES (
			?,
			COALESCE((SELECT MAX(sequence) FROM history WHERE run_id = ?), 0) + 1,
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
	`, e.RunID, e.RunID, e.Cycle, e.NodeID, e.Template, e.Text,
		e.Counter, e.Index, e.Total, e.Path, e.Cached, e.Error,
		e.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT run_id, sequence, cycle, node_id, template, text,
	       counter, idx, total, path, cached, error, timestamp
	FROM history`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var e Entry
	var timestamp string
	err := sc.Scan(&e.RunID, &e.Sequence, &e.Cycle, &e.NodeID, &e.Template, &e.Text,
		&e.Counter, &e.Index, &e.Total, &e.Path, &e.Cached, &e.Error, &timestamp)
	if err != nil {
		return Entry{}, err
	}
	e.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
	return e, nil
}

// List implements Store.
func (s *SQLiteStore) List(runID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(selectColumns+`
		WHERE run_id = ?
		ORDER BY sequence
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// Last implements Store.
func (s *SQLiteStore) Last(runID, nodeID string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Entry{}, ErrStoreClosed
	}

	row := s.db.QueryRow(selectColumns+`
		WHERE run_id = ? AND node_id = ?
		ORDER BY sequence DESC
		LIMIT 1
	`, runID, nodeID)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("load history entry: %w", err)
	}
	return e, nil
}

// DeleteRun implements Store.
func (s *SQLiteStore) DeleteRun(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM history WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("delete run history: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
