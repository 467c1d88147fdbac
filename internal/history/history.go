// Package history keeps a local SQLite log of filed bugs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DefaultLimit is used by Recent for a non-positive limit.
const DefaultLimit = 20

// Entry is one filed bug.
type Entry struct {
	ID          string    `json:"id"`
	ItemID      string    `json:"itemId"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	BoardID     string    `json:"boardId"`
	GroupID     string    `json:"groupId"`
	Diagnostics []string  `json:"diagnostics,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store is a SQLite-backed filing log.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS filings (
			id TEXT PRIMARY KEY,
			item_id TEXT NOT NULL,
			name TEXT NOT NULL,
			url TEXT,
			board_id TEXT NOT NULL,
			group_id TEXT NOT NULL,
			diagnostics TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_filings_created ON filings(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record stores e, assigning ID and CreatedAt when unset.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	var diagnostics []byte
	if len(e.Diagnostics) > 0 {
		var err error
		diagnostics, err = json.Marshal(e.Diagnostics)
		if err != nil {
			return Entry{}, fmt.Errorf("failed to encode diagnostics: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO filings (id, item_id, name, url, board_id, group_id, diagnostics, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ItemID, e.Name, e.URL, e.BoardID, e.GroupID, string(diagnostics), e.CreatedAt.Format(timeLayout))
	if err != nil {
		return Entry{}, fmt.Errorf("failed to record filing: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, item_id, name, url, board_id, group_id, diagnostics, created_at
		 FROM filings ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e           Entry
			url         sql.NullString
			diagnostics sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&e.ID, &e.ItemID, &e.Name, &url, &e.BoardID, &e.GroupID, &diagnostics, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		e.URL = url.String
		if diagnostics.String != "" {
			if err := json.Unmarshal([]byte(diagnostics.String), &e.Diagnostics); err != nil {
				return nil, fmt.Errorf("failed to decode diagnostics: %w", err)
			}
		}
		if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
