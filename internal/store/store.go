package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Palette is the set of colors the UI offers for notes. A note without an
// explicit color is stored with the first entry.
var Palette = []string{
	"#ffe66d",
	"#ff6b6b",
	"#4ecdc4",
	"#95e1d3",
	"#a8d8ea",
	"#c7aee8",
}

// DefaultColor is assigned when a note is created without a color.
func DefaultColor() string { return Palette[0] }

// DefaultConversation groups notes created without a conversation id.
const DefaultConversation = "default"

// Store owns the SQLite connection. All reads and writes go through it; the
// driver serializes statements on the single shared handle.
type Store struct {
	db          *sql.DB
	lockTimeout time.Duration
	now         func() int64
}

type OpenOptions struct {
	BusyTimeout time.Duration
	LockTimeout time.Duration
}

func Open(path string) (*Store, error) {
	return OpenWithOptions(path, OpenOptions{})
}

func OpenWithOptions(path string, opts OpenOptions) (*Store, error) {
	busy := opts.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d&_journal_mode=WAL",
		path, busy.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(1)
	lock := opts.LockTimeout
	if lock <= 0 {
		lock = 2 * time.Second
	}
	return &Store{db: db, lockTimeout: lock, now: func() int64 { return time.Now().Unix() }}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) SetLockTimeout(d time.Duration) {
	s.lockTimeout = d
}

// Init creates the schema and records its version. A version mismatch on an
// existing database is surfaced rather than silently migrated.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	version, err := s.currentSchemaVersion(ctx)
	if err != nil {
		return err
	}
	if version == 0 {
		return s.setSchemaVersion(ctx, schemaVersion)
	}
	if version != schemaVersion {
		return fmt.Errorf("schema version %d, want %d", version, schemaVersion)
	}
	return nil
}

func (s *Store) currentSchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

func (s *Store) setSchemaVersion(ctx context.Context, v int) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "INSERT INTO schema_version(version) VALUES(?)", v)
	return err
}
