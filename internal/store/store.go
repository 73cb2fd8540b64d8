package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sqlx.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.Get(&version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS tasks (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		priority     TEXT CHECK (priority IN ('low', 'medium', 'high')),
		deadline     TEXT,
		status       TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed')),
		tags         TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_status    ON tasks(status);
	CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks(completed_at);

	CREATE TABLE IF NOT EXISTS time_entries (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id          INTEGER REFERENCES tasks(id) ON DELETE SET NULL,
		kind             TEXT NOT NULL DEFAULT 'tracked' CHECK (kind IN ('tracked', 'manual', 'pomodoro')),
		start_time       TEXT NOT NULL,
		end_time         TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 0 CHECK (duration_minutes >= 0),
		notes            TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_entries_task  ON time_entries(task_id);
	CREATE INDEX IF NOT EXISTS idx_entries_start ON time_entries(start_time);

	CREATE TABLE IF NOT EXISTS active_session (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		task_id    INTEGER NOT NULL,
		start_time TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/corhyn/corhyn.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "corhyn", "corhyn.db"), nil
}
