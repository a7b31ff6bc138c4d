// Package journal keeps a local SQLite log of executed shelve mutations.
// It is an audit trail only: commit-to-changelist matching is recomputed
// from Perforce state on every run and never reads this log.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite"
)

const busyTimeoutMS = 5000

// Entry is one recorded shelve mutation.
type Entry struct {
	ID         int64     `json:"id"`
	Time       time.Time `json:"time"`
	Action     string    `json:"action"`
	Commit     string    `json:"commit"`
	Subject    string    `json:"subject,omitempty"`
	Changelist int       `json:"changelist,omitempty"`
	Client     string    `json:"client,omitempty"`
	User       string    `json:"user,omitempty"`
}

// Store wraps the SQLite database holding the journal.
type Store struct {
	db *sql.DB
}

// Open opens the journal database, creating the schema if needed.
func Open(path string) (*Store, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := configureDB(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends one entry. The entry's time defaults to now.
func (s *Store) Record(ctx context.Context, e Entry) error {
	when := e.Time
	if when.IsZero() {
		when = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shelve_log (recorded_at, action, commit_sha, subject, changelist, client, user)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		when.Format(time.RFC3339Nano), e.Action, e.Commit, e.Subject, e.Changelist, e.Client, e.User)
	if err != nil {
		return fmt.Errorf("record journal entry: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := "SELECT id, recorded_at, action, commit_sha, subject, changelist, client, user FROM shelve_log ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var recordedAt string
		if err := rows.Scan(&e.ID, &recordedAt, &e.Action, &e.Commit, &e.Subject, &e.Changelist, &e.Client, &e.User); err != nil {
			return nil, err
		}
		if t, perr := time.Parse(time.RFC3339Nano, recordedAt); perr == nil {
			e.Time = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes all but the newest keep entries and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM shelve_log WHERE id NOT IN (
			SELECT id FROM shelve_log ORDER BY id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	return res.RowsAffected()
}

func configureDB(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		fmt.Sprintf("PRAGMA busy_timeout = %d;", busyTimeoutMS),
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS shelve_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  recorded_at TEXT NOT NULL,
  action TEXT NOT NULL,
  commit_sha TEXT NOT NULL,
  subject TEXT,
  changelist INTEGER NOT NULL DEFAULT 0,
  client TEXT,
  user TEXT
);

CREATE INDEX IF NOT EXISTS idx_shelve_log_commit ON shelve_log(commit_sha);
`)
	if err != nil {
		return fmt.Errorf("create journal schema: %w", err)
	}
	return nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("journal path is required")
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String(), nil
}
