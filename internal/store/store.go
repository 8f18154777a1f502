// Package store persists scraped conversations in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samvad-hq/okbot/internal/domain"

	_ "modernc.org/sqlite"
)

// Store handles all database operations.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the SQLite database at dbPath.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one connection keeps the foreign_keys pragma in effect and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS threads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site_id TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		thread_id INTEGER NOT NULL REFERENCES threads(id),
		site_id TEXT NOT NULL UNIQUE,
		body TEXT NOT NULL DEFAULT '',
		sender TEXT NOT NULL DEFAULT '',
		fancydate TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SaveThread records a thread and any of its messages not stored yet. Existing rows are
// left as they are. It returns the thread's row id.
func (s *Store) SaveThread(ctx context.Context, siteID string, msgs []domain.Message) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO threads (site_id) VALUES (?) ON CONFLICT(site_id) DO NOTHING`, siteID); err != nil {
		return 0, fmt.Errorf("insert thread %s: %w", siteID, err)
	}

	var threadID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM threads WHERE site_id = ?`, siteID).Scan(&threadID); err != nil {
		return 0, fmt.Errorf("lookup thread %s: %w", siteID, err)
	}

	for _, m := range msgs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO messages (thread_id, site_id, body, sender, fancydate)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(site_id) DO NOTHING
		`, threadID, m.ID, m.Body, m.Sender, m.FancyDate); err != nil {
			return 0, fmt.Errorf("insert message %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit thread %s: %w", siteID, err)
	}
	return threadID, nil
}

// Threads returns every stored conversation with its messages in insertion order.
func (s *Store) Threads(ctx context.Context) ([]domain.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.site_id, m.site_id, m.body, m.sender, m.fancydate
		FROM threads t
		LEFT JOIN messages m ON m.thread_id = t.id
		ORDER BY t.id, m.id
	`)
	if err != nil {
		return nil, fmt.Errorf("query threads: %w", err)
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var (
			id                             int64
			siteID                         string
			msgID, body, sender, fancyDate sql.NullString
		)
		if err := rows.Scan(&id, &siteID, &msgID, &body, &sender, &fancyDate); err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		if len(convs) == 0 || convs[len(convs)-1].ID != id {
			convs = append(convs, domain.Conversation{ID: id, SiteID: siteID})
		}
		if msgID.Valid {
			last := &convs[len(convs)-1]
			last.Messages = append(last.Messages, domain.Message{
				ID:        msgID.String,
				Sender:    sender.String,
				Body:      body.String,
				FancyDate: fancyDate.String,
			})
		}
	}
	return convs, rows.Err()
}
