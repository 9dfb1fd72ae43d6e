// Package assistant – update_log.go provides the SQLite-backed log of
// detected update requests. Requests are recorded for later review; the
// knowledge base itself is never written by the pipeline.
package assistant

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// UpdateLog records detected knowledge-update requests.
type UpdateLog struct {
	db     *sql.DB
	logger *slog.Logger
}

// UpdateEntry is one recorded update request.
type UpdateEntry struct {
	ID        int64
	Source    string
	Lang      string
	Message   string
	CreatedAt string
}

// OpenUpdateLog opens (creating if needed) the update-request database.
func OpenUpdateLog(path string, logger *slog.Logger) (*UpdateLog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening update log: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS update_requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			lang TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating update log schema: %w", err)
	}
	return &UpdateLog{db: db, logger: logger.With("component", "update_log")}, nil
}

// Record writes one update request. Failures are logged, not returned:
// the pipeline must keep answering even if the log is unavailable.
func (u *UpdateLog) Record(source, lang, message string) {
	if len(message) > 2000 {
		message = message[:2000] + "...[truncated]"
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := u.db.Exec(`
		INSERT INTO update_requests (source, lang, message, created_at)
		VALUES (?, ?, ?, ?)`,
		source, lang, message, now,
	)
	if err != nil {
		u.logger.Warn("failed to record update request", "source", source, "err", err)
	}
}

// Recent returns the last n recorded requests, newest first.
func (u *UpdateLog) Recent(n int) ([]UpdateEntry, error) {
	rows, err := u.db.Query(`
		SELECT id, source, lang, message, created_at
		FROM update_requests
		ORDER BY id DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []UpdateEntry
	for rows.Next() {
		var e UpdateEntry
		if err := rows.Scan(&e.ID, &e.Source, &e.Lang, &e.Message, &e.CreatedAt); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (u *UpdateLog) Close() error {
	return u.db.Close()
}
