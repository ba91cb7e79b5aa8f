package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-resource-admin/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

const (
	maxRetries = 50
	retryDelay = 10 * time.Millisecond
)

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	parent    INTEGER NOT NULL DEFAULT 0,
	title     TEXT    NOT NULL,
	handle    TEXT    NOT NULL,
	sortorder INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS pages_resources (
	page_id INTEGER NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
	type    TEXT    NOT NULL,
	handle  TEXT    NOT NULL,
	PRIMARY KEY (page_id, type, handle)
);
CREATE INDEX IF NOT EXISTS idx_pages_resources_handle ON pages_resources (type, handle);
`

// SQLiteStore implements PageStore on a single SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// One writer at a time; SQLite serializes anyway and this avoids lock churn.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, logger: logger}
	if _, err := s.exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema to %s: %w", path, err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isRetryableError checks if the error is a transient SQLite lock error
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked") ||
		strings.Contains(errStr, "busy")
}

// exec executes a statement, retrying while the database is locked by another process.
func (s *SQLiteStore) exec(query string, args ...any) (sql.Result, error) {
	var result sql.Result
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		result, err = s.db.Exec(query, args...)
		if !isRetryableError(err) {
			return result, err
		}
		s.logger.Warn("SQLite busy, retrying", "attempt", attempt+1, "error", err)
		time.Sleep(time.Duration(attempt+1) * retryDelay)
	}
	return result, err
}

// InsertPage stores a new page and sets its ID.
func (s *SQLiteStore) InsertPage(page *model.Page) error {
	if page.Title == "" {
		return fmt.Errorf("page title cannot be empty")
	}
	if page.Parent != 0 {
		if _, err := s.Page(page.Parent); err != nil {
			return fmt.Errorf("parent of page %q: %w", page.Title, err)
		}
	}
	res, err := s.exec(
		`INSERT INTO pages (parent, title, handle, sortorder) VALUES (?, ?, ?, ?)`,
		page.Parent, page.Title, page.Handle, page.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to insert page %q: %w", page.Title, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read id of page %q: %w", page.Title, err)
	}
	page.ID = id
	return nil
}

// Pages returns every page ordered by sort order, then id.
func (s *SQLiteStore) Pages() ([]*model.Page, error) {
	return s.queryPages(`SELECT id, parent, title, handle, sortorder FROM pages ORDER BY sortorder ASC, id ASC`)
}

// Page returns a single page.
func (s *SQLiteStore) Page(id int64) (*model.Page, error) {
	var p model.Page
	err := s.db.QueryRow(
		`SELECT id, parent, title, handle, sortorder FROM pages WHERE id = ?`, id,
	).Scan(&p.ID, &p.Parent, &p.Title, &p.Handle, &p.SortOrder)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrPageNotFound, id)
		}
		return nil, fmt.Errorf("failed to load page %d: %w", id, err)
	}
	return &p, nil
}

// AttachedPages returns the pages a handle is attached to, in page order.
func (s *SQLiteStore) AttachedPages(t model.ResourceType, handle string) ([]*model.Page, error) {
	return s.queryPages(`
		SELECT p.id, p.parent, p.title, p.handle, p.sortorder
		FROM pages p
		JOIN pages_resources r ON r.page_id = p.id
		WHERE r.type = ? AND r.handle = ?
		ORDER BY p.sortorder ASC, p.id ASC`, t.String(), handle)
}

// Attach links a handle to a page. Attaching twice is a no-op.
func (s *SQLiteStore) Attach(t model.ResourceType, handle string, pageID int64) error {
	if _, err := s.Page(pageID); err != nil {
		return err
	}
	_, err := s.exec(
		`INSERT OR IGNORE INTO pages_resources (page_id, type, handle) VALUES (?, ?, ?)`,
		pageID, t.String(), handle,
	)
	if err != nil {
		return fmt.Errorf("failed to attach %s %s to page %d: %w", t, handle, pageID, err)
	}
	return nil
}

// Detach unlinks a handle from a page.
func (s *SQLiteStore) Detach(t model.ResourceType, handle string, pageID int64) error {
	_, err := s.exec(
		`DELETE FROM pages_resources WHERE page_id = ? AND type = ? AND handle = ?`,
		pageID, t.String(), handle,
	)
	if err != nil {
		return fmt.Errorf("failed to detach %s %s from page %d: %w", t, handle, pageID, err)
	}
	return nil
}

func (s *SQLiteStore) queryPages(query string, args ...any) ([]*model.Page, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	pages := make([]*model.Page, 0)
	for rows.Next() {
		var p model.Page
		if err := rows.Scan(&p.ID, &p.Parent, &p.Title, &p.Handle, &p.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, &p)
	}
	return pages, rows.Err()
}
