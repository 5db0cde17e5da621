// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package drafts keeps a local copy of document content whose save to the
// backend failed, so the user can retry later instead of losing the edit.
package drafts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when no draft exists for a document.
	ErrNotFound = errors.New("draft not found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("drafts store closed")
)

// =============================================================================
// STORE
// =============================================================================

// Draft is content that has not reached the backend yet.
type Draft struct {
	DocID     string
	Title     string
	Content   string
	LastError string
	Attempts  int
	SavedAt   time.Time
}

// Store is a sqlite-backed set of pending drafts keyed by document id.
type Store struct {
	db     *sql.DB
	path   string
	now    func() time.Time
	mu     sync.RWMutex
	closed bool
}

// DefaultPath returns ~/.lexpad/drafts.db.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".lexpad", "drafts.db")
	}
	return filepath.Join(home, ".lexpad", "drafts.db")
}

// Open opens or creates the drafts database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create drafts directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open drafts database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &Store{db: db, path: path, now: time.Now}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) check() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Put records a draft. Repeated failures for the same document overwrite the
// content and bump the attempt count.
func (s *Store) Put(ctx context.Context, d Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	if d.DocID == "" {
		return errors.New("draft requires a document id")
	}
	if d.SavedAt.IsZero() {
		d.SavedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drafts (doc_id, title, content, last_error, attempts, saved_at)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT(doc_id) DO UPDATE SET
			title = CASE WHEN excluded.title = '' THEN drafts.title ELSE excluded.title END,
			content = excluded.content,
			last_error = excluded.last_error,
			attempts = drafts.attempts + 1,
			saved_at = excluded.saved_at`,
		d.DocID, d.Title, d.Content, d.LastError, d.SavedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save draft %s: %w", d.DocID, err)
	}
	return nil
}

// Get returns the pending draft for a document or ErrNotFound.
func (s *Store) Get(ctx context.Context, docID string) (*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT doc_id, title, content, last_error, attempts, saved_at
		FROM drafts WHERE doc_id = ?`, docID)
	d, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", docID, err)
	}
	return d, nil
}

// Delete removes a draft. Deleting a missing draft is not an error.
func (s *Store) Delete(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM drafts WHERE doc_id = ?", docID); err != nil {
		return fmt.Errorf("delete draft %s: %w", docID, err)
	}
	return nil
}

// List returns all drafts, newest first.
func (s *Store) List(ctx context.Context) ([]Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, title, content, last_error, attempts, saved_at
		FROM drafts ORDER BY saved_at DESC, doc_id`)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var out []Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// SchemaVersion reads the stored schema version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return 0, err
	}
	var v string
	if err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&v); err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(sc scanner) (*Draft, error) {
	var d Draft
	var savedAt int64
	if err := sc.Scan(&d.DocID, &d.Title, &d.Content, &d.LastError, &d.Attempts, &savedAt); err != nil {
		return nil, err
	}
	d.SavedAt = time.UnixMilli(savedAt)
	return &d, nil
}
