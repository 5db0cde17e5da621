// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docsync moves a document between the backend and the editing
// buffer. It loads the document and its chat history, saves on demand, and
// parks content from failed saves in the local drafts store.
package docsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/drafts"
	"github.com/jeranaias/lexpad-tui/internal/notify"
	"github.com/jeranaias/lexpad-tui/internal/richtext"
)

// User-facing messages.
const (
	MsgLoadFailed    = "Failed to load document"
	MsgHistoryFailed = "Failed to load chat history"
	MsgSaved         = "Document saved successfully!"
	MsgSaveFailed    = "Failed to save document"
	MsgDraftPending  = "Unsaved changes from a failed save are available"
)

// ErrNotLoaded is returned by saves before a document has been loaded.
var ErrNotLoaded = errors.New("no document loaded")

// Remote is the subset of the backend client the bridge needs.
type Remote interface {
	GetDocument(ctx context.Context, id string) (*api.Document, error)
	UpdateDocument(ctx context.Context, id, content string) (*api.Document, error)
	ChatHistory(ctx context.Context, docID string) ([]api.ChatRecord, error)
}

// DraftStore persists content whose save failed. *drafts.Store satisfies it.
type DraftStore interface {
	Put(ctx context.Context, d drafts.Draft) error
	Get(ctx context.Context, docID string) (*drafts.Draft, error)
	Delete(ctx context.Context, docID string) error
}

// LoadResult is what Load hands to the editor.
type LoadResult struct {
	Document *api.Document
	History  []api.ChatRecord

	// HistoryErr is set when the chat history could not be fetched. The
	// history is empty in that case and the editor still opens.
	HistoryErr error

	// Draft is a pending draft whose content differs from the loaded
	// document, or nil.
	Draft *drafts.Draft
}

// Syncer binds one buffer to one backend document.
type Syncer struct {
	remote Remote
	buf    *richtext.Buffer
	store  DraftStore
	notes  notify.Notifier
	logger *zap.Logger

	mu      sync.Mutex
	doc     *api.Document
	saved   string
	savedAt time.Time
	pending *drafts.Draft
}

// New creates a bridge for buf.
func New(remote Remote, buf *richtext.Buffer) *Syncer {
	return &Syncer{
		remote: remote,
		buf:    buf,
		notes:  notify.Discard,
		logger: zap.NewNop(),
	}
}

// WithDrafts enables the local drafts store.
func (s *Syncer) WithDrafts(store DraftStore) *Syncer {
	s.store = store
	return s
}

// WithNotifier sets where user notices go.
func (s *Syncer) WithNotifier(n notify.Notifier) *Syncer {
	s.notes = notify.OrDiscard(n)
	return s
}

// WithLogger sets the logger.
func (s *Syncer) WithLogger(logger *zap.Logger) *Syncer {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// =============================================================================
// LOAD
// =============================================================================

// Load fetches the document into the buffer without recording history, then
// fetches the chat history. A history failure is reported but does not fail
// the load.
func (s *Syncer) Load(ctx context.Context, docID string) (*LoadResult, error) {
	doc, err := s.remote.GetDocument(ctx, docID)
	if err != nil {
		s.logger.Warn("document load failed", zap.String("doc_id", docID), zap.Error(err))
		s.fail(MsgLoadFailed, err)
		return nil, fmt.Errorf("load document %s: %w", docID, err)
	}
	if err := s.buf.SetContent(doc.Content, false); err != nil {
		s.logger.Warn("document content rejected", zap.String("doc_id", docID), zap.Error(err))
		notify.Error(s.notes, MsgLoadFailed)
		return nil, fmt.Errorf("parse document %s: %w", docID, err)
	}

	s.mu.Lock()
	s.doc = doc
	s.saved = s.buf.Content()
	s.savedAt = doc.Updated()
	s.pending = nil
	saved := s.saved
	s.mu.Unlock()

	res := &LoadResult{Document: doc}

	history, err := s.remote.ChatHistory(ctx, docID)
	if err != nil {
		s.logger.Warn("chat history load failed", zap.String("doc_id", docID), zap.Error(err))
		s.fail(MsgHistoryFailed, err)
		res.HistoryErr = err
	} else {
		res.History = history
	}

	if d := s.lookupDraft(ctx, docID, saved); d != nil {
		res.Draft = d
		notify.Info(s.notes, MsgDraftPending)
	}

	s.logger.Info("document loaded",
		zap.String("doc_id", docID),
		zap.Int("history", len(res.History)),
		zap.Bool("draft", res.Draft != nil))
	return res, nil
}

func (s *Syncer) lookupDraft(ctx context.Context, docID, saved string) *drafts.Draft {
	if s.store == nil {
		return nil
	}
	d, err := s.store.Get(ctx, docID)
	if err != nil {
		if !errors.Is(err, drafts.ErrNotFound) {
			s.logger.Warn("draft lookup failed", zap.String("doc_id", docID), zap.Error(err))
		}
		return nil
	}
	if d.Content == saved {
		// The backend caught up; the draft is stale.
		_ = s.store.Delete(ctx, docID)
		return nil
	}
	s.mu.Lock()
	s.pending = d
	s.mu.Unlock()
	return d
}

// =============================================================================
// SAVE
// =============================================================================

// Save serializes the buffer and sends it to the backend. It must be called
// from the goroutine that owns the buffer; use SaveContent off that goroutine.
func (s *Syncer) Save(ctx context.Context) error {
	return s.SaveContent(ctx, s.buf.Content())
}

// SaveContent sends content to the backend. On failure the buffer is left as
// it is and the content is recorded as a pending draft.
func (s *Syncer) SaveContent(ctx context.Context, content string) error {
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()
	if doc == nil {
		return ErrNotLoaded
	}

	updated, err := s.remote.UpdateDocument(ctx, doc.ID, content)
	if err != nil {
		s.logger.Warn("document save failed", zap.String("doc_id", doc.ID), zap.Error(err))
		s.keepDraft(doc, content, err)
		s.fail(MsgSaveFailed, err)
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}

	s.mu.Lock()
	if updated != nil && updated.ID != "" {
		s.doc = updated
	}
	s.saved = content
	s.savedAt = time.Now()
	s.pending = nil
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Delete(ctx, doc.ID); err != nil {
			s.logger.Warn("draft cleanup failed", zap.String("doc_id", doc.ID), zap.Error(err))
		}
	}
	s.logger.Info("document saved", zap.String("doc_id", doc.ID), zap.Int("bytes", len(content)))
	notify.Success(s.notes, MsgSaved)
	return nil
}

func (s *Syncer) keepDraft(doc *api.Document, content string, cause error) {
	if s.store == nil {
		return
	}
	d := drafts.Draft{
		DocID:     doc.ID,
		Title:     doc.Title,
		Content:   content,
		LastError: cause.Error(),
		SavedAt:   time.Now(),
	}
	// The request context may already be cancelled; the draft must still land.
	if err := s.store.Put(context.Background(), d); err != nil {
		s.logger.Error("draft write failed", zap.String("doc_id", doc.ID), zap.Error(err))
		return
	}
	s.mu.Lock()
	s.pending = &d
	s.mu.Unlock()
}

// Stash records the buffer as a pending draft when it holds unsaved edits,
// for when the editor is about to close without saving. It reports whether a
// draft was written.
func (s *Syncer) Stash(cause error) bool {
	content := s.buf.Content()
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()
	if doc == nil || s.store == nil || !s.IsDirty(content) {
		return false
	}
	s.keepDraft(doc, content, cause)
	s.logger.Info("unsaved edits kept as draft", zap.String("doc_id", doc.ID), zap.Error(cause))
	return s.Pending() != nil
}

// fail notifies unless err is an auth failure, which the unauthorized hook
// handles by sending the user to sign-in.
func (s *Syncer) fail(msg string, err error) {
	if api.IsAuth(err) {
		return
	}
	notify.Error(s.notes, msg)
}

// =============================================================================
// DRAFTS
// =============================================================================

// Pending returns the pending draft for the loaded document, if any.
func (s *Syncer) Pending() *drafts.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	d := *s.pending
	return &d
}

// RestoreDraft puts the pending draft into the buffer as an undoable edit.
// The draft stays pending until a save succeeds.
func (s *Syncer) RestoreDraft() bool {
	d := s.Pending()
	if d == nil {
		return false
	}
	if err := s.buf.SetContent(d.Content, true); err != nil {
		s.logger.Warn("draft content rejected", zap.String("doc_id", d.DocID), zap.Error(err))
		return false
	}
	return true
}

// DiscardDraft forgets the pending draft.
func (s *Syncer) DiscardDraft(ctx context.Context) error {
	s.mu.Lock()
	d := s.pending
	s.pending = nil
	s.mu.Unlock()
	if d == nil || s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, d.DocID)
}

// =============================================================================
// STATE
// =============================================================================

// Document returns the last document received from the backend.
func (s *Syncer) Document() *api.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// DocID returns the loaded document id, or "".
func (s *Syncer) DocID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ""
	}
	return s.doc.ID
}

// Saved returns the content last confirmed by the backend.
func (s *Syncer) Saved() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// SavedAt returns when the content was last confirmed.
func (s *Syncer) SavedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savedAt
}

// Dirty reports whether the buffer differs from the last saved content. Call
// it from the goroutine that owns the buffer.
func (s *Syncer) Dirty() bool {
	return s.IsDirty(s.buf.Content())
}

// IsDirty reports whether content differs from the last saved content.
func (s *Syncer) IsDirty(content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc != nil && content != s.saved
}
