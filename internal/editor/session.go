// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package editor assembles one editing session: the buffer, the selection
// bridge, the inline-edit and chat flows, the persistence bridge and the
// assistant panel. A session is scoped to one open document and is dropped
// when the user leaves it.
package editor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/lexpad-tui/internal/assistant"
	"github.com/jeranaias/lexpad-tui/internal/docsync"
	"github.com/jeranaias/lexpad-tui/internal/inlineedit"
	"github.com/jeranaias/lexpad-tui/internal/logging"
	"github.com/jeranaias/lexpad-tui/internal/notify"
	"github.com/jeranaias/lexpad-tui/internal/panel"
	"github.com/jeranaias/lexpad-tui/internal/richtext"
	"github.com/jeranaias/lexpad-tui/internal/selection"
)

// Backend is everything a session calls remotely. *api.Client satisfies it.
type Backend interface {
	docsync.Remote
	assistant.Remote
	inlineedit.Rewriter
}

// Options tune a session.
type Options struct {
	HistoryDepth         int
	TypingGroup          time.Duration
	AutosaveAfterRewrite bool
	Panel                panel.Config
	Drafts               docsync.DraftStore
	Notifier             notify.Notifier
	Logger               *zap.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		HistoryDepth:         richtext.DefaultHistoryDepth,
		TypingGroup:          richtext.DefaultTypingGroup,
		AutosaveAfterRewrite: true,
		Panel:                panel.DefaultConfig(),
	}
}

// Session is the per-document context shared by the editor screen.
type Session struct {
	DocID  string
	Buffer *richtext.Buffer
	Bridge *selection.Bridge
	Sync   *docsync.Syncer
	Edit   *inlineedit.Flow
	Chat   *assistant.Chat
	Panel  *panel.Manager

	locate selection.LocatorFunc
	logger *zap.Logger
}

// New builds a session for docID. Nothing is fetched until Load.
func New(backend Backend, docID string, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notes := notify.OrDiscard(opts.Notifier)

	buf := richtext.New(
		richtext.WithHistoryDepth(opts.HistoryDepth),
		richtext.WithTypingGroup(opts.TypingGroup),
	)
	s := &Session{
		DocID:  docID,
		Buffer: buf,
		Panel:  panel.New(opts.Panel),
		logger: logger,
	}

	s.Sync = docsync.New(backend, buf).
		WithNotifier(notes).
		WithLogger(logging.Named(logger, "docsync"))
	if opts.Drafts != nil {
		s.Sync.WithDrafts(opts.Drafts)
	}

	var saver inlineedit.Saver
	if opts.AutosaveAfterRewrite {
		saver = s.Sync
	}
	s.Edit = inlineedit.New(buf, docID, backend, saver).
		WithNotifier(notes).
		WithLogger(logging.Named(logger, "inlineedit"))

	s.Chat = assistant.New(backend, docID).
		WithNotifier(notes).
		WithLogger(logging.Named(logger, "assistant"))

	s.Bridge = selection.NewBridge(buf,
		selection.LocatorFunc(s.coordsAtPos),
		func(ev selection.Event) { s.Edit.Capture(ev) },
		logging.Named(logger, "selection"))
	return s
}

// SetLocator installs the mapping from buffer positions to screen cells. The
// view calls it whenever the layout changes.
func (s *Session) SetLocator(fn selection.LocatorFunc) {
	s.locate = fn
}

func (s *Session) coordsAtPos(pos int) selection.Point {
	if s.locate == nil {
		return selection.Point{}
	}
	return s.locate(pos)
}

// Load fetches the document into the buffer and seeds the chat log. A chat
// history failure leaves the log empty and is not an error.
func (s *Session) Load(ctx context.Context) (*docsync.LoadResult, error) {
	res, err := s.Sync.Load(ctx, s.DocID)
	if err != nil {
		return nil, err
	}
	s.Chat.Seed(res.History)
	return res, nil
}

// Save saves the buffer.
func (s *Session) Save(ctx context.Context) error {
	return s.Sync.Save(ctx)
}

// Title returns the loaded document's title, or its id.
func (s *Session) Title() string {
	if d := s.Sync.Document(); d != nil && d.Title != "" {
		return d.Title
	}
	return s.DocID
}
