// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant runs the document chat: free-form questions plus the
// red-flag and summary analyses, all appended to one chat log.
//
// Only one request may be outstanding. Calls made while a response is pending
// are dropped without reaching the backend, so the log stays in the order the
// requests were issued.
package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/notify"
)

// Fixed texts shown in the chat.
const (
	WelcomeMessage = "Hi! I'm your AI legal assistant. Ask me anything about your document, request analysis, or get help with editing."
	ThinkingText   = "AI is thinking..."

	LabelRedFlags  = "Detect red flags in this document"
	LabelSummarize = "Summarize this document"

	summaryFallback = "Summary generated successfully."
)

// User-facing notices.
const (
	MsgAnswered        = "Question answered!"
	MsgAskFailed       = "Failed to get answer"
	MsgRedFlagsDone    = "Red flags analysis complete!"
	MsgRedFlagsFailed  = "Failed to detect red flags"
	MsgSummarized      = "Document summarized!"
	MsgSummarizeFailed = "Failed to summarize document"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrBusy means a response is still pending.
	ErrBusy = errors.New("assistant is responding")

	// ErrEmptyQuestion means the question was blank after trimming.
	ErrEmptyQuestion = errors.New("question is empty")
)

// =============================================================================
// TYPES
// =============================================================================

// State is the shared busy flag of the three actions.
type State int

const (
	Idle State = iota
	Responding
)

// String returns the state name.
func (s State) String() string {
	if s == Responding {
		return "responding"
	}
	return "idle"
}

// Kind identifies which action produced an entry.
type Kind int

const (
	KindQuestion Kind = iota
	KindRedFlags
	KindSummary
	KindHistory
)

// Entry is one question and its answer. Entries are never edited.
type Entry struct {
	ID        string
	Kind      Kind
	Question  string
	Answer    string
	Sources   []api.Source
	Timestamp time.Time
}

// Remote is the subset of the backend client the chat needs.
type Remote interface {
	Ask(ctx context.Context, docID, question string) (*api.Answer, error)
	RedFlags(ctx context.Context, docID string) (*api.RedFlagReport, error)
	Summarize(ctx context.Context, docID string) (string, error)
}

// Request is an accepted action waiting for its response.
type Request struct {
	Kind     Kind
	DocID    string
	Question string
}

// Chat owns the chat log of one document.
type Chat struct {
	remote Remote
	docID  string
	notes  notify.Notifier
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	state State
	log   []Entry
}

// New creates a chat for docID.
func New(remote Remote, docID string) *Chat {
	return &Chat{
		remote: remote,
		docID:  docID,
		notes:  notify.Discard,
		logger: zap.NewNop(),
		now:    time.Now,
	}
}

// WithNotifier sets where user notices go.
func (c *Chat) WithNotifier(n notify.Notifier) *Chat {
	c.notes = notify.OrDiscard(n)
	return c
}

// WithLogger sets the logger.
func (c *Chat) WithLogger(logger *zap.Logger) *Chat {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithClock sets the clock used for entry timestamps.
func (c *Chat) WithClock(now func() time.Time) *Chat {
	if now != nil {
		c.now = now
	}
	return c
}

// Seed replaces the log with stored history. It is called once when the
// editor opens.
func (c *Chat) Seed(records []api.ChatRecord) {
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		id := string(r.ID)
		if id == "" {
			id = uuid.NewString()
		}
		entries = append(entries, Entry{
			ID:        id,
			Kind:      KindHistory,
			Question:  r.Question,
			Answer:    r.Answer,
			Timestamp: r.Created(),
		})
	}
	c.mu.Lock()
	c.log = entries
	c.mu.Unlock()
}

// Log returns a copy of the chat log in arrival order.
func (c *Chat) Log() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.log))
	copy(out, c.log)
	return out
}

// Len returns the number of entries.
func (c *Chat) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.log)
}

// State returns the busy state.
func (c *Chat) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a response is pending.
func (c *Chat) Busy() bool {
	return c.State() == Responding
}

// =============================================================================
// TWO-PHASE API
// =============================================================================

// Begin claims the busy flag for an action. For KindQuestion the question is
// trimmed and must be non-empty; canned actions use their fixed label.
func (c *Chat) Begin(kind Kind, question string) (Request, error) {
	switch kind {
	case KindQuestion:
		question = strings.TrimSpace(question)
		if question == "" {
			return Request{}, ErrEmptyQuestion
		}
	case KindRedFlags:
		question = LabelRedFlags
	case KindSummary:
		question = LabelSummarize
	default:
		return Request{}, errors.New("unsupported action")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Responding {
		return Request{}, ErrBusy
	}
	c.state = Responding
	return Request{Kind: kind, DocID: c.docID, Question: question}, nil
}

// Run performs the remote call for req and builds the entry. It touches no
// chat state.
func (c *Chat) Run(ctx context.Context, req Request) (Entry, error) {
	entry := Entry{Kind: req.Kind, Question: req.Question}
	switch req.Kind {
	case KindQuestion:
		ans, err := c.remote.Ask(ctx, req.DocID, req.Question)
		if err != nil {
			return Entry{}, err
		}
		entry.Answer = ans.Answer
		entry.Sources = ans.Sources
	case KindRedFlags:
		report, err := c.remote.RedFlags(ctx, req.DocID)
		if err != nil {
			return Entry{}, err
		}
		entry.Answer = RenderRedFlags(report)
	case KindSummary:
		summary, err := c.remote.Summarize(ctx, req.DocID)
		if err != nil {
			return Entry{}, err
		}
		entry.Answer = summary
		if strings.TrimSpace(summary) == "" {
			entry.Answer = summaryFallback
		}
	}
	return entry, nil
}

// Finish releases the busy flag. On success the entry is appended with a
// fresh id and timestamp; on failure nothing is appended.
func (c *Chat) Finish(req Request, entry Entry, err error) (Entry, error) {
	c.mu.Lock()
	c.state = Idle
	if err == nil {
		entry.ID = uuid.NewString()
		entry.Timestamp = c.now()
		c.log = append(c.log, entry)
	}
	c.mu.Unlock()

	done, failed := messages(req.Kind)
	if err != nil {
		c.logger.Warn("assistant request failed",
			zap.String("doc_id", req.DocID),
			zap.Int("kind", int(req.Kind)),
			zap.Error(err))
		if !api.IsAuth(err) {
			notify.Error(c.notes, failed)
		}
		return Entry{}, err
	}
	c.logger.Info("assistant answered",
		zap.String("doc_id", req.DocID),
		zap.Int("kind", int(req.Kind)),
		zap.Int("answer_len", len(entry.Answer)))
	notify.Success(c.notes, done)
	return entry, nil
}

func messages(kind Kind) (done, failed string) {
	switch kind {
	case KindRedFlags:
		return MsgRedFlagsDone, MsgRedFlagsFailed
	case KindSummary:
		return MsgSummarized, MsgSummarizeFailed
	default:
		return MsgAnswered, MsgAskFailed
	}
}

// =============================================================================
// SYNCHRONOUS API
// =============================================================================

func (c *Chat) do(ctx context.Context, kind Kind, question string) (Entry, error) {
	req, err := c.Begin(kind, question)
	if err != nil {
		return Entry{}, err
	}
	entry, err := c.Run(ctx, req)
	return c.Finish(req, entry, err)
}

// Ask sends a free-form question.
func (c *Chat) Ask(ctx context.Context, question string) (Entry, error) {
	return c.do(ctx, KindQuestion, question)
}

// DetectRedFlags runs red-flag detection.
func (c *Chat) DetectRedFlags(ctx context.Context) (Entry, error) {
	return c.do(ctx, KindRedFlags, "")
}

// Summarize asks for a summary of the document.
func (c *Chat) Summarize(ctx context.Context) (Entry, error) {
	return c.do(ctx, KindSummary, "")
}
