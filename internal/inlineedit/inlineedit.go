// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package inlineedit rewrites a selected passage with the assistant.
//
// The flow captures a selection, collects an instruction, calls the rewrite
// endpoint and only then replaces the selection and saves the document. The
// remote call happens between Begin and Apply so a UI can run it off its
// event loop; Submit runs all steps in order.
package inlineedit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/notify"
	"github.com/jeranaias/lexpad-tui/internal/richtext"
	"github.com/jeranaias/lexpad-tui/internal/selection"
)

// User-facing messages.
const (
	MsgEdited     = "Text edited successfully!"
	MsgEditFailed = "Failed to edit text"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotReady means the selection or the instruction is blank.
	ErrNotReady = errors.New("selection and instruction are required")

	// ErrBusy means a submission is already in flight.
	ErrBusy = errors.New("an edit is already being submitted")

	// ErrStale means the selected text changed while the rewrite was pending.
	ErrStale = errors.New("selection changed during rewrite")
)

// =============================================================================
// STATE
// =============================================================================

// State is the flow's position in its lifecycle.
type State int

const (
	Idle State = iota
	SelectionCaptured
	InstructionEntered
	Submitting
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case SelectionCaptured:
		return "selection-captured"
	case InstructionEntered:
		return "instruction-entered"
	case Submitting:
		return "submitting"
	default:
		return "idle"
	}
}

// Rewriter calls the rewrite endpoint.
type Rewriter interface {
	RewriteClause(ctx context.Context, docID, clause, instruction string) (string, error)
}

// Saver persists the full document. *docsync.Syncer satisfies it.
type Saver interface {
	SaveContent(ctx context.Context, content string) error
}

// Request is an accepted submission.
type Request struct {
	DocID       string
	Clause      string
	Instruction string
	Range       richtext.Range
}

// Flow is the inline-edit state machine for one editor.
type Flow struct {
	buf      *richtext.Buffer
	rewriter Rewriter
	saver    Saver
	docID    string
	notes    notify.Notifier
	logger   *zap.Logger

	mu          sync.Mutex
	state       State
	captured    *selection.Event
	instruction string
}

// New creates a flow editing docID inside buf.
func New(buf *richtext.Buffer, docID string, rewriter Rewriter, saver Saver) *Flow {
	return &Flow{
		buf:      buf,
		rewriter: rewriter,
		saver:    saver,
		docID:    docID,
		notes:    notify.Discard,
		logger:   zap.NewNop(),
	}
}

// WithNotifier sets where user notices go.
func (f *Flow) WithNotifier(n notify.Notifier) *Flow {
	f.notes = notify.OrDiscard(n)
	return f
}

// WithLogger sets the logger.
func (f *Flow) WithLogger(logger *zap.Logger) *Flow {
	if logger != nil {
		f.logger = logger
	}
	return f
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Selection returns the captured selection, if any.
func (f *Flow) Selection() (selection.Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.captured == nil {
		return selection.Event{}, false
	}
	return *f.captured, true
}

// Instruction returns the instruction text.
func (f *Flow) Instruction() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.instruction
}

// Visible reports whether the edit popup should be shown.
func (f *Flow) Visible() bool {
	return f.State() != Idle
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Capture takes a new selection. A newer selection replaces an older one and
// clears the instruction. Selections are ignored while submitting.
func (f *Flow) Capture(ev selection.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Submitting {
		return false
	}
	if strings.TrimSpace(ev.Text) == "" {
		return false
	}
	f.captured = &ev
	f.instruction = ""
	f.state = SelectionCaptured
	return true
}

// SetInstruction updates the instruction text.
func (f *Flow) SetInstruction(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Idle || f.state == Submitting {
		return
	}
	f.instruction = text
	if strings.TrimSpace(text) == "" {
		f.state = SelectionCaptured
	} else {
		f.state = InstructionEntered
	}
}

// CanSubmit reports whether Begin would accept a submission.
func (f *Flow) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readyLocked()
}

func (f *Flow) readyLocked() bool {
	return f.state == InstructionEntered &&
		f.captured != nil &&
		strings.TrimSpace(f.captured.Text) != "" &&
		strings.TrimSpace(f.instruction) != ""
}

// Dismiss abandons the captured selection. It has no effect while submitting.
func (f *Flow) Dismiss() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Submitting {
		return
	}
	f.resetLocked()
}

func (f *Flow) resetLocked() {
	f.state = Idle
	f.captured = nil
	f.instruction = ""
}

// Begin moves to Submitting and returns the request to send.
func (f *Flow) Begin() (Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Submitting {
		return Request{}, ErrBusy
	}
	if !f.readyLocked() {
		return Request{}, ErrNotReady
	}
	f.state = Submitting
	return Request{
		DocID:       f.docID,
		Clause:      f.captured.Text,
		Instruction: strings.TrimSpace(f.instruction),
		Range:       f.captured.Range,
	}, nil
}

// Rewrite calls the remote endpoint. It touches no flow state and is safe to
// call from any goroutine.
func (f *Flow) Rewrite(ctx context.Context, req Request) (string, error) {
	return f.rewriter.RewriteClause(ctx, req.DocID, req.Clause, req.Instruction)
}

// Apply replaces the request's range with the rewrite and returns the new
// serialization to save. Delete and insert land as one undo step. The buffer
// is not touched when the range no longer holds the text that was sent. Must
// run on the goroutine that owns the buffer.
func (f *Flow) Apply(req Request, rewritten string) (string, error) {
	from, to := req.Range.From(), req.Range.To()
	if to > f.buf.Size() || f.buf.TextBetween(from, to) != req.Clause {
		return "", ErrStale
	}
	// Head at the start so plain replacement text takes the formatting
	// that precedes the selection. An empty rewrite still removes the range.
	f.buf.SetSelection(to, from)
	if _, err := f.buf.ReplaceSelection(rewritten); err != nil {
		return "", fmt.Errorf("insert rewrite: %w", err)
	}
	return f.buf.Content(), nil
}

// Finish ends a submission. A nil err returns to Idle and clears the
// selection. On failure the flow also returns to Idle and reports the error.
func (f *Flow) Finish(err error) {
	f.mu.Lock()
	f.resetLocked()
	f.mu.Unlock()

	if err != nil {
		f.logger.Warn("inline edit failed", zap.String("doc_id", f.docID), zap.Error(err))
		if !api.IsAuth(err) {
			notify.Error(f.notes, MsgEditFailed)
		}
		return
	}
	f.logger.Info("inline edit applied", zap.String("doc_id", f.docID))
	notify.Success(f.notes, MsgEdited)
}

// Save persists content produced by Apply.
func (f *Flow) Save(ctx context.Context, content string) error {
	if f.saver == nil {
		return nil
	}
	return f.saver.SaveContent(ctx, content)
}

// Submit runs a whole submission on the calling goroutine. A save failure
// after a successful edit is reported by the saver and returned, but the edit
// stays applied.
func (f *Flow) Submit(ctx context.Context) error {
	req, err := f.Begin()
	if err != nil {
		return err
	}
	rewritten, err := f.Rewrite(ctx, req)
	if err != nil {
		f.Finish(err)
		return err
	}
	content, err := f.Apply(req, rewritten)
	if err != nil {
		f.Finish(err)
		return err
	}
	f.Finish(nil)
	return f.Save(ctx, content)
}
