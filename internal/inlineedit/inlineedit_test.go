// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package inlineedit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/notify"
	"github.com/jeranaias/lexpad-tui/internal/richtext"
	"github.com/jeranaias/lexpad-tui/internal/selection"
)

const clauseDoc = "<p>Under this clause the Vendor shall indemnify the Client.</p>"

type fakeRewriter struct {
	mu     sync.Mutex
	calls  []string
	reply  string
	err    error
	clause string
	instr  string
}

func (f *fakeRewriter) RewriteClause(ctx context.Context, docID, clause, instruction string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, docID)
	f.clause, f.instr = clause, instruction
	return f.reply, f.err
}

func (f *fakeRewriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSaver struct {
	saved []string
	err   error
}

func (f *fakeSaver) SaveContent(ctx context.Context, content string) error {
	f.saved = append(f.saved, content)
	return f.err
}

type fixture struct {
	buf      *richtext.Buffer
	flow     *Flow
	rewriter *fakeRewriter
	saver    *fakeSaver
	notes    *notify.Recorder
}

// newFixture wires a buffer, a selection bridge and a flow the way the editor
// does, so selecting text in the buffer captures it.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	buf := richtext.New()
	require.NoError(t, buf.SetContent(clauseDoc, false))
	fx := &fixture{
		buf:      buf,
		rewriter: &fakeRewriter{reply: "the parties shall mutually indemnify"},
		saver:    &fakeSaver{},
		notes:    &notify.Recorder{},
	}
	fx.flow = New(buf, "d1", fx.rewriter, fx.saver).WithNotifier(fx.notes)
	selection.NewBridge(buf, selection.LocatorFunc(func(pos int) selection.Point {
		return selection.Point{X: pos, Y: 0}
	}), func(ev selection.Event) { fx.flow.Capture(ev) }, nil)
	return fx
}

// =============================================================================
// STATE MACHINE
// =============================================================================

func TestFlow_Transitions(t *testing.T) {
	fx := newFixture(t)
	assert.Equal(t, Idle, fx.flow.State())
	assert.False(t, fx.flow.Visible())

	fx.buf.SetSelection(18, 44)
	assert.Equal(t, SelectionCaptured, fx.flow.State())
	ev, ok := fx.flow.Selection()
	require.True(t, ok)
	assert.Equal(t, "the Vendor shall indemnify", ev.Text)
	assert.Equal(t, selection.Point{X: 18, Y: 1}, ev.Anchor)
	assert.False(t, fx.flow.CanSubmit())

	fx.flow.SetInstruction("make this mutual")
	assert.Equal(t, InstructionEntered, fx.flow.State())
	assert.True(t, fx.flow.CanSubmit())

	fx.flow.SetInstruction("   ")
	assert.Equal(t, SelectionCaptured, fx.flow.State())
	assert.False(t, fx.flow.CanSubmit())

	fx.flow.Dismiss()
	assert.Equal(t, Idle, fx.flow.State())
	_, ok = fx.flow.Selection()
	assert.False(t, ok)
}

// TestFlow_LastSelectionWins checks a new selection replaces the old one and
// drops the instruction typed for it.
func TestFlow_LastSelectionWins(t *testing.T) {
	fx := newFixture(t)
	fx.buf.SetSelection(18, 44)
	fx.flow.SetInstruction("make this mutual")

	fx.buf.SetSelection(0, 5)
	ev, ok := fx.flow.Selection()
	require.True(t, ok)
	assert.Equal(t, "Under", ev.Text)
	assert.Equal(t, SelectionCaptured, fx.flow.State())
	assert.Equal(t, "", fx.flow.Instruction())
}

func TestFlow_WhitespaceSelectionIgnored(t *testing.T) {
	fx := newFixture(t)
	fx.buf.SetSelection(5, 6) // a single space
	assert.Equal(t, Idle, fx.flow.State())

	assert.False(t, fx.flow.Capture(selection.Event{Text: " \t"}))
	assert.Equal(t, Idle, fx.flow.State())
}

func TestFlow_SetInstructionIdleIgnored(t *testing.T) {
	fx := newFixture(t)
	fx.flow.SetInstruction("make this mutual")
	assert.Equal(t, Idle, fx.flow.State())
	assert.Equal(t, "", fx.flow.Instruction())
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmit_EmptyInstructionMakesNoCall(t *testing.T) {
	fx := newFixture(t)
	fx.buf.SetSelection(18, 44)

	err := fx.flow.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Zero(t, fx.rewriter.count())
	assert.Empty(t, fx.saver.saved)
	assert.Equal(t, SelectionCaptured, fx.flow.State())
}

func TestSubmit_ReplacesSelectionAndSavesOnce(t *testing.T) {
	fx := newFixture(t)
	fx.buf.SetSelection(18, 44)
	fx.flow.SetInstruction("  make this mutual ")

	require.NoError(t, fx.flow.Submit(context.Background()))

	assert.Equal(t, "the Vendor shall indemnify", fx.rewriter.clause)
	assert.Equal(t, "make this mutual", fx.rewriter.instr)
	assert.Equal(t, []string{"d1"}, fx.rewriter.calls)

	want := "<p>Under this clause the parties shall mutually indemnify the Client.</p>"
	assert.Equal(t, want, fx.buf.Content())
	assert.NotContains(t, fx.buf.Text(), "the Vendor shall indemnify")
	assert.Equal(t, []string{want}, fx.saver.saved)

	assert.Equal(t, Idle, fx.flow.State())
	_, ok := fx.flow.Selection()
	assert.False(t, ok)
	assert.Equal(t, []string{MsgEdited}, fx.notes.Messages(notify.KindSuccess))

	// The replacement is one undo step.
	require.True(t, fx.buf.Undo())
	assert.Equal(t, clauseDoc, fx.buf.Content())
}

// TestSubmit_EmptyRewriteRemovesSelection checks the selected range is deleted
// even when the replacement is empty.
func TestSubmit_EmptyRewriteRemovesSelection(t *testing.T) {
	fx := newFixture(t)
	fx.rewriter.reply = ""
	fx.buf.SetSelection(24, 49)
	require.Equal(t, "ndor shall indemnify the ", fx.buf.TextBetween(24, 49))
	fx.flow.SetInstruction("drop this")

	require.NoError(t, fx.flow.Submit(context.Background()))

	want := "<p>Under this clause the VeClient.</p>"
	assert.Equal(t, want, fx.buf.Content())
	assert.Equal(t, []string{want}, fx.saver.saved)
	assert.Equal(t, Idle, fx.flow.State())

	require.True(t, fx.buf.Undo())
	assert.Equal(t, clauseDoc, fx.buf.Content())
}

func TestSubmit_FailureLeavesBufferUntouched(t *testing.T) {
	fx := newFixture(t)
	fx.rewriter.err = errors.New("llm unavailable")
	before := fx.buf.Content()

	fx.buf.SetSelection(18, 44)
	fx.flow.SetInstruction("make this mutual")
	err := fx.flow.Submit(context.Background())

	require.Error(t, err)
	assert.Equal(t, before, fx.buf.Content())
	assert.False(t, fx.buf.CanUndo())
	assert.Equal(t, richtext.Range{Anchor: 18, Head: 44}, fx.buf.Selection())
	assert.Empty(t, fx.saver.saved)
	assert.Equal(t, Idle, fx.flow.State())
	assert.Equal(t, []string{MsgEditFailed}, fx.notes.Messages(notify.KindError))
}

func TestSubmit_AuthFailureIsSilent(t *testing.T) {
	fx := newFixture(t)
	fx.rewriter.err = &api.Error{Status: 401}
	fx.buf.SetSelection(18, 44)
	fx.flow.SetInstruction("make this mutual")

	assert.ErrorIs(t, fx.flow.Submit(context.Background()), api.ErrUnauthorized)
	assert.Empty(t, fx.notes.Notices())
}

// TestBegin_SingleFlight checks a second submission is refused while the
// first is pending and that selections made meanwhile are ignored.
func TestBegin_SingleFlight(t *testing.T) {
	fx := newFixture(t)
	fx.buf.SetSelection(18, 44)
	fx.flow.SetInstruction("make this mutual")

	req, err := fx.flow.Begin()
	require.NoError(t, err)
	assert.Equal(t, Submitting, fx.flow.State())

	_, err = fx.flow.Begin()
	assert.ErrorIs(t, err, ErrBusy)

	fx.buf.SetSelection(0, 5)
	ev, _ := fx.flow.Selection()
	assert.Equal(t, "the Vendor shall indemnify", ev.Text)
	fx.flow.Dismiss()
	assert.Equal(t, Submitting, fx.flow.State())

	rewritten, err := fx.flow.Rewrite(context.Background(), req)
	require.NoError(t, err)
	content, err := fx.flow.Apply(req, rewritten)
	require.NoError(t, err)
	fx.flow.Finish(nil)
	require.NoError(t, fx.flow.Save(context.Background(), content))

	assert.Equal(t, 1, fx.rewriter.count())
	assert.Len(t, fx.saver.saved, 1)
	assert.Equal(t, Idle, fx.flow.State())
}

// TestApply_StaleRange checks that typing inside the selected passage during
// the rewrite prevents the replacement.
func TestApply_StaleRange(t *testing.T) {
	fx := newFixture(t)
	fx.buf.SetSelection(18, 44)
	fx.flow.SetInstruction("make this mutual")
	req, err := fx.flow.Begin()
	require.NoError(t, err)

	fx.buf.SetSelection(22, 22)
	fx.buf.InsertText("X")
	before := fx.buf.Content()

	_, err = fx.flow.Apply(req, "replacement")
	assert.ErrorIs(t, err, ErrStale)
	assert.Equal(t, before, fx.buf.Content())

	fx.flow.Finish(err)
	assert.Equal(t, Idle, fx.flow.State())
	assert.Equal(t, []string{MsgEditFailed}, fx.notes.Messages(notify.KindError))
}

func TestSubmit_SaveFailureKeepsEdit(t *testing.T) {
	fx := newFixture(t)
	fx.saver.err = errors.New("gateway timeout")
	fx.buf.SetSelection(18, 44)
	fx.flow.SetInstruction("make this mutual")

	err := fx.flow.Submit(context.Background())
	require.Error(t, err)
	assert.Contains(t, fx.buf.Text(), "the parties shall mutually indemnify")
	assert.Equal(t, Idle, fx.flow.State())
}
