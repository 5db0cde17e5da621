// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/lexpad-tui/internal/assistant"
	"github.com/jeranaias/lexpad-tui/internal/diff"
	"github.com/jeranaias/lexpad-tui/internal/drafts"
	"github.com/jeranaias/lexpad-tui/internal/editor"
	"github.com/jeranaias/lexpad-tui/internal/inlineedit"
	"github.com/jeranaias/lexpad-tui/internal/notify"
	"github.com/jeranaias/lexpad-tui/internal/panel"
	"github.com/jeranaias/lexpad-tui/internal/richtext"
	"github.com/jeranaias/lexpad-tui/internal/selection"
	"github.com/jeranaias/lexpad-tui/internal/ui/chat"
	"github.com/jeranaias/lexpad-tui/internal/ui/components"
	"github.com/jeranaias/lexpad-tui/internal/ui/docview"
)

// Editor messages.
const (
	MsgCopied          = "Copied to clipboard"
	MsgClipboardFailed = "Clipboard is not available"
	MsgDraftRestored   = "Draft restored. Press ctrl+s to save it."
	MsgDraftDiscarded  = "Draft discarded"
	MsgLeaveUnsaved    = "Unsaved changes. Press Esc again to leave."
	MsgNothingToCopy   = "No answer to copy yet"
)

// focus is the part of the editor that receives keys.
type focus int

const (
	focusBody focus = iota
	focusPopup
	focusPanel
	focusLink
)

// Screen geometry.
const (
	headerRows  = 1
	toolbarRows = 2
	statusRows  = 1
	bodyLeft    = 1
	popupWidth  = 52
)

// editorScreen edits one document.
type editorScreen struct {
	env   *env
	docID string
	sess  *editor.Session
	keys  editorKeys

	layout *docview.Layout
	top    int

	loading bool
	failed  bool
	saving  bool
	closed  bool

	focus       focus
	popup       textarea.Model
	lastCapture richtext.Range
	link        textinput.Model
	chat        *chat.View
	spinner     spinner.Model

	selecting    bool
	source       bool
	sourceView   viewport.Model
	confirmLeave bool

	// draftDiff compares the pending draft saved at draftAt with the
	// stored document.
	draftAt   time.Time
	draftDiff *diff.Diff
}

func newEditorScreen(e *env, docID string) *editorScreen {
	cfg := e.deps.Config
	opts := editor.Options{
		HistoryDepth:         cfg.Editor.HistoryDepth,
		TypingGroup:          cfg.Editor.TypingGroup(),
		AutosaveAfterRewrite: cfg.Editor.AutosaveAfterRewrite,
		Panel: panel.Config{
			Width:  cfg.Panel.Width,
			Height: cfg.Panel.Height,
			StartX: cfg.Panel.StartX,
			StartY: cfg.Panel.StartY,
		},
		Drafts:   e.deps.Drafts,
		Notifier: e.toasts,
		Logger:   e.deps.Logger,
	}

	ta := textarea.New()
	ta.Placeholder = "How should this text change?"
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 1000
	ta.SetWidth(popupWidth - 4)
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")

	link := textinput.New()
	link.Prompt = "Link: "
	link.Placeholder = "https://"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = e.theme.Thinking

	s := &editorScreen{
		env:     e,
		docID:   docID,
		sess:    editor.New(e.deps.Client, docID, opts),
		keys:    defaultEditorKeys(),
		loading: true,
		popup:   ta,
		link:    link,
		spinner: sp,
	}
	w, h := s.sess.Panel.Size()
	s.chat = chat.New(e.theme, e.md, w, h)
	s.sess.SetLocator(s.locate)
	s.sourceView = viewport.New(1, 1)
	s.resize()
	return s
}

func (s *editorScreen) init() tea.Cmd {
	sess := s.sess
	return func() tea.Msg {
		res, err := sess.Load(context.Background())
		return loadedMsg{sess: sess, res: res, err: err}
	}
}

func (s *editorScreen) close() {
	s.closed = true
	s.chat.Blur()
	s.popup.Blur()
}

// draftChanges diffs the pending draft against the stored document, once
// per draft.
func (s *editorScreen) draftChanges(d *drafts.Draft) *diff.Diff {
	if s.draftDiff != nil && s.draftAt.Equal(d.SavedAt) {
		return s.draftDiff
	}
	stored := ""
	if doc := s.sess.Sync.Document(); doc != nil {
		stored = plainText(doc.Content)
	}
	s.draftAt, s.draftDiff = d.SavedAt, diff.Compute(stored, plainText(d.Content))
	return s.draftDiff
}

// plainText is the block text of markup, one block per line.
func plainText(markup string) string {
	b := richtext.New()
	if err := b.SetContent(markup, false); err != nil {
		return markup
	}
	return b.Text()
}

func (s *editorScreen) dirty() bool {
	return !s.loading && !s.failed && s.sess.Sync.Dirty()
}

// =============================================================================
// GEOMETRY
// =============================================================================

func (s *editorScreen) bodyTop() int {
	if s.env.deps.Config.UI.ShowToolbar {
		return headerRows + toolbarRows
	}
	return headerRows
}

func (s *editorScreen) bodyWidth() int {
	return max(8, s.env.width-2*bodyLeft)
}

func (s *editorScreen) bodyHeight() int {
	return max(1, s.env.height-s.bodyTop()-statusRows)
}

// locate maps a buffer position to a screen cell.
func (s *editorScreen) locate(pos int) selection.Point {
	if s.layout == nil {
		return selection.Point{}
	}
	p := s.layout.Coords(pos)
	return selection.Point{X: bodyLeft + p.X, Y: s.bodyTop() + p.Y - s.top}
}

// posAt maps a screen cell to a buffer position.
func (s *editorScreen) posAt(x, y int) int {
	return s.layout.PosAt(x-bodyLeft, y-s.bodyTop()+s.top)
}

func (s *editorScreen) resize() {
	s.sess.Panel.SetViewport(s.env.width, s.env.height)
	s.sourceView.Width = s.bodyWidth()
	s.sourceView.Height = s.bodyHeight()
	s.link.Width = max(10, s.env.width-10)
	if !s.loading {
		s.relayout()
	}
}

func (s *editorScreen) relayout() {
	s.layout = docview.Build(s.sess.Buffer.Blocks(), s.bodyWidth())
	s.scrollToCaret()
}

func (s *editorScreen) scrollToCaret() {
	if s.layout == nil {
		return
	}
	y := s.layout.LineOf(s.sess.Buffer.Selection().Head)
	h := s.bodyHeight()
	if y < s.top {
		s.top = y
	}
	if y >= s.top+h {
		s.top = y - h + 1
	}
	s.top = max(0, min(s.top, len(s.layout.Lines)-1))
}

func (s *editorScreen) scroll(delta int) {
	if s.layout == nil {
		return
	}
	s.top = max(0, min(s.top+delta, len(s.layout.Lines)-s.bodyHeight()))
}

// =============================================================================
// UPDATE
// =============================================================================

func (s *editorScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.sess != s.sess {
			return nil
		}
		s.loading = false
		if msg.err != nil {
			// The editor stays open on an empty buffer; the syncer has
			// already reported the failure.
			s.failed = true
			s.relayout()
			return nil
		}
		s.env.logger.Debug("editor ready",
			zap.String("doc_id", s.docID),
			zap.Int("history", len(msg.res.History)),
			zap.Bool("draft", msg.res.Draft != nil))
		if d := msg.res.Draft; d != nil {
			changes := s.draftChanges(d)
			s.env.logger.Info("draft pending",
				zap.String("doc_id", s.docID),
				zap.String("changes", changes.Summary()))
			s.env.logger.Debug("draft diff", zap.String("diff", changes.Format(80)))
		}
		s.chat.SetLog(s.sess.Chat.Log())
		s.relayout()
		return nil

	case rewriteMsg:
		if msg.sess != s.sess {
			return nil
		}
		return s.finishRewrite(msg)

	case savedMsg:
		if msg.sess == s.sess {
			s.saving = false
		}
		return nil

	case chatMsg:
		if msg.sess != s.sess {
			return nil
		}
		_, err := s.sess.Chat.Finish(msg.req, msg.entry, msg.err)
		// The question stays in the input until it has been answered.
		if err == nil && msg.req.Kind == assistant.KindQuestion &&
			strings.TrimSpace(s.chat.Question()) == msg.req.Question {
			s.chat.ClearQuestion()
		}
		s.chat.SetBusy(false)
		s.chat.SetLog(s.sess.Chat.Log())
		return nil

	case clipboardMsg:
		return s.finishClipboard(msg)

	case spinner.TickMsg:
		cmds := []tea.Cmd{s.chat.Tick(msg)}
		if s.sess.Edit.State() == inlineedit.Submitting {
			var cmd tea.Cmd
			s.spinner, cmd = s.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return tea.Batch(cmds...)

	case tea.MouseMsg:
		if s.loading || s.failed {
			return nil
		}
		return s.handleMouse(msg)

	case tea.KeyMsg:
		if s.loading || s.failed {
			switch {
			case key.Matches(msg, s.keys.Back):
				return func() tea.Msg { return showDocumentsMsg{} }
			case s.failed && key.Matches(msg, s.keys.Retry):
				s.failed, s.loading = false, true
				return s.init()
			}
			return nil
		}
		return s.handleKey(msg)
	}
	return nil
}

func (s *editorScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if !key.Matches(msg, s.keys.Back) {
		s.confirmLeave = false
	}
	if s.source {
		return s.handleSourceKey(msg)
	}

	switch s.focus {
	case focusPopup:
		return s.handlePopupKey(msg)
	case focusPanel:
		act, cmd := s.chat.Update(msg)
		return tea.Batch(cmd, s.runChatAction(act))
	case focusLink:
		return s.handleLinkKey(msg)
	}

	cmd := s.handleBodyKey(msg)
	s.afterBodyChange()
	return cmd
}

// afterBodyChange keeps the layout, popup and scroll position in step with
// the buffer after keyboard or mouse input reached it.
func (s *editorScreen) afterBodyChange() {
	buf := s.sess.Buffer
	if buf.Selection().Empty() && s.sess.Edit.State() != inlineedit.Submitting && s.sess.Edit.Visible() {
		s.sess.Edit.Dismiss()
	}
	s.syncPopup()
	s.relayout()
}

// syncPopup clears the instruction input when a new selection was captured.
func (s *editorScreen) syncPopup() {
	ev, ok := s.sess.Edit.Selection()
	if !ok {
		s.lastCapture = richtext.Range{}
		if s.focus == focusPopup {
			s.setFocus(focusBody)
		}
		return
	}
	if ev.Range != s.lastCapture {
		s.lastCapture = ev.Range
		s.popup.Reset()
	}
}

func (s *editorScreen) setFocus(f focus) tea.Cmd {
	s.focus = f
	s.popup.Blur()
	s.chat.Blur()
	s.link.Blur()
	switch f {
	case focusPopup:
		return s.popup.Focus()
	case focusPanel:
		return s.chat.Focus()
	case focusLink:
		return s.link.Focus()
	}
	return nil
}

// =============================================================================
// BODY KEYS
// =============================================================================

func (s *editorScreen) handleBodyKey(msg tea.KeyMsg) tea.Cmd {
	buf := s.sess.Buffer
	sel := buf.Selection()

	if f, ok := formatKeys[msg.String()]; ok {
		buf.Toggle(f)
		return nil
	}

	switch {
	case key.Matches(msg, s.keys.Back):
		if s.sess.Edit.Visible() && s.sess.Edit.State() != inlineedit.Submitting {
			s.sess.Edit.Dismiss()
			return nil
		}
		if s.dirty() && !s.confirmLeave {
			s.confirmLeave = true
			notify.Warning(s.env.toasts, MsgLeaveUnsaved)
			return nil
		}
		return func() tea.Msg { return showDocumentsMsg{} }
	case key.Matches(msg, s.keys.Save):
		return s.save()
	case key.Matches(msg, s.keys.Undo):
		buf.Undo()
	case key.Matches(msg, s.keys.Redo):
		buf.Redo()
	case key.Matches(msg, s.keys.SelectAll):
		buf.SelectAll()
	case key.Matches(msg, s.keys.Copy):
		return s.copySelection(false)
	case key.Matches(msg, s.keys.Cut):
		return s.copySelection(true)
	case key.Matches(msg, s.keys.Paste):
		return readClipboard
	case key.Matches(msg, s.keys.InlineEdit):
		if s.sess.Edit.Visible() && s.sess.Edit.State() != inlineedit.Submitting {
			return s.setFocus(focusPopup)
		}
	case key.Matches(msg, s.keys.Panel):
		s.sess.Panel.ToggleVisible()
		if s.sess.Panel.State().Visible {
			return s.setFocus(focusPanel)
		}
	case key.Matches(msg, s.keys.FocusPanel):
		if s.sess.Panel.State().Visible {
			return s.setFocus(focusPanel)
		}
	case key.Matches(msg, s.keys.Minimize):
		s.sess.Panel.ToggleMinimized()
	case key.Matches(msg, s.keys.Link):
		if buf.IsActive(richtext.FormatLink) && sel.Empty() {
			buf.UnsetLink()
			return nil
		}
		s.link.SetValue(buf.LinkHref())
		return s.setFocus(focusLink)
	case key.Matches(msg, s.keys.Align):
		s.cycleAlign()
	case key.Matches(msg, s.keys.Source):
		s.openSource()
	case key.Matches(msg, s.keys.Restore):
		if s.sess.Sync.RestoreDraft() {
			notify.Info(s.env.toasts, MsgDraftRestored)
		}
	case key.Matches(msg, s.keys.Discard):
		if s.sess.Sync.Pending() != nil {
			if err := s.sess.Sync.DiscardDraft(context.Background()); err != nil {
				s.env.logger.Warn("draft discard failed", zap.Error(err))
			}
			notify.Info(s.env.toasts, MsgDraftDiscarded)
		}
	case key.Matches(msg, s.keys.WordLeft):
		buf.SetSelection(s.wordLeft(sel.Head), s.wordLeft(sel.Head))
	case key.Matches(msg, s.keys.WordRight):
		buf.SetSelection(s.wordRight(sel.Head), s.wordRight(sel.Head))
	case key.Matches(msg, s.keys.SelectLeft):
		buf.ExtendSelection(max(0, sel.Head-1))
	case key.Matches(msg, s.keys.SelectRight):
		buf.ExtendSelection(min(buf.Size(), sel.Head+1))
	case key.Matches(msg, s.keys.SelectUp):
		buf.ExtendSelection(s.layout.Vertical(sel.Head, -1))
	case key.Matches(msg, s.keys.SelectDown):
		buf.ExtendSelection(s.layout.Vertical(sel.Head, 1))
	case key.Matches(msg, s.keys.SelectHome):
		start, _ := s.layout.LineBounds(sel.Head)
		buf.ExtendSelection(start)
	case key.Matches(msg, s.keys.SelectEnd):
		_, end := s.layout.LineBounds(sel.Head)
		buf.ExtendSelection(end)
	default:
		s.handleEditingKey(msg)
	}
	return nil
}

func (s *editorScreen) handleEditingKey(msg tea.KeyMsg) {
	buf := s.sess.Buffer
	sel := buf.Selection()
	switch msg.Type {
	case tea.KeyRunes:
		if !msg.Alt {
			buf.InsertText(string(msg.Runes))
		}
	case tea.KeySpace:
		buf.InsertText(" ")
	case tea.KeyEnter:
		buf.SplitBlock()
	case tea.KeyBackspace:
		buf.DeleteBackward()
	case tea.KeyDelete:
		buf.DeleteForward()
	case tea.KeyLeft:
		pos := max(0, sel.Head-1)
		if !sel.Empty() {
			pos = sel.From()
		}
		buf.SetSelection(pos, pos)
	case tea.KeyRight:
		pos := min(buf.Size(), sel.Head+1)
		if !sel.Empty() {
			pos = sel.To()
		}
		buf.SetSelection(pos, pos)
	case tea.KeyUp:
		pos := s.layout.Vertical(sel.Head, -1)
		buf.SetSelection(pos, pos)
	case tea.KeyDown:
		pos := s.layout.Vertical(sel.Head, 1)
		buf.SetSelection(pos, pos)
	case tea.KeyHome:
		start, _ := s.layout.LineBounds(sel.Head)
		buf.SetSelection(start, start)
	case tea.KeyEnd:
		_, end := s.layout.LineBounds(sel.Head)
		buf.SetSelection(end, end)
	case tea.KeyPgUp:
		pos := s.layout.Vertical(sel.Head, -s.bodyHeight())
		buf.SetSelection(pos, pos)
	case tea.KeyPgDown:
		pos := s.layout.Vertical(sel.Head, s.bodyHeight())
		buf.SetSelection(pos, pos)
	}
}

func (s *editorScreen) wordLeft(pos int) int {
	text := []rune(s.sess.Buffer.Text())
	pos = min(pos, len(text))
	for pos > 0 && !isWordRune(text[pos-1]) {
		pos--
	}
	for pos > 0 && isWordRune(text[pos-1]) {
		pos--
	}
	return pos
}

func (s *editorScreen) wordRight(pos int) int {
	text := []rune(s.sess.Buffer.Text())
	for pos < len(text) && !isWordRune(text[pos]) {
		pos++
	}
	for pos < len(text) && isWordRune(text[pos]) {
		pos++
	}
	return pos
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\''
}

func (s *editorScreen) cycleAlign() {
	buf := s.sess.Buffer
	bi, _ := buf.Position(buf.Selection().Head)
	blocks := buf.Blocks()
	if bi >= len(blocks) {
		return
	}
	buf.SetTextAlign(nextAlign[blocks[bi].Align])
}

// =============================================================================
// SAVE AND CLIPBOARD
// =============================================================================

// save serializes on the event loop and sends off it.
func (s *editorScreen) save() tea.Cmd {
	if s.saving {
		return nil
	}
	s.saving = true
	sess := s.sess
	content := sess.Buffer.Content()
	return func() tea.Msg {
		return savedMsg{sess: sess, err: sess.Sync.SaveContent(context.Background(), content)}
	}
}

func (s *editorScreen) copySelection(cut bool) tea.Cmd {
	buf := s.sess.Buffer
	sel := buf.Selection()
	if sel.Empty() {
		return nil
	}
	text := buf.TextBetween(sel.From(), sel.To())
	if cut {
		buf.DeleteSelection()
	}
	return writeClipboard(text)
}

func writeClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{text: text, err: clipboard.WriteAll(text)}
	}
}

func readClipboard() tea.Msg {
	text, err := clipboard.ReadAll()
	return clipboardMsg{text: text, paste: true, err: err}
}

func (s *editorScreen) finishClipboard(msg clipboardMsg) tea.Cmd {
	if msg.err != nil {
		s.env.logger.Warn("clipboard failed", zap.Bool("paste", msg.paste), zap.Error(msg.err))
		notify.Warning(s.env.toasts, MsgClipboardFailed)
		return nil
	}
	if !msg.paste {
		notify.Info(s.env.toasts, MsgCopied)
		return nil
	}
	if s.focus != focusBody || s.source || msg.text == "" {
		return nil
	}
	s.sess.Buffer.InsertText(msg.text)
	s.afterBodyChange()
	return nil
}

// =============================================================================
// INLINE EDIT
// =============================================================================

func (s *editorScreen) handlePopupKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		s.sess.Edit.Dismiss()
		s.syncPopup()
		return s.setFocus(focusBody)
	case tea.KeyEnter:
		return s.submitEdit()
	case tea.KeyTab:
		return s.setFocus(focusBody)
	}
	var cmd tea.Cmd
	s.popup, cmd = s.popup.Update(msg)
	s.sess.Edit.SetInstruction(s.popup.Value())
	return cmd
}

func (s *editorScreen) submitEdit() tea.Cmd {
	req, err := s.sess.Edit.Begin()
	if err != nil {
		if !errors.Is(err, inlineedit.ErrNotReady) {
			s.env.logger.Debug("inline edit not started", zap.Error(err))
		}
		return nil
	}
	focusCmd := s.setFocus(focusBody)
	sess := s.sess
	run := func() tea.Msg {
		text, err := sess.Edit.Rewrite(context.Background(), req)
		return rewriteMsg{sess: sess, req: req, text: text, err: err}
	}
	return tea.Batch(focusCmd, run, s.spinner.Tick)
}

func (s *editorScreen) finishRewrite(msg rewriteMsg) tea.Cmd {
	edit := s.sess.Edit
	if msg.err != nil {
		edit.Finish(msg.err)
		s.syncPopup()
		return nil
	}
	content, err := edit.Apply(msg.req, msg.text)
	edit.Finish(err)
	s.syncPopup()
	s.relayout()
	if err != nil || !s.env.deps.Config.Editor.AutosaveAfterRewrite {
		return nil
	}
	s.saving = true
	sess := s.sess
	return func() tea.Msg {
		return savedMsg{sess: sess, err: sess.Edit.Save(context.Background(), content)}
	}
}

// =============================================================================
// LINK PROMPT
// =============================================================================

func (s *editorScreen) handleLinkKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		return s.setFocus(focusBody)
	case tea.KeyEnter:
		s.sess.Buffer.SetLink(s.link.Value())
		s.link.Reset()
		s.relayout()
		return s.setFocus(focusBody)
	}
	var cmd tea.Cmd
	s.link, cmd = s.link.Update(msg)
	return cmd
}

// =============================================================================
// SOURCE VIEW
// =============================================================================

func (s *editorScreen) openSource() {
	s.source = true
	s.sourceView.SetContent(components.HighlightMarkup(s.sess.Buffer.Content(), "monokai"))
	s.sourceView.GotoTop()
}

func (s *editorScreen) handleSourceKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, s.keys.Source) || key.Matches(msg, s.keys.Back) {
		s.source = false
		return nil
	}
	var cmd tea.Cmd
	s.sourceView, cmd = s.sourceView.Update(msg)
	return cmd
}

// =============================================================================
// ASSISTANT
// =============================================================================

func (s *editorScreen) runChatAction(act chat.Action) tea.Cmd {
	switch act {
	case chat.ActionAsk:
		return s.startChat(assistant.KindQuestion, s.chat.Question())
	case chat.ActionRedFlags:
		return s.startChat(assistant.KindRedFlags, "")
	case chat.ActionSummarize:
		return s.startChat(assistant.KindSummary, "")
	case chat.ActionCopyLast:
		log := s.sess.Chat.Log()
		if len(log) == 0 {
			notify.Info(s.env.toasts, MsgNothingToCopy)
			return nil
		}
		return writeClipboard(log[len(log)-1].Answer)
	case chat.ActionMinimize:
		s.sess.Panel.ToggleMinimized()
	case chat.ActionClose:
		s.sess.Panel.ToggleVisible()
		return s.setFocus(focusBody)
	case chat.ActionLeave:
		return s.setFocus(focusBody)
	}
	return nil
}

func (s *editorScreen) startChat(kind assistant.Kind, question string) tea.Cmd {
	req, err := s.sess.Chat.Begin(kind, question)
	if err != nil {
		return nil
	}
	sess := s.sess
	run := func() tea.Msg {
		entry, err := sess.Chat.Run(context.Background(), req)
		return chatMsg{sess: sess, req: req, entry: entry, err: err}
	}
	return tea.Batch(s.chat.SetBusy(true), run)
}

// =============================================================================
// MOUSE
// =============================================================================

func (s *editorScreen) handleMouse(msg tea.MouseMsg) tea.Cmd {
	p := s.sess.Panel
	switch msg.Type {
	case tea.MouseLeft:
		return s.mouseDown(msg.X, msg.Y)

	case tea.MouseMotion:
		if p.State().Dragging {
			p.PointerMove(msg.X, msg.Y)
			return nil
		}
		if s.selecting && !s.source {
			s.sess.Buffer.ExtendSelection(s.posAt(msg.X, msg.Y))
			s.afterBodyChange()
		}

	case tea.MouseRelease:
		p.PointerUp()
		s.selecting = false

	case tea.MouseWheelUp, tea.MouseWheelDown:
		delta := 3
		if msg.Type == tea.MouseWheelUp {
			delta = -3
		}
		switch {
		case p.InContent(msg.X, msg.Y):
			s.chat.Scroll(delta)
		case s.source:
			if delta < 0 {
				s.sourceView.LineUp(-delta)
			} else {
				s.sourceView.LineDown(delta)
			}
		default:
			s.scroll(delta)
		}
	}
	return nil
}

func (s *editorScreen) mouseDown(x, y int) tea.Cmd {
	p := s.sess.Panel
	if px, py, w, h, ok := s.popupRect(); ok && x >= px && x < px+w && y >= py && y < py+h {
		return s.setFocus(focusPopup)
	}

	if p.Contains(x, y) {
		st := p.State()
		if act := s.chat.Click(x-st.X, y-st.Y, st.Minimized); act != chat.ActionNone {
			return s.runChatAction(act)
		}
		if p.InContent(x, y) {
			return s.setFocus(focusPanel)
		}
		p.PointerDown(x, y)
		return nil
	}

	if s.env.deps.Config.UI.ShowToolbar && y >= headerRows && y < headerRows+toolbarRows-1 {
		s.clickToolbar(x)
		s.afterBodyChange()
		return s.setFocus(focusBody)
	}

	if y >= s.bodyTop() && y < s.bodyTop()+s.bodyHeight() && !s.source {
		pos := s.posAt(x, y)
		s.sess.Buffer.SetSelection(pos, pos)
		s.selecting = true
		s.afterBodyChange()
		return s.setFocus(focusBody)
	}
	return nil
}

func (s *editorScreen) clickToolbar(x int) {
	item, ok := s.toolbarHit(x)
	if !ok {
		return
	}
	buf := s.sess.Buffer
	switch item.action {
	case actionUndo:
		buf.Undo()
	case actionRedo:
		buf.Redo()
	case actionLink:
		if buf.IsActive(richtext.FormatLink) {
			buf.UnsetLink()
			return
		}
		s.link.SetValue(buf.LinkHref())
		s.setFocus(focusLink)
	default:
		buf.Toggle(item.format)
	}
}
