// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jeranaias/lexpad-tui/internal/inlineedit"
	"github.com/jeranaias/lexpad-tui/internal/ui/components"
	"github.com/jeranaias/lexpad-tui/internal/ui/docview"
	"github.com/jeranaias/lexpad-tui/internal/util"
)

const (
	popupTitle      = "Edit with AI"
	popupQuoteLimit = 120
	popupHint       = "Enter rewrite · Alt+Enter newline · Esc close"
	loadingText     = "Loading document..."
	loadFailedText  = "Failed to load document. Press r to retry or Esc to go back."
)

func (s *editorScreen) view() string {
	rows := []string{s.renderHeader()}
	if s.env.deps.Config.UI.ShowToolbar {
		rows = append(rows, s.renderToolbar())
	}
	rows = append(rows, s.renderBody(), s.renderStatus())
	screen := strings.Join(rows, "\n")

	if s.loading || s.failed || s.source {
		return screen
	}

	if popup, x, y, pw, ph, ok := s.popupBox(); ok {
		screen = components.Overlay(screen, popup, x, y, pw, ph)
	}

	st := s.sess.Panel.State()
	if st.Visible {
		box := s.chat.Render(st)
		screen = components.Overlay(screen, box, st.X, st.Y, components.BlockWidth(box), components.BlockHeight(box))
	}
	return screen
}

func (s *editorScreen) renderHeader() string {
	t := s.env.theme
	title := t.Brand.Render("lexpad") + "  " + t.Title.Render(util.TruncateWidth(s.sess.Title(), max(10, s.env.width/2)))
	state := t.Saved.Render("saved")
	switch {
	case s.loading:
		state = t.Muted.Render("loading")
	case s.failed:
		state = t.ErrorText.Render("not loaded")
	case s.saving:
		state = t.Muted.Render("saving...")
	case s.dirty():
		state = t.Unsaved.Render("unsaved")
	}
	gap := max(1, s.env.width-2-lipgloss.Width(title)-lipgloss.Width(state))
	return t.Header.Width(s.env.width).Render(title + strings.Repeat(" ", gap) + state)
}

// =============================================================================
// TOOLBAR
// =============================================================================

func (s *editorScreen) toolbarLabel(item toolbarItem) string {
	t := s.env.theme
	if s.loading || s.failed {
		return t.ToolbarDisabled.Render(item.label)
	}
	buf := s.sess.Buffer
	switch item.action {
	case actionUndo:
		if !buf.CanUndo() {
			return t.ToolbarDisabled.Render(item.label)
		}
		return t.ToolbarButton.Render(item.label)
	case actionRedo:
		if !buf.CanRedo() {
			return t.ToolbarDisabled.Render(item.label)
		}
		return t.ToolbarButton.Render(item.label)
	}
	if buf.IsActive(item.format) {
		return t.ToolbarActive.Render(item.label)
	}
	return t.ToolbarButton.Render(item.label)
}

func (s *editorScreen) renderToolbar() string {
	labels := make([]string, len(toolbarItems))
	for i, item := range toolbarItems {
		labels[i] = s.toolbarLabel(item)
	}
	row := util.TruncateWidth(strings.Join(labels, " "), s.env.width)
	return s.env.theme.Toolbar.Width(s.env.width).Render(row)
}

// toolbarHit returns the button under column x. Buttons carry one cell of
// padding on each side and are separated by a space.
func (s *editorScreen) toolbarHit(x int) (toolbarItem, bool) {
	col := 0
	for _, item := range toolbarItems {
		w := util.StringWidth(item.label) + 2
		if x >= col && x < col+w {
			return item, true
		}
		col += w + 1
	}
	return toolbarItem{}, false
}

// =============================================================================
// BODY
// =============================================================================

func (s *editorScreen) renderBody() string {
	t := s.env.theme
	h := s.bodyHeight()
	pad := strings.Repeat(" ", bodyLeft)

	var lines []string
	switch {
	case s.loading:
		lines = []string{t.Muted.Render(loadingText)}
	case s.failed:
		lines = []string{t.ErrorText.Render(loadFailedText)}
	case s.source:
		return s.sourceView.View()
	default:
		lines = s.layout.Render(t, s.top, h, docview.RenderOptions{
			Selection:  s.sess.Buffer.Selection(),
			ShowCursor: s.focus == focusBody,
		})
	}

	out := make([]string, h)
	for i := range out {
		if i < len(lines) {
			out[i] = pad + lines[i]
		}
	}
	return strings.Join(out, "\n")
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (s *editorScreen) renderStatus() string {
	t := s.env.theme
	var left string
	switch {
	case s.focus == focusLink:
		left = s.link.View()
	case s.failed:
		left = renderHints(t, []key.Binding{s.keys.Retry, s.keys.Back})
	case s.loading:
		left = renderHints(t, []key.Binding{s.keys.Back})
	case s.sess.Sync.Pending() != nil:
		d := s.sess.Sync.Pending()
		left = t.Unsaved.Render("Unsaved draft from "+humanize.Time(d.SavedAt)+" ("+s.draftChanges(d).Summary()+")") + "  " +
			renderHints(t, []key.Binding{s.keys.Restore, s.keys.Discard})
	case s.source:
		left = renderHints(t, []key.Binding{s.keys.Source})
	default:
		left = renderHints(t, []key.Binding{s.keys.Save, s.keys.InlineEdit, s.keys.Panel, s.keys.Back})
	}

	right := ""
	if !s.loading && !s.failed {
		if at := s.sess.Sync.SavedAt(); !at.IsZero() {
			right = t.Muted.Render("saved " + humanize.Time(at))
		}
	}
	gap := max(1, s.env.width-2-lipgloss.Width(left)-lipgloss.Width(right))
	line := util.TruncateWidth(left+strings.Repeat(" ", gap)+right, max(1, s.env.width-2))
	return t.StatusBar.Width(s.env.width).Render(line)
}

// =============================================================================
// INLINE EDIT POPUP
// =============================================================================

// popupBox renders the inline edit popup at the selection anchor, the row
// below the selection start, or above the selection when it would run off the
// body.
func (s *editorScreen) popupBox() (string, int, int, int, int, bool) {
	edit := s.sess.Edit
	ev, ok := edit.Selection()
	if !ok || !edit.Visible() {
		return "", 0, 0, 0, 0, false
	}
	t := s.env.theme

	quote := strings.Join(strings.Fields(ev.Text), " ")
	rows := []string{
		t.PopupTitle.Render(popupTitle),
		t.PopupQuote.Render(util.TruncateWidth(util.TruncateRunes(quote, popupQuoteLimit), popupWidth-4)),
	}
	if edit.State() == inlineedit.Submitting {
		rows = append(rows, s.spinner.View()+" "+t.Thinking.Render("Rewriting..."))
	} else {
		rows = append(rows, s.popup.View(), t.Muted.Render(popupHint))
	}
	box := t.Popup.Width(popupWidth - 2).Render(strings.Join(rows, "\n"))

	w, h := components.BlockWidth(box), components.BlockHeight(box)
	x := max(0, min(ev.Anchor.X, s.env.width-w))
	y := ev.Anchor.Y
	if y+h > s.env.height-statusRows {
		y = max(s.bodyTop(), ev.Anchor.Y-1-h)
	}
	return box, x, y, w, h, true
}

func (s *editorScreen) popupRect() (int, int, int, int, bool) {
	_, x, y, w, h, ok := s.popupBox()
	return x, y, w, h, ok
}
