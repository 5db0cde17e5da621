// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/lexpad-tui/internal/assistant"
	"github.com/jeranaias/lexpad-tui/internal/panel"
	"github.com/jeranaias/lexpad-tui/internal/ui/styles"
	"github.com/jeranaias/lexpad-tui/internal/util"
)

// Action is what a key or click in the panel asks the editor to do.
type Action int

const (
	ActionNone Action = iota
	ActionAsk
	ActionRedFlags
	ActionSummarize
	ActionCopyLast
	ActionMinimize
	ActionClose
	ActionLeave
)

// Panel title and button labels.
const (
	Title          = "AI Assistant"
	ButtonRedFlags = "Red Flags"
	ButtonSummary  = "Summarize"
	minimizeGlyph  = "[_]"
	closeGlyph     = "[x]"
	restoreGlyph   = "[^]"
)

// Row offsets inside the panel, counted from its top edge.
const (
	titleRow = 1
)

// View is the assistant panel's presentation state.
type View struct {
	theme *styles.Theme
	keys  KeyMap
	md    *assistant.Markdown

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width  int
	height int

	entries int
	busy    bool
	focused bool
}

// New creates a panel view sized to w x h cells including the border.
func New(theme *styles.Theme, md *assistant.Markdown, w, h int) *View {
	in := textinput.New()
	in.Placeholder = "Ask about this document..."
	in.Prompt = "> "
	in.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Thinking

	v := &View{
		theme:   theme,
		keys:    DefaultKeyMap(),
		md:      md,
		input:   in,
		spinner: sp,
		entries: -1,
	}
	v.viewport = viewport.New(1, 1)
	v.SetSize(w, h)
	return v
}

// SetSize resizes the panel.
func (v *View) SetSize(w, h int) {
	v.width, v.height = w, h
	v.viewport.Width = v.innerWidth()
	v.viewport.Height = max(1, h-panel.HeaderRows-1-3)
	v.input.Width = max(4, v.innerWidth()-5)
	v.entries = -1
}

func (v *View) innerWidth() int {
	return max(4, v.width-2)
}

// Focus gives the question input the keyboard.
func (v *View) Focus() tea.Cmd {
	v.focused = true
	return v.input.Focus()
}

// Blur releases the keyboard.
func (v *View) Blur() {
	v.focused = false
	v.input.Blur()
}

// Focused reports whether the panel has the keyboard.
func (v *View) Focused() bool {
	return v.focused
}

// Question returns the typed question.
func (v *View) Question() string {
	return v.input.Value()
}

// ClearQuestion empties the input after a question is accepted.
func (v *View) ClearQuestion() {
	v.input.Reset()
}

// SetBusy switches the thinking indicator. It returns the spinner tick when
// the indicator starts.
func (v *View) SetBusy(busy bool) tea.Cmd {
	start := busy && !v.busy
	v.busy = busy
	if start {
		return v.spinner.Tick
	}
	return nil
}

// Busy reports whether the thinking indicator is on.
func (v *View) Busy() bool {
	return v.busy
}

// SetLog renders the transcript. Rendering is skipped when nothing changed.
func (v *View) SetLog(entries []assistant.Entry) {
	if len(entries) == v.entries {
		return
	}
	v.entries = len(entries)
	v.viewport.SetContent(v.md.Render(assistant.Transcript(entries), v.innerWidth()))
	v.viewport.GotoBottom()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles a message while the panel is focused.
func (v *View) Update(msg tea.Msg) (Action, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !v.busy {
			return ActionNone, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return ActionNone, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Submit):
			return ActionAsk, nil
		case key.Matches(msg, v.keys.RedFlags):
			return ActionRedFlags, nil
		case key.Matches(msg, v.keys.Summarize):
			return ActionSummarize, nil
		case key.Matches(msg, v.keys.CopyLast):
			return ActionCopyLast, nil
		case key.Matches(msg, v.keys.Minimize):
			return ActionMinimize, nil
		case key.Matches(msg, v.keys.Leave):
			return ActionLeave, nil
		case key.Matches(msg, v.keys.PageUp):
			v.viewport.HalfViewUp()
			return ActionNone, nil
		case key.Matches(msg, v.keys.PageDown):
			v.viewport.HalfViewDown()
			return ActionNone, nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return ActionNone, cmd
	}
	return ActionNone, nil
}

// Tick advances the spinner even when the panel is not focused.
func (v *View) Tick(msg spinner.TickMsg) tea.Cmd {
	if !v.busy {
		return nil
	}
	var cmd tea.Cmd
	v.spinner, cmd = v.spinner.Update(msg)
	return cmd
}

// Scroll moves the transcript by delta lines.
func (v *View) Scroll(delta int) {
	if delta < 0 {
		v.viewport.LineUp(-delta)
	} else {
		v.viewport.LineDown(delta)
	}
}

// Click maps a click at panel-relative cell (x, y) to an action.
func (v *View) Click(x, y int, minimized bool) Action {
	if y == titleRow {
		closeX := v.width - 1 - util.StringWidth(closeGlyph)
		minX := closeX - 1 - util.StringWidth(minimizeGlyph)
		switch {
		case x >= closeX && x < closeX+util.StringWidth(closeGlyph):
			return ActionClose
		case x >= minX && x < minX+util.StringWidth(minimizeGlyph):
			return ActionMinimize
		}
		return ActionNone
	}
	if minimized {
		return ActionNone
	}
	if y == v.buttonRow() {
		lx := x - 1
		redW := util.StringWidth(ButtonRedFlags) + 2
		if lx >= 0 && lx < redW {
			return ActionRedFlags
		}
		if lx > redW && lx < redW+1+util.StringWidth(ButtonSummary)+2 {
			return ActionSummarize
		}
	}
	return ActionNone
}

// buttonRow is the panel-relative row of the action buttons.
func (v *View) buttonRow() int {
	return panel.HeaderRows + v.viewport.Height + 1
}

// =============================================================================
// VIEW
// =============================================================================

// Render draws the panel for state s.
func (v *View) Render(s panel.State) string {
	box := v.theme.Panel
	if s.Dragging {
		box = v.theme.PanelDragging
	}
	inner := v.innerWidth()

	glyph := minimizeGlyph
	if s.Minimized {
		glyph = restoreGlyph
	}
	controls := glyph + " " + closeGlyph
	titleW := inner - util.StringWidth(controls) - 1
	title := v.theme.PanelTitle.Render(util.PadRight(Title, max(1, titleW-2))) + " " + controls

	if s.Minimized {
		return box.Width(inner).Render(title)
	}

	rows := []string{title, v.viewport.View()}

	status := ""
	if v.busy {
		status = v.spinner.View() + " " + v.theme.Thinking.Render(assistant.ThinkingText)
	}
	rows = append(rows, util.PadRight(status, inner))

	buttons := v.theme.ToolbarButton.Render(ButtonRedFlags) + " " + v.theme.ToolbarButton.Render(ButtonSummary)
	if v.busy {
		buttons = v.theme.ToolbarDisabled.Render(ButtonRedFlags) + " " + v.theme.ToolbarDisabled.Render(ButtonSummary)
	}
	rows = append(rows, buttons, v.input.View())

	return box.Width(inner).Height(v.height - 2).Render(strings.Join(rows, "\n"))
}
