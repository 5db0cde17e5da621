// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/lexpad-tui/internal/richtext"
)

// editorKeys are the document editor bindings.
type editorKeys struct {
	Save        key.Binding
	Undo        key.Binding
	Redo        key.Binding
	SelectAll   key.Binding
	Copy        key.Binding
	Cut         key.Binding
	Paste       key.Binding
	InlineEdit  key.Binding
	Panel       key.Binding
	FocusPanel  key.Binding
	Minimize    key.Binding
	Link        key.Binding
	Align       key.Binding
	Source      key.Binding
	Restore     key.Binding
	Discard     key.Binding
	Back        key.Binding
	Retry       key.Binding
	WordLeft    key.Binding
	WordRight   key.Binding
	SelectLeft  key.Binding
	SelectRight key.Binding
	SelectUp    key.Binding
	SelectDown  key.Binding
	SelectHome  key.Binding
	SelectEnd   key.Binding
}

func defaultEditorKeys() editorKeys {
	return editorKeys{
		Save:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("C-s", "save")),
		Undo:        key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("C-z", "undo")),
		Redo:        key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("C-y", "redo")),
		SelectAll:   key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("C-a", "select all")),
		Copy:        key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("C-c", "copy")),
		Cut:         key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("C-x", "cut")),
		Paste:       key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("C-v", "paste")),
		InlineEdit:  key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("C-e", "edit with AI")),
		Panel:       key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("C-p", "assistant")),
		FocusPanel:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "focus assistant")),
		Minimize:    key.NewBinding(key.WithKeys("alt+m"), key.WithHelp("M-m", "minimize assistant")),
		Link:        key.NewBinding(key.WithKeys("alt+k"), key.WithHelp("M-k", "link")),
		Align:       key.NewBinding(key.WithKeys("alt+a"), key.WithHelp("M-a", "cycle alignment")),
		Source:      key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("C-u", "view source")),
		Restore:     key.NewBinding(key.WithKeys("alt+r"), key.WithHelp("M-r", "restore draft")),
		Discard:     key.NewBinding(key.WithKeys("alt+d"), key.WithHelp("M-d", "discard draft")),
		Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "documents")),
		Retry:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		WordLeft:    key.NewBinding(key.WithKeys("ctrl+left", "alt+left")),
		WordRight:   key.NewBinding(key.WithKeys("ctrl+right", "alt+right")),
		SelectLeft:  key.NewBinding(key.WithKeys("shift+left")),
		SelectRight: key.NewBinding(key.WithKeys("shift+right")),
		SelectUp:    key.NewBinding(key.WithKeys("shift+up")),
		SelectDown:  key.NewBinding(key.WithKeys("shift+down")),
		SelectHome:  key.NewBinding(key.WithKeys("shift+home")),
		SelectEnd:   key.NewBinding(key.WithKeys("shift+end")),
	}
}

// formatKeys maps alt shortcuts to toolbar formats.
var formatKeys = map[string]richtext.Format{
	"alt+b": richtext.FormatBold,
	"alt+i": richtext.FormatItalic,
	"alt+u": richtext.FormatUnderline,
	"alt+s": richtext.FormatStrike,
	"alt+c": richtext.FormatCode,
	"alt+h": richtext.FormatHighlight,
	"alt+1": richtext.FormatHeading1,
	"alt+2": richtext.FormatHeading2,
	"alt+3": richtext.FormatHeading3,
	"alt+l": richtext.FormatBulletList,
	"alt+o": richtext.FormatOrderedList,
	"alt+q": richtext.FormatBlockquote,
}

// toolbarItem is one toolbar button.
type toolbarItem struct {
	label  string
	format richtext.Format
	// action is set for buttons that are not formats.
	action string
}

const (
	actionUndo = "undo"
	actionRedo = "redo"
	actionLink = "link"
)

var toolbarItems = []toolbarItem{
	{label: "Undo", action: actionUndo},
	{label: "Redo", action: actionRedo},
	{label: "B", format: richtext.FormatBold},
	{label: "I", format: richtext.FormatItalic},
	{label: "U", format: richtext.FormatUnderline},
	{label: "S", format: richtext.FormatStrike},
	{label: "</>", format: richtext.FormatCode},
	{label: "HL", format: richtext.FormatHighlight},
	{label: "Link", format: richtext.FormatLink, action: actionLink},
	{label: "H1", format: richtext.FormatHeading1},
	{label: "H2", format: richtext.FormatHeading2},
	{label: "H3", format: richtext.FormatHeading3},
	{label: "•", format: richtext.FormatBulletList},
	{label: "1.", format: richtext.FormatOrderedList},
	{label: "❝", format: richtext.FormatBlockquote},
	{label: "Left", format: richtext.FormatAlignLeft},
	{label: "Center", format: richtext.FormatAlignCenter},
	{label: "Right", format: richtext.FormatAlignRight},
	{label: "Justify", format: richtext.FormatAlignJustify},
}

// nextAlign cycles left, center, right, justify.
var nextAlign = map[richtext.Align]richtext.Align{
	richtext.AlignLeft:    richtext.AlignCenter,
	richtext.AlignCenter:  richtext.AlignRight,
	richtext.AlignRight:   richtext.AlignJustify,
	richtext.AlignJustify: richtext.AlignLeft,
}
