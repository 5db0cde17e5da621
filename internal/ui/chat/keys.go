// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keys the assistant panel handles while it has focus.
type KeyMap struct {
	Submit    key.Binding
	RedFlags  key.Binding
	Summarize key.Binding
	CopyLast  key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Minimize  key.Binding
	Leave     key.Binding
}

// DefaultKeyMap returns the default panel bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "ask"),
		),
		RedFlags: key.NewBinding(
			key.WithKeys("alt+r"),
			key.WithHelp("M-r", "red flags"),
		),
		Summarize: key.NewBinding(
			key.WithKeys("alt+s"),
			key.WithHelp("M-s", "summarize"),
		),
		CopyLast: key.NewBinding(
			key.WithKeys("alt+y"),
			key.WithHelp("M-y", "copy answer"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		Minimize: key.NewBinding(
			key.WithKeys("alt+m"),
			key.WithHelp("M-m", "minimize"),
		),
		Leave: key.NewBinding(
			key.WithKeys("esc", "tab"),
			key.WithHelp("Esc", "back to document"),
		),
	}
}

// ShortHelp returns the bindings shown in the panel footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.RedFlags, k.Summarize, k.Leave}
}
