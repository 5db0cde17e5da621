// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/lexpad-tui/internal/ui/styles"
)

// renderHints formats bindings as "key desc" pairs for a status bar.
func renderHints(t *styles.Theme, bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, t.KeyHintKey.Render(h.Key)+" "+t.KeyHint.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
