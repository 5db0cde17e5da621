// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles holds the lexpad palette and the lipgloss styles built on it.

All colors are lipgloss.AdaptiveColor so light and dark terminals both work.
Theme detects the color profile with termenv once at startup; screens take a
*Theme rather than building styles inline.

# Usage

	theme := styles.NewTheme()
	title := theme.Title.Render(doc.Title)
	active := theme.ToolbarActive.Render("B")
*/
package styles
