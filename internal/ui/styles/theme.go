// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER AND STATUS
	// ==========================================================================

	Header     lipgloss.Style
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Brand      lipgloss.Style
	StatusBar  lipgloss.Style
	Saved      lipgloss.Style
	Unsaved    lipgloss.Style
	KeyHint    lipgloss.Style
	KeyHintKey lipgloss.Style

	// ==========================================================================
	// TOOLBAR
	// ==========================================================================

	Toolbar         lipgloss.Style
	ToolbarButton   lipgloss.Style
	ToolbarActive   lipgloss.Style
	ToolbarDisabled lipgloss.Style

	// ==========================================================================
	// DOCUMENT BODY
	// ==========================================================================

	Body       lipgloss.Style
	Heading    [4]lipgloss.Style
	Blockquote lipgloss.Style
	ListMarker lipgloss.Style
	Selection  lipgloss.Style
	Cursor     lipgloss.Style
	Highlight  lipgloss.Style
	Code       lipgloss.Style
	Link       lipgloss.Style

	// ==========================================================================
	// POPUP AND PANEL
	// ==========================================================================

	Popup         lipgloss.Style
	PopupTitle    lipgloss.Style
	PopupQuote    lipgloss.Style
	Panel         lipgloss.Style
	PanelDragging lipgloss.Style
	PanelTitle    lipgloss.Style
	PanelButton   lipgloss.Style
	Thinking      lipgloss.Style
	Question      lipgloss.Style

	// ==========================================================================
	// LISTS AND FORMS
	// ==========================================================================

	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style
	ListPreview      lipgloss.Style
	ListMeta         lipgloss.Style
	InputLabel       lipgloss.Style
	InputBox         lipgloss.Style
	ErrorText        lipgloss.Style
	Muted            lipgloss.Style
}

// NewTheme creates a theme for the current terminal.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

// NewThemeFor creates a theme for an explicit "dark" or "light" preference.
// Any other value detects the background.
func NewThemeFor(pref string) *Theme {
	switch pref {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
	t := NewTheme()
	switch pref {
	case "dark":
		t.IsDark = true
	case "light":
		t.IsDark = false
	}
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.Title = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	t.Subtitle = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.Brand = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.Saved = lipgloss.NewStyle().Foreground(Emerald)
	t.Unsaved = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.KeyHint = lipgloss.NewStyle().Foreground(TextMuted)
	t.KeyHintKey = lipgloss.NewStyle().Foreground(TextSecondary).Bold(true)

	t.Toolbar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)
	t.ToolbarButton = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)
	t.ToolbarActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Bold(true).
		Padding(0, 1)
	t.ToolbarDisabled = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	t.Body = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Heading = [4]lipgloss.Style{
		lipgloss.NewStyle().Foreground(TextPrimary),
		lipgloss.NewStyle().Bold(true).Underline(true).Foreground(Purple),
		lipgloss.NewStyle().Bold(true).Foreground(Purple),
		lipgloss.NewStyle().Bold(true).Foreground(TextPrimary),
	}
	t.Blockquote = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.ListMarker = lipgloss.NewStyle().Foreground(Cyan)
	t.Selection = lipgloss.NewStyle().Background(SelectionBg)
	t.Cursor = lipgloss.NewStyle().Reverse(true)
	t.Highlight = lipgloss.NewStyle().Background(HighlightBg)
	t.Code = lipgloss.NewStyle().Background(CodeBg)
	t.Link = lipgloss.NewStyle().Foreground(LinkColor).Underline(true)

	t.Popup = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Background(Surface).
		Padding(0, 1)
	t.PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.PopupQuote = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Background(Surface)
	t.PanelDragging = t.Panel.BorderForeground(Cyan)
	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 1)
	t.PanelButton = lipgloss.NewStyle().
		Foreground(Purple).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Purple).
		Padding(0, 1)
	t.Thinking = lipgloss.NewStyle().Foreground(Purple).Italic(true)
	t.Question = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

	t.ListItem = lipgloss.NewStyle().PaddingLeft(2)
	t.ListItemSelected = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(Cyan).
		Foreground(Cyan).
		Bold(true)
	t.ListPreview = lipgloss.NewStyle().Foreground(TextSecondary).PaddingLeft(2)
	t.ListMeta = lipgloss.NewStyle().Foreground(TextMuted).PaddingLeft(2)
	t.InputLabel = lipgloss.NewStyle().Foreground(TextSecondary)
	t.InputBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OverlayDim).
		Padding(0, 1)
	t.ErrorText = lipgloss.NewStyle().Foreground(Rose)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
