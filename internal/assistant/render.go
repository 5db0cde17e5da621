// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/lexpad-tui/internal/api"
)

// NoIssuesText is stated when red-flag detection finds nothing.
const NoIssuesText = "No issues were found."

// RenderRedFlags formats a report as markdown. The output depends only on the
// report.
func RenderRedFlags(r *api.RedFlagReport) string {
	if r == nil {
		r = &api.RedFlagReport{}
	}
	level := strings.TrimSpace(r.OverallRiskLevel)
	if level == "" {
		level = "Unknown"
	}
	summary := strings.TrimSpace(r.Summary)
	if summary == "" {
		summary = "Analysis complete."
	}

	var sb strings.Builder
	sb.WriteString("**Red Flags Analysis**\n\n")
	fmt.Fprintf(&sb, "**Overall Risk Level:** %s\n\n", level)
	fmt.Fprintf(&sb, "**Summary:** %s\n\n", summary)

	if len(r.RedFlags) == 0 {
		sb.WriteString(NoIssuesText)
		return sb.String()
	}

	sb.WriteString("**Detected Issues:**\n\n")
	items := make([]string, len(r.RedFlags))
	for i, f := range r.RedFlags {
		items[i] = fmt.Sprintf("%d. **%s** (%s): %s\n   Suggestion: %s",
			i+1, f.Type, f.Severity, f.Description, f.Suggestion)
	}
	sb.WriteString(strings.Join(items, "\n\n"))
	return sb.String()
}

// =============================================================================
// MARKDOWN
// =============================================================================

// Glamour pads rendered output by this many cells on each side.
const glamourGutter = 2

// Markdown renders answers for the terminal. Renderers are cached per wrap
// width because building one parses a whole style sheet.
type Markdown struct {
	style string

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdown creates a renderer. style is a glamour standard style name
// ("dark", "light", "notty", ...); "" or "auto" detects the terminal.
func NewMarkdown(style string) *Markdown {
	return &Markdown{style: style, renderers: make(map[int]*glamour.TermRenderer)}
}

func (m *Markdown) renderer(width int) (*glamour.TermRenderer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.renderers[width]; ok {
		return r, nil
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if m.style == "" || m.style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(m.style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	m.renderers[width] = r
	return r, nil
}

// Render renders content wrapped to width cells. It falls back to the raw
// text if rendering fails.
func (m *Markdown) Render(content string, width int) string {
	wrap := width - 2*glamourGutter
	if wrap < 10 {
		wrap = 10
	}
	r, err := m.renderer(wrap)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

// Transcript renders the whole log as markdown: the welcome message, then
// each question and answer in arrival order.
func Transcript(entries []Entry) string {
	var sb strings.Builder
	sb.WriteString(WelcomeMessage)
	for _, e := range entries {
		sb.WriteString("\n\n---\n\n")
		fmt.Fprintf(&sb, "**You:** %s\n\n", e.Question)
		sb.WriteString(e.Answer)
		if len(e.Sources) > 0 {
			fmt.Fprintf(&sb, "\n\n_%d source passage(s)_", len(e.Sources))
		}
	}
	return sb.String()
}
