// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/lexpad-tui/internal/api"
)

func TestRenderRedFlags(t *testing.T) {
	report := &api.RedFlagReport{
		OverallRiskLevel: "medium",
		Summary:          "Two issues.",
		RedFlags: []api.RedFlag{
			{Type: "Termination", Severity: "medium", Description: "No cure period", Suggestion: "Add 30 days"},
			{Type: "Liability", Severity: "high", Description: "Uncapped", Suggestion: "Cap at fees paid"},
		},
	}
	want := "**Red Flags Analysis**\n\n" +
		"**Overall Risk Level:** medium\n\n" +
		"**Summary:** Two issues.\n\n" +
		"**Detected Issues:**\n\n" +
		"1. **Termination** (medium): No cure period\n   Suggestion: Add 30 days\n\n" +
		"2. **Liability** (high): Uncapped\n   Suggestion: Cap at fees paid"

	assert.Equal(t, want, RenderRedFlags(report))
	assert.Equal(t, RenderRedFlags(report), RenderRedFlags(report))
}

func TestRenderRedFlags_NoFlags(t *testing.T) {
	out := RenderRedFlags(&api.RedFlagReport{})
	assert.Contains(t, out, "**Overall Risk Level:** Unknown")
	assert.Contains(t, out, "**Summary:** Analysis complete.")
	assert.True(t, strings.HasSuffix(out, NoIssuesText))
	assert.NotContains(t, out, "Detected Issues")

	assert.Equal(t, out, RenderRedFlags(nil))
}

func TestMarkdown_Render(t *testing.T) {
	md := NewMarkdown("notty")
	out := md.Render("**Summary:** the lease runs five years", 60)
	assert.Contains(t, out, "Summary:")
	assert.Contains(t, out, "five years")

	// Cached per width.
	md.Render("again", 60)
	assert.Len(t, md.renderers, 1)
}

func TestTranscript(t *testing.T) {
	out := Transcript([]Entry{
		{Question: "Who?", Answer: "Acme", Sources: []api.Source{{Text: "x"}}},
		{Question: "When?", Answer: "2025"},
	})
	assert.True(t, strings.HasPrefix(out, WelcomeMessage))
	assert.Less(t, strings.Index(out, "Who?"), strings.Index(out, "When?"))
	assert.Contains(t, out, "_1 source passage(s)_")
}
