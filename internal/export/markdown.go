// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/lexpad-tui/internal/richtext"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports to Markdown. Underline and highlight have no
// Markdown syntax and are written as inline HTML.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a bundle to Markdown.
func (e *MarkdownExporter) Export(b *Bundle) ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	buf, err := b.buffer()
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", escapeYAML(b.Title()))
		fmt.Fprintf(&sb, "document_id: %s\n", escapeYAML(b.Document.ID))
		if ts := b.Document.Updated(); !ts.IsZero() {
			fmt.Fprintf(&sb, "updated: %s\n", ts.Format(time.RFC3339))
		}
		fmt.Fprintf(&sb, "exported: %s\n", b.exportedAt().Format(time.RFC3339))
		if e.options.IncludeChat {
			fmt.Fprintf(&sb, "questions: %d\n", len(b.Chat))
		}
		sb.WriteString("generator: lexpad\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(b.Title()))
	sb.WriteString(BlocksToMarkdown(buf.Blocks()))

	if e.options.IncludeChat && len(b.Chat) > 0 {
		sb.WriteString("\n\n---\n\n## Assistant\n")
		for _, entry := range b.Chat {
			fmt.Fprintf(&sb, "\n### %s: %s\n\n", kindLabel(entry.Kind), escapeMarkdown(entry.Question))
			if !entry.Timestamp.IsZero() {
				fmt.Fprintf(&sb, "<sub>%s</sub>\n\n", formatTimestamp(entry.Timestamp))
			}
			sb.WriteString(strings.TrimSpace(entry.Answer))
			sb.WriteString("\n")
			if n := len(entry.Sources); n > 0 {
				fmt.Fprintf(&sb, "\n_%d source passage(s)_\n", n)
			}
		}
	}
	return []byte(strings.TrimRight(sb.String(), "\n") + "\n"), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// CONVERSION
// =============================================================================

// BlocksToMarkdown renders rich-text blocks as Markdown. Items of the same
// list are kept on consecutive lines.
func BlocksToMarkdown(blocks []richtext.Block) string {
	var sb strings.Builder
	for i, bl := range blocks {
		if i > 0 {
			if bl.Wrap != richtext.WrapNone && bl.Wrap == blocks[i-1].Wrap && bl.Kind == blocks[i-1].Kind {
				sb.WriteString("\n")
			} else {
				sb.WriteString("\n\n")
			}
		}
		switch bl.Wrap {
		case richtext.WrapBullet:
			sb.WriteString("- ")
		case richtext.WrapOrdered:
			fmt.Fprintf(&sb, "%d. ", bl.Number)
		case richtext.WrapBlockquote:
			sb.WriteString("> ")
		}
		if bl.Kind == richtext.KindHeading && bl.Level > 0 {
			sb.WriteString(strings.Repeat("#", bl.Level) + " ")
		}
		for _, r := range bl.Runs {
			sb.WriteString(inlineMarkdown(r))
		}
	}
	return sb.String()
}

// inlineMarkdown wraps a run in its marks, innermost first.
func inlineMarkdown(r richtext.Run) string {
	if r.Text == "" {
		return ""
	}
	m := r.Marks
	var s string
	if m.Has(richtext.MarkCode) {
		s = "`" + strings.ReplaceAll(r.Text, "`", "'") + "`"
	} else {
		s = escapeMarkdown(r.Text)
	}
	if m.Has(richtext.MarkHighlight) {
		s = "<mark>" + s + "</mark>"
	}
	if m.Has(richtext.MarkStrike) {
		s = "~~" + s + "~~"
	}
	if m.Has(richtext.MarkUnderline) {
		s = "<u>" + s + "</u>"
	}
	if m.Has(richtext.MarkItalic) {
		s = "_" + s + "_"
	}
	if m.Has(richtext.MarkBold) {
		s = "**" + s + "**"
	}
	if m.Has(richtext.MarkLink) && m.Href != "" {
		s = "[" + s + "](" + strings.ReplaceAll(m.Href, ")", "%29") + ")"
	}
	return s
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// escapeYAML quotes a frontmatter value when it needs it.
func escapeYAML(s string) string {
	if s == "" || strings.ContainsAny(s, ":#'\"\n[]{}&*!|>%@`") || strings.TrimSpace(s) != s {
		return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s) + `"`
	}
	return s
}
