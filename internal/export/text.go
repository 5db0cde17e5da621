// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/k3a/html2text"
)

// TextExporter exports plain text.
type TextExporter struct {
	options *Options
}

// NewTextExporter creates a new plain text exporter.
func NewTextExporter(opts *Options) *TextExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &TextExporter{options: opts}
}

// Export converts a bundle to plain text. Answers keep their Markdown.
func (e *TextExporter) Export(b *Bundle) ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	buf, err := b.buffer()
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	title := b.Title()
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", len([]rune(title))) + "\n\n")
	if e.options.IncludeMetadata {
		fmt.Fprintf(&sb, "Document: %s\n", b.Document.ID)
		fmt.Fprintf(&sb, "Exported: %s\n\n", formatTimestamp(b.exportedAt()))
	}
	sb.WriteString(strings.TrimSpace(html2text.HTML2Text(buf.Content())))
	sb.WriteString("\n")

	if e.options.IncludeChat && len(b.Chat) > 0 {
		sb.WriteString("\nAssistant\n---------\n")
		for _, entry := range b.Chat {
			fmt.Fprintf(&sb, "\n%s: %s\n\n%s\n", kindLabel(entry.Kind), entry.Question, strings.TrimSpace(entry.Answer))
		}
	}
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for plain text.
func (e *TextExporter) FileExtension() string {
	return ".txt"
}

// MimeType returns the MIME type for plain text.
func (e *TextExporter) MimeType() string {
	return "text/plain"
}
