// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports a standalone page with embedded CSS. The document is
// re-serialized from the rich-text buffer so only known tags reach the page;
// answers are rendered from Markdown with raw HTML escaped.
type HTMLExporter struct {
	options *Options
	md      goldmark.Markdown
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{
		options: opts,
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Export converts a bundle to HTML.
func (e *HTMLExporter) Export(b *Bundle) ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	buf, err := b.buffer()
	if err != nil {
		return nil, err
	}
	title := html.EscapeString(b.Title())
	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("  <meta charset=\"UTF-8\">\n")
	sb.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "  <title>%s</title>\n", title)
	sb.WriteString("  <meta name=\"generator\" content=\"lexpad\">\n")
	sb.WriteString(pageCSS)
	sb.WriteString("</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s-theme\">\n<div class=\"container\">\n", theme)

	fmt.Fprintf(&sb, "<header class=\"header\">\n  <h1>%s</h1>\n", title)
	if e.options.IncludeMetadata {
		sb.WriteString("  <div class=\"metadata\">\n")
		fmt.Fprintf(&sb, "    <span><strong>Document:</strong> %s</span>\n", html.EscapeString(b.Document.ID))
		if ts := b.Document.Updated(); !ts.IsZero() {
			fmt.Fprintf(&sb, "    <span><strong>Updated:</strong> %s</span>\n", formatTimestamp(ts))
		}
		sb.WriteString("  </div>\n")
	}
	sb.WriteString("</header>\n")

	sb.WriteString("<main class=\"document\">\n")
	sb.WriteString(buf.Content())
	sb.WriteString("\n</main>\n")

	if e.options.IncludeChat && len(b.Chat) > 0 {
		sb.WriteString("<section class=\"assistant\">\n  <h2>Assistant</h2>\n")
		for _, entry := range b.Chat {
			answer, err := e.renderMarkdown(entry.Answer)
			if err != nil {
				return nil, err
			}
			sb.WriteString("  <div class=\"entry\">\n")
			fmt.Fprintf(&sb, "    <div class=\"question\"><span class=\"kind\">%s</span> %s</div>\n",
				kindLabel(entry.Kind), html.EscapeString(entry.Question))
			fmt.Fprintf(&sb, "    <div class=\"answer\">%s</div>\n", answer)
			sb.WriteString("  </div>\n")
		}
		sb.WriteString("</section>\n")
	}

	fmt.Fprintf(&sb, "<footer class=\"footer\">Exported from lexpad on %s</footer>\n",
		b.exportedAt().Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("</div>\n</body>\n</html>\n")
	return []byte(sb.String()), nil
}

func (e *HTMLExporter) renderMarkdown(src string) (string, error) {
	var out bytes.Buffer
	if err := e.md.Convert([]byte(src), &out); err != nil {
		return "", fmt.Errorf("render answer: %w", err)
	}
	return out.String(), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}


const pageCSS = `  <style>
    * { box-sizing: border-box; }
    body { margin: 0; font-family: Georgia, "Times New Roman", serif; line-height: 1.6; }
    .dark-theme { --bg: #1e1e2e; --panel: #313244; --text: #cdd6f4; --muted: #6c7086; --accent: #a78bfa; --mark: #713f12; }
    .light-theme { --bg: #ffffff; --panel: #f5f5f5; --text: #1f2937; --muted: #6b7280; --accent: #7c3aed; --mark: #fef08a; }
    body { background: var(--bg); color: var(--text); }
    .container { max-width: 820px; margin: 0 auto; padding: 32px 24px; }
    .header h1 { margin-bottom: 4px; }
    .metadata { color: var(--muted); font-size: 0.9em; display: flex; gap: 16px; flex-wrap: wrap; }
    .document { margin: 32px 0; }
    .document mark { background: var(--mark); color: inherit; }
    .document blockquote { border-left: 3px solid var(--accent); margin-left: 0; padding-left: 16px; }
    .document code, .answer code { font-family: "SF Mono", Menlo, monospace; background: var(--panel); padding: 0 4px; }
    .assistant { border-top: 1px solid var(--muted); padding-top: 16px; }
    .entry { background: var(--panel); border-radius: 6px; padding: 12px 16px; margin: 12px 0; }
    .question { font-weight: bold; }
    .kind { color: var(--accent); text-transform: uppercase; font-size: 0.75em; margin-right: 6px; }
    .footer { color: var(--muted); font-size: 0.8em; margin-top: 32px; text-align: center; }
    @media print { .dark-theme { --bg: #fff; --panel: #f5f5f5; --text: #000; } }
  </style>
`
