// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/assistant"
	"github.com/jeranaias/lexpad-tui/internal/richtext"
	"github.com/jeranaias/lexpad-tui/internal/util"
)

// ErrNoDocument is returned when a bundle has no document id.
var ErrNoDocument = errors.New("bundle has no document")

// =============================================================================
// BUNDLE
// =============================================================================

// Bundle is everything one export covers.
type Bundle struct {
	Document   api.Document
	Chat       []assistant.Entry
	ExportedAt time.Time
}

// Title returns the document title, the file name, or "Untitled".
func (b *Bundle) Title() string {
	if t := strings.TrimSpace(b.Document.Title); t != "" {
		return t
	}
	if b.Document.FileName != "" {
		return b.Document.FileName
	}
	return "Untitled"
}

// buffer parses the document content into a rich-text buffer.
func (b *Bundle) buffer() (*richtext.Buffer, error) {
	buf := richtext.New()
	if err := buf.SetContent(b.Document.Content, false); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return buf, nil
}

func (b *Bundle) validate() error {
	if b == nil || b.Document.ID == "" {
		return ErrNoDocument
	}
	return nil
}

func (b *Bundle) exportedAt() time.Time {
	if b.ExportedAt.IsZero() {
		return time.Now()
	}
	return b.ExportedAt
}

// =============================================================================
// EXPORTER
// =============================================================================

// Exporter converts a bundle to one file format.
type Exporter interface {
	Export(b *Bundle) ([]byte, error)
	FileExtension() string
	MimeType() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written. Default: current directory.
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// IncludeMetadata adds the title block (ids, dates, question count).
	IncludeMetadata bool

	// IncludeChat appends the assistant transcript.
	IncludeChat bool

	// Theme for HTML export ("light" or "dark").
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       ".",
		IncludeMetadata: true,
		IncludeChat:     true,
		Theme:           "dark",
	}
}

// Formats lists the accepted format names.
var Formats = []string{"markdown", "md", "text", "txt", "html", "json"}

// ForFormat returns the exporter for a format name.
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case "markdown", "md":
		return NewMarkdownExporter(opts), nil
	case "text", "txt":
		return NewTextExporter(opts), nil
	case "html", "htm":
		return NewHTMLExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	}
	return nil, fmt.Errorf("unsupported export format: %s", format)
}

// WriteFile exports b and writes it to OutputDir. It returns the file path.
func WriteFile(b *Bundle, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	content, err := exporter.Export(b)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	filename := fmt.Sprintf("%s_%s%s",
		sanitizeFilename(b.Title()),
		b.exportedAt().Format("20060102_150405"),
		exporter.FileExtension(),
	)
	path := filepath.Join(dir, filename)
	if err := util.AtomicWriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		// The file exists either way.
		_ = openFile(path)
	}
	return path, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in file names.
func sanitizeFilename(s string) string {
	const maxLen = 50
	if r := []rune(s); len(r) > maxLen {
		s = string(r[:maxLen])
	}
	var out []rune
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			out = append(out, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			out = append(out, '_')
		case r < 32 || r == 127:
			out = append(out, '-')
		default:
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return "document"
	}
	return string(out)
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// kindLabel names the action that produced a chat entry.
func kindLabel(k assistant.Kind) string {
	switch k {
	case assistant.KindRedFlags:
		return "Red flags"
	case assistant.KindSummary:
		return "Summary"
	}
	return "Question"
}
