// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/lexpad-tui/internal/api"
)

// JSONExporter exports the raw document and chat entries. It ignores the
// filtering options so the output is a faithful copy.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonEntry struct {
	Kind      string       `json:"kind"`
	Question  string       `json:"question"`
	Answer    string       `json:"answer"`
	Sources   []api.Source `json:"sources,omitempty"`
	Timestamp *time.Time   `json:"timestamp,omitempty"`
}

type jsonBundle struct {
	Document   api.Document `json:"document"`
	Chat       []jsonEntry  `json:"chat"`
	ExportedAt time.Time    `json:"exported_at"`
}

// Export converts a bundle to indented JSON.
func (e *JSONExporter) Export(b *Bundle) ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	out := jsonBundle{Document: b.Document, Chat: make([]jsonEntry, 0, len(b.Chat)), ExportedAt: b.exportedAt().UTC()}
	for _, entry := range b.Chat {
		je := jsonEntry{Kind: kindLabel(entry.Kind), Question: entry.Question, Answer: entry.Answer, Sources: entry.Sources}
		if !entry.Timestamp.IsZero() {
			ts := entry.Timestamp.UTC()
			je.Timestamp = &ts
		}
		out.Chat = append(out.Chat, je)
	}
	return json.MarshalIndent(out, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
