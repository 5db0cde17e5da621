// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a document and its assistant transcript to a file.
//
// # Formats
//
//   - markdown: the document converted block by block, then the transcript
//   - text: plain text of the document, then the transcript
//   - html: a standalone page with embedded CSS
//   - json: the raw document and chat entries
//
// # Usage
//
//	exp, err := export.ForFormat("md", nil)
//	path, err := export.WriteFile(bundle, exp, &export.Options{OutputDir: "."})
package export
