// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package richtext implements the in-memory formatted document edited by lexpad.
//
// A Buffer owns a document tree stored as an arena of nodes addressed by NodeID.
// The tree is serialized to and parsed from the same HTML vocabulary the web
// editor produces (p, h1-h6, ul/ol/li, blockquote, strong, em, u, s, code, mark, a),
// so documents round-trip between the terminal client and the browser.
//
// # Positions
//
// Positions are rune offsets into the plain-text projection of the document.
// Each block boundary occupies one position, so a document with the blocks
// "ab" and "cd" has size 5 and position 3 is the start of "cd".
//
// # Events
//
// Every content mutation notifies OnUpdate listeners with the new serialization.
// Every selection change notifies OnSelectionUpdate listeners. Listeners run
// synchronously on the goroutine that issued the edit.
//
// # Usage
//
//	buf := richtext.New()
//	_ = buf.SetContent("<p>The Vendor shall indemnify</p>", false)
//	buf.SetSelection(4, 10)
//	buf.ToggleBold()
//	html := buf.Content() // <p>The <strong>Vendor</strong> shall indemnify</p>
package richtext
