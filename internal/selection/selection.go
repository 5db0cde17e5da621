// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package selection turns buffer selection changes into actionable events.
//
// A Bridge listens to a richtext.Buffer. When the user selects a non-blank
// range it resolves the selected text and the screen cell just below the start
// of the range, and hands both to its handler. Blank selections produce
// nothing; dismissing a stale popup is the handler's job.
package selection

import (
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/lexpad-tui/internal/richtext"
)

// Point is a screen cell.
type Point struct {
	X int
	Y int
}

// Locator maps buffer positions to screen cells.
type Locator interface {
	// CoordsAtPos returns the cell the character at pos is drawn in.
	CoordsAtPos(pos int) Point
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(pos int) Point

// CoordsAtPos calls f(pos).
func (f LocatorFunc) CoordsAtPos(pos int) Point {
	return f(pos)
}

// Event is a captured selection.
type Event struct {
	Range  richtext.Range
	Text   string
	Anchor Point
}

// Handler receives selection events.
type Handler func(Event)

// Bridge watches a buffer's selection.
type Bridge struct {
	buf     *richtext.Buffer
	loc     Locator
	handler Handler
	logger  *zap.Logger
}

// NewBridge creates a bridge and subscribes it to buf.
func NewBridge(buf *richtext.Buffer, loc Locator, handler Handler, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	br := &Bridge{buf: buf, loc: loc, handler: handler, logger: logger}
	buf.OnSelectionUpdate(br.onSelection)
	return br
}

func (br *Bridge) onSelection(r richtext.Range) {
	ev, ok := br.Resolve(r)
	if !ok {
		return
	}
	br.logger.Debug("selection captured",
		zap.Int("from", r.From()),
		zap.Int("to", r.To()),
		zap.Int("chars", len([]rune(ev.Text))))
	if br.handler != nil {
		br.handler(ev)
	}
}

// Resolve builds the event for r. It reports false for an empty range or a
// range whose text is only whitespace.
func (br *Bridge) Resolve(r richtext.Range) (Event, bool) {
	if r.Empty() {
		return Event{}, false
	}
	text := br.buf.TextBetween(r.From(), r.To())
	if strings.TrimSpace(text) == "" {
		return Event{}, false
	}
	anchor := Point{}
	if br.loc != nil {
		anchor = br.loc.CoordsAtPos(r.From())
		anchor.Y++
	}
	return Event{Range: r, Text: text, Anchor: anchor}, true
}
