// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package richtext

import (
	"time"
	"unicode/utf8"
)

// apply runs edit on a copy of the blocks and commits the result to history.
func (b *Buffer) apply(edit func([]block) ([]block, Range, bool)) bool {
	b.lastTyped = time.Time{}
	blocks, sel, ok := edit(b.working())
	if !ok {
		return false
	}
	return b.commit(blocks, sel, true)
}

// =============================================================================
// DELETION
// =============================================================================

// DeleteSelection removes the selected range and collapses the cursor to its
// start.
func (b *Buffer) DeleteSelection() bool {
	if b.sel.Empty() {
		return false
	}
	from, to := b.sel.From(), b.sel.To()
	return b.apply(func(bs []block) ([]block, Range, bool) {
		return deleteRange(bs, from, to), Cursor(from), true
	})
}

// deleteRange joins the head of the first touched block to the tail of the
// last. The first block keeps its shape.
func deleteRange(bs []block, from, to int) []block {
	fb, fc := locate(bs, from)
	tb, tc := locate(bs, to)
	head := bs[fb].glyphs[:fc]
	tail := bs[tb].glyphs[tc:]
	joined := make([]glyph, 0, len(head)+len(tail))
	joined = append(joined, head...)
	joined = append(joined, tail...)
	bs[fb].glyphs = joined
	return append(bs[:fb+1], bs[tb+1:]...)
}

// DeleteBackward handles Backspace. At the start of a list item, quote or
// heading it first turns the block back into a plain paragraph.
func (b *Buffer) DeleteBackward() bool {
	if !b.sel.Empty() {
		return b.DeleteSelection()
	}
	pos := b.sel.Head
	bi, col := locate(b.blocks, pos)
	cur := b.blocks[bi]
	switch {
	case col > 0:
		return b.apply(func(bs []block) ([]block, Range, bool) {
			return deleteRange(bs, pos-1, pos), Cursor(pos - 1), true
		})
	case cur.wrap != WrapNone || cur.kind != KindParagraph:
		return b.apply(func(bs []block) ([]block, Range, bool) {
			bs[bi].wrap = WrapNone
			bs[bi].kind, bs[bi].level = KindParagraph, 0
			return bs, b.sel, true
		})
	case bi > 0:
		return b.apply(func(bs []block) ([]block, Range, bool) {
			return deleteRange(bs, pos-1, pos), Cursor(pos - 1), true
		})
	}
	return false
}

// DeleteForward handles Delete, joining the next block at the end of a block.
func (b *Buffer) DeleteForward() bool {
	if !b.sel.Empty() {
		return b.DeleteSelection()
	}
	pos := b.sel.Head
	if pos >= b.Size() {
		return false
	}
	return b.apply(func(bs []block) ([]block, Range, bool) {
		return deleteRange(bs, pos, pos+1), Cursor(pos), true
	})
}

// =============================================================================
// INSERTION
// =============================================================================

// InsertText types text at the cursor, replacing any selection. Newlines
// split blocks. Consecutive single characters typed within the typing group
// window form one undo step.
func (b *Buffer) InsertText(text string) bool {
	if text == "" {
		return false
	}
	grouped := b.typingGroup > 0 &&
		b.sel.Empty() &&
		utf8.RuneCountInString(text) == 1 && text != "\n" &&
		!b.lastTyped.IsZero() &&
		b.now().Sub(b.lastTyped) < b.typingGroup

	marks := b.cursorMarks()
	from, to := b.sel.From(), b.sel.To()
	blocks := b.working()
	if to > from {
		blocks = deleteRange(blocks, from, to)
	}
	blocks, end := splice(blocks, from, parsePlain(text, marks), true)

	changed := b.commit(blocks, Cursor(end), !grouped)
	if utf8.RuneCountInString(text) == 1 && text != "\n" {
		b.lastTyped = b.now()
	} else {
		b.lastTyped = time.Time{}
	}
	return changed
}

// InsertContent inserts an HTML fragment or plain text at the cursor,
// replacing any selection. Plain text takes the formatting at the cursor.
func (b *Buffer) InsertContent(content string) (bool, error) {
	if content == "" {
		return false, nil
	}
	return b.ReplaceSelection(content)
}

// ReplaceSelection deletes the selected range and inserts content in its
// place as one undo step. Empty content only deletes. The cursor ends after
// the inserted content.
func (b *Buffer) ReplaceSelection(content string) (bool, error) {
	var frag []block
	inherit := !looksLikeHTML(content)
	if content != "" {
		if inherit {
			frag = parsePlain(content, b.cursorMarks())
		} else {
			var err error
			if frag, err = parseHTML(content); err != nil {
				return false, err
			}
		}
	}

	from, to := b.sel.From(), b.sel.To()
	if to == from && len(frag) == 0 {
		return false, nil
	}
	return b.apply(func(bs []block) ([]block, Range, bool) {
		if to > from {
			bs = deleteRange(bs, from, to)
		}
		if len(frag) == 0 {
			return bs, Cursor(from), true
		}
		bs, end := splice(bs, from, frag, inherit)
		return bs, Cursor(end), true
	}), nil
}

// SplitBlock handles Enter. An empty list item or quote line is lifted out of
// its wrapper instead of creating another empty one; splitting at the end of
// a heading starts a paragraph.
func (b *Buffer) SplitBlock() bool {
	from, to := b.sel.From(), b.sel.To()
	return b.apply(func(bs []block) ([]block, Range, bool) {
		if to > from {
			bs = deleteRange(bs, from, to)
		}
		bi, col := locate(bs, from)
		cur := bs[bi]
		if len(cur.glyphs) == 0 && cur.wrap != WrapNone {
			bs[bi].wrap = WrapNone
			return bs, Cursor(from), true
		}

		next := block{kind: cur.kind, level: cur.level, align: cur.align, wrap: cur.wrap}
		if cur.kind == KindHeading && col == len(cur.glyphs) {
			next.kind, next.level = KindParagraph, 0
		}
		next.glyphs = append([]glyph(nil), cur.glyphs[col:]...)
		bs[bi].glyphs = cur.glyphs[:col]

		out := make([]block, 0, len(bs)+1)
		out = append(out, bs[:bi+1]...)
		out = append(out, next)
		out = append(out, bs[bi+1:]...)
		return out, Cursor(from + 1), true
	})
}

// splice inserts frag at pos and returns the new blocks and the position just
// after the inserted content. The first fragment block merges into the block
// at pos. When inherit is set the remaining fragment blocks take that block's
// shape; otherwise they keep their own.
func splice(bs []block, pos int, frag []block, inherit bool) ([]block, int) {
	bi, col := locate(bs, pos)
	cur := bs[bi]
	head := cur.glyphs[:col]
	tail := append([]glyph(nil), cur.glyphs[col:]...)

	if len(frag) == 1 {
		gs := make([]glyph, 0, len(cur.glyphs)+len(frag[0].glyphs))
		gs = append(gs, head...)
		gs = append(gs, frag[0].glyphs...)
		gs = append(gs, tail...)
		bs[bi].glyphs = gs
		return bs, pos + len(frag[0].glyphs)
	}

	first := cur
	first.glyphs = append(append([]glyph(nil), head...), frag[0].glyphs...)

	middle := make([]block, 0, len(frag)-1)
	for _, f := range frag[1:] {
		nb := f.clone()
		if inherit {
			nb.kind, nb.level, nb.align, nb.wrap = cur.kind, cur.level, cur.align, cur.wrap
		}
		middle = append(middle, nb)
	}
	last := &middle[len(middle)-1]
	endCol := len(last.glyphs)
	last.glyphs = append(last.glyphs, tail...)

	out := make([]block, 0, len(bs)+len(frag))
	out = append(out, bs[:bi]...)
	out = append(out, first)
	out = append(out, middle...)
	out = append(out, bs[bi+1:]...)
	return out, offsetOf(out, bi+len(frag)-1, endCol)
}
