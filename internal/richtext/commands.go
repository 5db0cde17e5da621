// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package richtext

import "strings"

// Format names a formatting state the toolbar can query and toggle.
type Format uint8

const (
	FormatBold Format = iota
	FormatItalic
	FormatUnderline
	FormatStrike
	FormatCode
	FormatHighlight
	FormatLink
	FormatHeading1
	FormatHeading2
	FormatHeading3
	FormatBulletList
	FormatOrderedList
	FormatBlockquote
	FormatAlignLeft
	FormatAlignCenter
	FormatAlignRight
	FormatAlignJustify
)

// AllFormats lists every format in toolbar order.
var AllFormats = []Format{
	FormatBold, FormatItalic, FormatUnderline, FormatStrike, FormatCode, FormatHighlight, FormatLink,
	FormatHeading1, FormatHeading2, FormatHeading3,
	FormatBulletList, FormatOrderedList, FormatBlockquote,
	FormatAlignLeft, FormatAlignCenter, FormatAlignRight, FormatAlignJustify,
}

// String returns a short toolbar label.
func (f Format) String() string {
	switch f {
	case FormatBold:
		return "bold"
	case FormatItalic:
		return "italic"
	case FormatUnderline:
		return "underline"
	case FormatStrike:
		return "strike"
	case FormatCode:
		return "code"
	case FormatHighlight:
		return "highlight"
	case FormatLink:
		return "link"
	case FormatHeading1:
		return "h1"
	case FormatHeading2:
		return "h2"
	case FormatHeading3:
		return "h3"
	case FormatBulletList:
		return "bullets"
	case FormatOrderedList:
		return "numbers"
	case FormatBlockquote:
		return "quote"
	case FormatAlignLeft:
		return "left"
	case FormatAlignCenter:
		return "center"
	case FormatAlignRight:
		return "right"
	case FormatAlignJustify:
		return "justify"
	default:
		return "unknown"
	}
}

func (f Format) mark() (Mark, bool) {
	switch f {
	case FormatBold:
		return MarkBold, true
	case FormatItalic:
		return MarkItalic, true
	case FormatUnderline:
		return MarkUnderline, true
	case FormatStrike:
		return MarkStrike, true
	case FormatCode:
		return MarkCode, true
	case FormatHighlight:
		return MarkHighlight, true
	case FormatLink:
		return MarkLink, true
	}
	return 0, false
}

// =============================================================================
// QUERIES
// =============================================================================

// IsActive reports whether f applies at the cursor, or to the whole selection
// when it is not empty.
func (b *Buffer) IsActive(f Format) bool {
	if m, ok := f.mark(); ok {
		return b.markActive(m)
	}
	switch f {
	case FormatHeading1, FormatHeading2, FormatHeading3:
		level := int(f-FormatHeading1) + 1
		return b.allBlocks(func(bl block) bool { return bl.kind == KindHeading && bl.level == level })
	case FormatBulletList:
		return b.allBlocks(func(bl block) bool { return bl.wrap == WrapBullet })
	case FormatOrderedList:
		return b.allBlocks(func(bl block) bool { return bl.wrap == WrapOrdered })
	case FormatBlockquote:
		return b.allBlocks(func(bl block) bool { return bl.wrap == WrapBlockquote })
	case FormatAlignLeft, FormatAlignCenter, FormatAlignRight, FormatAlignJustify:
		a := Align(f - FormatAlignLeft)
		return b.allBlocks(func(bl block) bool { return bl.align == a })
	}
	return false
}

// LinkHref returns the target of the link at the cursor or selection.
func (b *Buffer) LinkHref() string {
	if b.sel.Empty() {
		if bi, start, _, ok := linkRun(b.blocks, b.sel.Head); ok {
			return b.blocks[bi].glyphs[start].m.Href
		}
		return ""
	}
	if !b.markActive(MarkLink) {
		return ""
	}
	s := spans(b.blocks, b.sel.From(), b.sel.To())
	for _, sp := range s {
		if sp.to > sp.from {
			return b.blocks[sp.block].glyphs[sp.from].m.Href
		}
	}
	return ""
}

func (b *Buffer) markActive(m Mark) bool {
	if b.sel.Empty() {
		return b.cursorMarks().Has(m)
	}
	return rangeHas(b.blocks, b.sel.From(), b.sel.To(), m)
}

// cursorMarks is the formatting the next typed character will receive.
func (b *Buffer) cursorMarks() Marks {
	if b.stored != nil {
		return *b.stored
	}
	bi, col := locate(b.blocks, b.sel.Head)
	return inheritedMarks(b.blocks, bi, col)
}

// inheritedMarks returns marksAt without a link that ends at the cursor, so
// typing after a link does not extend it.
func inheritedMarks(blocks []block, bi, col int) Marks {
	m := marksAt(blocks, bi, col)
	if !m.Has(MarkLink) {
		return m
	}
	gs := blocks[bi].glyphs
	if col < len(gs) && gs[col].m.Has(MarkLink) && gs[col].m.Href == m.Href {
		return m
	}
	return m.Without(MarkLink)
}

// rangeHas reports whether every glyph in [from, to) carries m. A range with
// no glyphs has no marks.
func rangeHas(blocks []block, from, to int, m Mark) bool {
	seen := false
	for _, s := range spans(blocks, from, to) {
		for _, g := range blocks[s.block].glyphs[s.from:s.to] {
			if !g.m.Has(m) {
				return false
			}
			seen = true
		}
	}
	return seen
}

// touched returns the indices of the first and last block the selection
// reaches.
func (b *Buffer) touched() (int, int) {
	fb, _ := locate(b.blocks, b.sel.From())
	tb, _ := locate(b.blocks, b.sel.To())
	return fb, tb
}

func (b *Buffer) allBlocks(pred func(block) bool) bool {
	fb, tb := b.touched()
	for i := fb; i <= tb; i++ {
		if !pred(b.blocks[i]) {
			return false
		}
	}
	return true
}

// linkRun finds the link touching pos and returns its block and column span.
func linkRun(blocks []block, pos int) (bi, start, end int, ok bool) {
	bi, col := locate(blocks, pos)
	gs := blocks[bi].glyphs
	at := -1
	switch {
	case col > 0 && gs[col-1].m.Has(MarkLink):
		at = col - 1
	case col < len(gs) && gs[col].m.Has(MarkLink):
		at = col
	default:
		return 0, 0, 0, false
	}
	href := gs[at].m.Href
	start, end = at, at+1
	for start > 0 && gs[start-1].m.Has(MarkLink) && gs[start-1].m.Href == href {
		start--
	}
	for end < len(gs) && gs[end].m.Has(MarkLink) && gs[end].m.Href == href {
		end++
	}
	return bi, start, end, true
}

// =============================================================================
// MARK COMMANDS
// =============================================================================

// ToggleBold toggles bold on the selection.
func (b *Buffer) ToggleBold() bool { return b.toggleMark(FormatBold) }

// ToggleItalic toggles italic on the selection.
func (b *Buffer) ToggleItalic() bool { return b.toggleMark(FormatItalic) }

// ToggleUnderline toggles underline on the selection.
func (b *Buffer) ToggleUnderline() bool { return b.toggleMark(FormatUnderline) }

// ToggleStrike toggles strikethrough on the selection.
func (b *Buffer) ToggleStrike() bool { return b.toggleMark(FormatStrike) }

// ToggleCode toggles inline code on the selection.
func (b *Buffer) ToggleCode() bool { return b.toggleMark(FormatCode) }

// ToggleHighlight toggles highlighting on the selection.
func (b *Buffer) ToggleHighlight() bool { return b.toggleMark(FormatHighlight) }

// toggleMark removes the mark when the whole selection has it and adds it
// otherwise. With an empty selection the change is stored for the next typed
// text.
func (b *Buffer) toggleMark(f Format) bool {
	m, _ := f.mark()
	if b.sel.Empty() {
		cur := b.cursorMarks()
		if cur.Has(m) {
			cur = cur.Without(m)
		} else {
			cur = cur.With(m, "")
		}
		b.stored = &cur
		return true
	}
	return b.remembered(f, func() bool {
		from, to := b.sel.From(), b.sel.To()
		remove := rangeHas(b.blocks, from, to, m)
		return b.apply(func(bs []block) ([]block, Range, bool) {
			n := 0
			for _, s := range spans(bs, from, to) {
				gs := bs[s.block].glyphs
				for i := s.from; i < s.to; i++ {
					if remove {
						gs[i].m = gs[i].m.Without(m)
					} else {
						gs[i].m = gs[i].m.With(m, "")
					}
					n++
				}
			}
			return bs, b.sel, n > 0
		})
	})
}

// toggleMemo remembers the blocks a toggle replaced. Repeating the same toggle
// on the same selection, with no edit in between, puts them back, so mixed
// formatting survives a double toggle.
type toggleMemo struct {
	format Format
	sel    Range
	html   string
	before []block
	prior  Range
}

// remembered runs a toggle for f, or undoes the previous one when it was the
// same toggle and the buffer has not changed since.
func (b *Buffer) remembered(f Format, run func() bool) bool {
	if m := b.lastToggle; m != nil && m.format == f && m.sel == b.sel && m.html == b.html {
		b.lastToggle = nil
		return b.apply(func([]block) ([]block, Range, bool) {
			return cloneBlocks(m.before), m.prior, true
		})
	}
	before, prior, html := b.working(), b.sel, b.html
	b.lastToggle = nil
	changed := run()
	if changed && b.html != html {
		b.lastToggle = &toggleMemo{format: f, sel: b.sel, html: b.html, before: before, prior: prior}
	}
	return changed
}

// SetLink links the selection to href. With an empty selection it retargets
// the link under the cursor. An empty href removes the link.
func (b *Buffer) SetLink(href string) bool {
	href = strings.TrimSpace(href)
	if href == "" {
		return b.UnsetLink()
	}
	return b.updateLink(func(ms Marks) Marks {
		return ms.Without(MarkLink).With(MarkLink, href)
	})
}

// UnsetLink removes links from the selection, or the whole link under an
// empty cursor.
func (b *Buffer) UnsetLink() bool {
	return b.updateLink(func(ms Marks) Marks {
		return ms.Without(MarkLink)
	})
}

func (b *Buffer) updateLink(fn func(Marks) Marks) bool {
	if b.sel.Empty() {
		bi, start, end, ok := linkRun(b.blocks, b.sel.Head)
		if !ok {
			return false
		}
		return b.apply(func(bs []block) ([]block, Range, bool) {
			gs := bs[bi].glyphs
			for i := start; i < end; i++ {
				gs[i].m = fn(gs[i].m)
			}
			return bs, b.sel, true
		})
	}

	from, to := b.sel.From(), b.sel.To()
	return b.apply(func(bs []block) ([]block, Range, bool) {
		n := 0
		for _, s := range spans(bs, from, to) {
			gs := bs[s.block].glyphs
			for i := s.from; i < s.to; i++ {
				gs[i].m = fn(gs[i].m)
				n++
			}
		}
		return bs, b.sel, n > 0
	})
}

// =============================================================================
// BLOCK COMMANDS
// =============================================================================

// ToggleHeading turns the touched blocks into headings of the given level,
// or back into paragraphs when they already are. Levels outside 1..3 are
// rejected.
func (b *Buffer) ToggleHeading(level int) bool {
	if level < 1 || level > 3 {
		return false
	}
	f := FormatHeading1 + Format(level-1)
	return b.remembered(f, func() bool {
		active := b.IsActive(f)
		return b.updateBlocks(func(bl *block) {
			if active {
				bl.kind, bl.level = KindParagraph, 0
			} else {
				bl.kind, bl.level = KindHeading, level
			}
		})
	})
}

// ToggleBulletList wraps the touched blocks in a bullet list or lifts them out.
func (b *Buffer) ToggleBulletList() bool { return b.toggleWrap(WrapBullet, FormatBulletList) }

// ToggleOrderedList wraps the touched blocks in an ordered list or lifts them out.
func (b *Buffer) ToggleOrderedList() bool { return b.toggleWrap(WrapOrdered, FormatOrderedList) }

// ToggleBlockquote wraps the touched blocks in a blockquote or lifts them out.
func (b *Buffer) ToggleBlockquote() bool { return b.toggleWrap(WrapBlockquote, FormatBlockquote) }

func (b *Buffer) toggleWrap(w Wrap, f Format) bool {
	return b.remembered(f, func() bool {
		active := b.IsActive(f)
		return b.updateBlocks(func(bl *block) {
			if active {
				bl.wrap = WrapNone
			} else {
				bl.wrap = w
			}
		})
	})
}

// SetTextAlign aligns the touched blocks.
func (b *Buffer) SetTextAlign(a Align) bool {
	return b.updateBlocks(func(bl *block) { bl.align = a })
}

func (b *Buffer) updateBlocks(fn func(*block)) bool {
	fb, tb := b.touched()
	return b.apply(func(bs []block) ([]block, Range, bool) {
		for i := fb; i <= tb; i++ {
			fn(&bs[i])
		}
		return bs, b.sel, true
	})
}

// Toggle dispatches f to its command. Alignment formats set the alignment.
func (b *Buffer) Toggle(f Format) bool {
	switch f {
	case FormatBold:
		return b.ToggleBold()
	case FormatItalic:
		return b.ToggleItalic()
	case FormatUnderline:
		return b.ToggleUnderline()
	case FormatStrike:
		return b.ToggleStrike()
	case FormatCode:
		return b.ToggleCode()
	case FormatHighlight:
		return b.ToggleHighlight()
	case FormatLink:
		return b.UnsetLink()
	case FormatHeading1, FormatHeading2, FormatHeading3:
		return b.ToggleHeading(int(f-FormatHeading1) + 1)
	case FormatBulletList:
		return b.ToggleBulletList()
	case FormatOrderedList:
		return b.ToggleOrderedList()
	case FormatBlockquote:
		return b.ToggleBlockquote()
	case FormatAlignLeft, FormatAlignCenter, FormatAlignRight, FormatAlignJustify:
		return b.SetTextAlign(Align(f - FormatAlignLeft))
	}
	return false
}
