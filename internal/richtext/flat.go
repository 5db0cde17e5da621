// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package richtext

// Wrap is the container a text block sits in.
type Wrap uint8

const (
	WrapNone Wrap = iota
	WrapBlockquote
	WrapBullet
	WrapOrdered
)

// glyph is one rune with its inline formatting.
type glyph struct {
	r rune
	m Marks
}

// block is the flat editing form of a text block. Edits run on a slice of
// blocks and the result is rebuilt into a canonical tree, which merges equal
// adjacent runs and equal adjacent wrappers.
type block struct {
	kind   Kind // KindParagraph or KindHeading
	level  int
	align  Align
	wrap   Wrap
	glyphs []glyph
}

func (b block) clone() block {
	b.glyphs = append([]glyph(nil), b.glyphs...)
	return b
}

// sameShape reports whether two blocks have identical block-level formatting.
func (b block) sameShape(o block) bool {
	return b.kind == o.kind && b.level == o.level && b.align == o.align && b.wrap == o.wrap
}

func emptyParagraph() block {
	return block{kind: KindParagraph}
}

func cloneBlocks(bs []block) []block {
	out := make([]block, len(bs))
	for i, b := range bs {
		out[i] = b.clone()
	}
	return out
}

// =============================================================================
// TREE <-> BLOCKS
// =============================================================================

// flatten walks the tree and returns its text blocks in document order.
func flatten(t *tree) []block {
	var out []block
	var walk func(id NodeID, wrap Wrap)
	walk = func(id NodeID, wrap Wrap) {
		n := t.get(id)
		switch n.kind {
		case KindParagraph, KindHeading:
			b := block{kind: n.kind, level: n.level, align: n.align, wrap: wrap}
			for _, cid := range n.children {
				c := t.get(cid)
				for _, r := range c.text {
					b.glyphs = append(b.glyphs, glyph{r: r, m: c.marks})
				}
			}
			out = append(out, b)
		case KindBlockquote:
			for _, cid := range n.children {
				walk(cid, WrapBlockquote)
			}
		case KindBulletList:
			for _, cid := range n.children {
				walk(cid, WrapBullet)
			}
		case KindOrderedList:
			for _, cid := range n.children {
				walk(cid, WrapOrdered)
			}
		case KindDoc, KindListItem:
			for _, cid := range n.children {
				walk(cid, wrap)
			}
		}
	}
	walk(rootID, WrapNone)
	if len(out) == 0 {
		out = append(out, emptyParagraph())
	}
	return out
}

// build creates a canonical tree from flat blocks.
func build(blocks []block) *tree {
	t := newTree()
	if len(blocks) == 0 {
		blocks = []block{emptyParagraph()}
	}

	container := rootID
	current := WrapNone
	for _, b := range blocks {
		if b.wrap != current {
			current = b.wrap
			switch b.wrap {
			case WrapNone:
				container = rootID
			case WrapBlockquote:
				container = t.add(rootID, node{kind: KindBlockquote})
			case WrapBullet:
				container = t.add(rootID, node{kind: KindBulletList})
			case WrapOrdered:
				container = t.add(rootID, node{kind: KindOrderedList})
			}
		}

		parent := container
		if b.wrap == WrapBullet || b.wrap == WrapOrdered {
			parent = t.add(container, node{kind: KindListItem})
		}

		level := 0
		if b.kind == KindHeading {
			level = b.level
		}
		tb := t.add(parent, node{kind: b.kind, level: level, align: b.align})
		addRuns(t, tb, b.glyphs)
	}
	return t
}

// addRuns appends text nodes to tb, one per maximal run of equal marks.
func addRuns(t *tree, tb NodeID, glyphs []glyph) {
	start := 0
	for i := 1; i <= len(glyphs); i++ {
		if i < len(glyphs) && glyphs[i].m == glyphs[start].m {
			continue
		}
		if i > start {
			runes := make([]rune, 0, i-start)
			for _, g := range glyphs[start:i] {
				runes = append(runes, g.r)
			}
			t.add(tb, node{kind: KindText, text: string(runes), marks: glyphs[start].m})
		}
		start = i
	}
}

// =============================================================================
// POSITION MAPPING
// =============================================================================

// docSize returns the largest valid position.
func docSize(blocks []block) int {
	size := 0
	for i, b := range blocks {
		if i > 0 {
			size++
		}
		size += len(b.glyphs)
	}
	return size
}

// locate maps a position to a block index and a column within that block.
// Out-of-range positions are clamped.
func locate(blocks []block, pos int) (int, int) {
	if pos < 0 {
		pos = 0
	}
	for i, b := range blocks {
		if pos <= len(b.glyphs) {
			return i, pos
		}
		pos -= len(b.glyphs) + 1
	}
	last := len(blocks) - 1
	return last, len(blocks[last].glyphs)
}

// offsetOf maps a block index and column back to a position.
func offsetOf(blocks []block, bi, col int) int {
	pos := 0
	for i := 0; i < bi && i < len(blocks); i++ {
		pos += len(blocks[i].glyphs) + 1
	}
	return pos + col
}

// span describes the part of one block covered by a range.
type span struct {
	block    int
	from, to int
}

// spans returns the per-block pieces of [from, to).
func spans(blocks []block, from, to int) []span {
	fb, fc := locate(blocks, from)
	tb, tc := locate(blocks, to)
	var out []span
	for i := fb; i <= tb; i++ {
		s := span{block: i, from: 0, to: len(blocks[i].glyphs)}
		if i == fb {
			s.from = fc
		}
		if i == tb {
			s.to = tc
		}
		out = append(out, s)
	}
	return out
}

// marksAt returns the formatting a cursor at (bi, col) inherits: the glyph
// before it, or the first glyph when the cursor is at the start of a block.
func marksAt(blocks []block, bi, col int) Marks {
	gs := blocks[bi].glyphs
	switch {
	case col > 0 && col <= len(gs):
		return gs[col-1].m
	case len(gs) > 0:
		return gs[0].m
	}
	return Marks{}
}
