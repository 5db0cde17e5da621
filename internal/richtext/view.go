// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package richtext

// Run is a span of text with uniform formatting.
type Run struct {
	Text  string
	Marks Marks
}

// Block is the render model of one text block.
type Block struct {
	Kind  Kind
	Level int
	Align Align
	Wrap  Wrap

	// Number is the 1-based item number inside an ordered list, 0 otherwise.
	Number int

	// Start is the position of the block's first character.
	Start int
	Len   int
	Runs  []Run
}

// Blocks returns the document as a list of renderable blocks.
func (b *Buffer) Blocks() []Block {
	out := make([]Block, 0, len(b.blocks))
	pos, num := 0, 0
	for i, bl := range b.blocks {
		if bl.wrap == WrapOrdered {
			if i > 0 && b.blocks[i-1].wrap == WrapOrdered {
				num++
			} else {
				num = 1
			}
		} else {
			num = 0
		}

		v := Block{
			Kind:   bl.kind,
			Level:  bl.level,
			Align:  bl.align,
			Wrap:   bl.wrap,
			Number: num,
			Start:  pos,
			Len:    len(bl.glyphs),
		}
		start := 0
		for j := 1; j <= len(bl.glyphs); j++ {
			if j < len(bl.glyphs) && bl.glyphs[j].m == bl.glyphs[start].m {
				continue
			}
			runes := make([]rune, 0, j-start)
			for _, g := range bl.glyphs[start:j] {
				runes = append(runes, g.r)
			}
			v.Runs = append(v.Runs, Run{Text: string(runes), Marks: bl.glyphs[start].m})
			start = j
		}
		out = append(out, v)
		pos += len(bl.glyphs) + 1
	}
	return out
}
