// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docview lays a richtext document out as terminal lines and maps
// between buffer positions and cells in both directions.
package docview

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lexpad-tui/internal/richtext"
	"github.com/jeranaias/lexpad-tui/internal/selection"
	"github.com/jeranaias/lexpad-tui/internal/ui/styles"
	"github.com/jeranaias/lexpad-tui/internal/util"
)

// cell is one drawn rune.
type cell struct {
	r     rune
	pos   int
	x     int
	w     int
	marks richtext.Marks
}

// Line is one visual line of the document.
type Line struct {
	// Block is the index of the block the line belongs to, -1 for spacers.
	Block  int
	Prefix string
	// Start is the position of the first cell, End the position just past
	// the last one. Spacer lines have Start == End.
	Start int
	End   int
	// Indent is the column the first cell is drawn in.
	Indent int

	kind  richtext.Kind
	level int
	wrap  richtext.Wrap
	cells []cell
}

// Layout is a laid-out document.
type Layout struct {
	Width int
	Lines []Line
	size  int
}

// Build lays out blocks in width cells.
func Build(blocks []richtext.Block, width int) *Layout {
	width = max(width, 8)
	l := &Layout{Width: width}
	for bi, b := range blocks {
		prefix := blockPrefix(b)
		avail := max(1, width-util.StringWidth(prefix))
		glyphs := flatten(b)
		for i, row := range wrapCells(glyphs, avail) {
			p := prefix
			if i > 0 {
				p = strings.Repeat(" ", util.StringWidth(prefix))
				if b.Wrap == richtext.WrapBlockquote {
					p = prefix
				}
			}
			line := Line{
				Block:  bi,
				Prefix: p,
				kind:   b.Kind,
				level:  b.Level,
				wrap:   b.Wrap,
				cells:  row,
			}
			if len(row) == 0 {
				line.Start = b.Start
				if i > 0 {
					line.Start = b.Start + b.Len
				}
				line.End = line.Start
			} else {
				line.Start = row[0].pos
				line.End = row[len(row)-1].pos + 1
			}
			lineW := lineWidth(row)
			line.Indent = util.StringWidth(p) + alignPad(b.Align, avail, lineW)
			l.Lines = append(l.Lines, line)
		}
		l.size = b.Start + b.Len

		if bi+1 < len(blocks) && needsSpacer(b, blocks[bi+1]) {
			end := b.Start + b.Len
			l.Lines = append(l.Lines, Line{Block: -1, Start: end, End: end})
		}
	}
	if len(l.Lines) == 0 {
		l.Lines = []Line{{Block: 0}}
	}
	return l
}

func needsSpacer(cur, next richtext.Block) bool {
	if cur.Wrap != richtext.WrapNone && cur.Wrap == next.Wrap {
		return false
	}
	return true
}

func blockPrefix(b richtext.Block) string {
	switch b.Wrap {
	case richtext.WrapBullet:
		return "• "
	case richtext.WrapOrdered:
		return strconv.Itoa(max(1, b.Number)) + ". "
	case richtext.WrapBlockquote:
		return "│ "
	}
	if b.Kind == richtext.KindHeading {
		return strings.Repeat("#", max(1, b.Level)) + " "
	}
	return ""
}

func alignPad(a richtext.Align, avail, used int) int {
	free := max(0, avail-used)
	switch a {
	case richtext.AlignCenter:
		return free / 2
	case richtext.AlignRight:
		return free
	default:
		return 0
	}
}

func flatten(b richtext.Block) []cell {
	out := make([]cell, 0, b.Len)
	pos := b.Start
	for _, run := range b.Runs {
		for _, r := range run.Text {
			out = append(out, cell{r: r, pos: pos, w: max(1, util.RuneWidth(r)), marks: run.Marks})
			pos++
		}
	}
	return out
}

func lineWidth(row []cell) int {
	w := 0
	for _, c := range row {
		w += c.w
	}
	return w
}

// wrapCells breaks glyphs into rows no wider than width, preferring to break
// after a space. Every block yields at least one row.
func wrapCells(glyphs []cell, width int) [][]cell {
	if len(glyphs) == 0 {
		return [][]cell{nil}
	}
	var rows [][]cell
	start := 0
	for start < len(glyphs) {
		w, end, lastSpace := 0, start, -1
		for end < len(glyphs) && w+glyphs[end].w <= width {
			if glyphs[end].r == ' ' {
				lastSpace = end
			}
			w += glyphs[end].w
			end++
		}
		if end == start {
			end = start + 1
		}
		if end < len(glyphs) && lastSpace > start {
			end = lastSpace + 1
		}
		row := make([]cell, end-start)
		copy(row, glyphs[start:end])
		x := 0
		for i := range row {
			row[i].x = x
			x += row[i].w
		}
		rows = append(rows, row)
		start = end
	}
	return rows
}

// =============================================================================
// POSITION MAPPING
// =============================================================================

// Coords returns the line and column at which the character at pos is drawn.
// The end of a block maps just past its last character.
func (l *Layout) Coords(pos int) selection.Point {
	lastIdx := 0
	for i, line := range l.Lines {
		if line.Block < 0 {
			continue
		}
		lastIdx = i
		if pos < line.Start {
			continue
		}
		for _, c := range line.cells {
			if c.pos == pos {
				return selection.Point{X: line.Indent + c.x, Y: i}
			}
		}
		if pos == line.End && !l.continues(i) {
			return selection.Point{X: line.Indent + lineWidth(line.cells), Y: i}
		}
	}
	last := l.Lines[lastIdx]
	return selection.Point{X: last.Indent + lineWidth(last.cells), Y: lastIdx}
}

// continues reports whether line i is followed by another line of the same
// block, in which case its End belongs to the next line.
func (l *Layout) continues(i int) bool {
	return i+1 < len(l.Lines) && l.Lines[i+1].Block == l.Lines[i].Block && l.Lines[i].Block >= 0
}

// PosAt returns the buffer position closest to cell (x, y).
func (l *Layout) PosAt(x, y int) int {
	if y < 0 {
		return 0
	}
	if y >= len(l.Lines) {
		return l.size
	}
	line := l.Lines[y]
	if line.Block < 0 {
		return line.Start
	}
	for _, c := range line.cells {
		if x < line.Indent+c.x+c.w {
			if x < line.Indent+c.x+(c.w+1)/2 || c.w == 1 {
				return c.pos
			}
			return c.pos + 1
		}
	}
	if l.continues(y) && len(line.cells) > 0 {
		return line.cells[len(line.cells)-1].pos
	}
	return line.End
}

// LineOf returns the line index holding pos.
func (l *Layout) LineOf(pos int) int {
	return l.Coords(pos).Y
}

// Vertical moves pos by dy lines, keeping the column.
func (l *Layout) Vertical(pos, dy int) int {
	p := l.Coords(pos)
	y := p.Y + dy
	for y >= 0 && y < len(l.Lines) && l.Lines[y].Block < 0 {
		if dy < 0 {
			y--
		} else {
			y++
		}
	}
	switch {
	case y < 0:
		return 0
	case y >= len(l.Lines):
		return l.size
	}
	return l.PosAt(p.X, y)
}

// LineBounds returns the first and last positions of the visual line at pos.
func (l *Layout) LineBounds(pos int) (int, int) {
	y := l.LineOf(pos)
	line := l.Lines[y]
	end := line.End
	if l.continues(y) && len(line.cells) > 0 {
		end = line.cells[len(line.cells)-1].pos
	}
	return line.Start, end
}

// =============================================================================
// RENDERING
// =============================================================================

// RenderOptions controls what Render draws on top of the text.
type RenderOptions struct {
	Selection richtext.Range
	// ShowCursor draws the caret at the selection head when the selection is
	// empty.
	ShowCursor bool
}

// Render draws lines [top, top+height) of the layout.
func (l *Layout) Render(theme *styles.Theme, top, height int, opts RenderOptions) []string {
	from, to := opts.Selection.From(), opts.Selection.To()
	caret := -1
	if opts.ShowCursor && opts.Selection.Empty() {
		caret = opts.Selection.Head
	}

	out := make([]string, 0, height)
	for y := top; y < top+height && y < len(l.Lines); y++ {
		line := l.Lines[y]
		var sb strings.Builder
		if line.Block >= 0 {
			sb.WriteString(theme.ListMarker.Render(line.Prefix))
			if pad := line.Indent - util.StringWidth(line.Prefix); pad > 0 {
				sb.WriteString(strings.Repeat(" ", pad))
			}
		}

		var run []rune
		var runStyle lipgloss.Style
		runKey := -1
		flush := func() {
			if len(run) > 0 {
				sb.WriteString(runStyle.Render(string(run)))
				run = run[:0]
			}
		}
		for _, c := range line.cells {
			selected := c.pos >= from && c.pos < to
			key := styleKey(c.marks, selected, c.pos == caret)
			if key != runKey {
				flush()
				runKey = key
				runStyle = cellStyle(theme, line, c.marks, selected, c.pos == caret)
			}
			run = append(run, c.r)
		}
		flush()

		if caret >= 0 && caret == line.End && (len(line.cells) == 0 || !l.continues(y)) && line.Block >= 0 {
			sb.WriteString(theme.Cursor.Render(" "))
		}
		out = append(out, sb.String())
	}
	return out
}

func styleKey(m richtext.Marks, selected, caret bool) int {
	k := int(m.Set) << 2
	if selected {
		k |= 1
	}
	if caret {
		k |= 2
	}
	return k
}

func cellStyle(theme *styles.Theme, line Line, m richtext.Marks, selected, caret bool) lipgloss.Style {
	st := theme.Body
	switch {
	case line.kind == richtext.KindHeading:
		st = theme.Heading[min(max(line.level, 1), 3)]
	case line.wrap == richtext.WrapBlockquote:
		st = theme.Blockquote
	}
	if m.Has(richtext.MarkBold) {
		st = st.Bold(true)
	}
	if m.Has(richtext.MarkItalic) {
		st = st.Italic(true)
	}
	if m.Has(richtext.MarkUnderline) {
		st = st.Underline(true)
	}
	if m.Has(richtext.MarkStrike) {
		st = st.Strikethrough(true)
	}
	if m.Has(richtext.MarkCode) {
		st = st.Background(styles.CodeBg)
	}
	if m.Has(richtext.MarkHighlight) {
		st = st.Background(styles.HighlightBg)
	}
	if m.Has(richtext.MarkLink) {
		st = st.Foreground(styles.LinkColor).Underline(true)
	}
	if selected {
		st = st.Background(styles.SelectionBg)
	}
	if caret {
		st = st.Reverse(true)
	}
	return st
}
