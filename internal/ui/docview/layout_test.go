// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docview

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/lexpad-tui/internal/richtext"
	"github.com/jeranaias/lexpad-tui/internal/selection"
	"github.com/jeranaias/lexpad-tui/internal/ui/styles"
)

func layoutOf(t *testing.T, markup string, width int) (*richtext.Buffer, *Layout) {
	t.Helper()
	buf := richtext.New()
	require.NoError(t, buf.SetContent(markup, false))
	return buf, Build(buf.Blocks(), width)
}

func plain(l *Layout) []string {
	rendered := l.Render(styles.NewTheme(), 0, len(l.Lines), RenderOptions{})
	for i, s := range rendered {
		rendered[i] = strings.TrimRight(ansi.Strip(s), " ")
	}
	return rendered
}

func TestBuild_WrapsAtSpaces(t *testing.T) {
	_, l := layoutOf(t, "<p>The Vendor shall indemnify the Client.</p>", 16)

	lines := plain(l)
	assert.Equal(t, []string{"The Vendor", "shall indemnify", "the Client."}, lines)
	for _, line := range l.Lines {
		assert.LessOrEqual(t, lineWidth(line.cells), 16)
	}
}

func TestBuild_BlockPrefixes(t *testing.T) {
	_, l := layoutOf(t, "<h2>Terms</h2><ul><li><p>one</p></li><li><p>two</p></li></ul><ol><li><p>first</p></li></ol><blockquote><p>quoted</p></blockquote>", 40)

	assert.Equal(t, []string{"## Terms", "", "• one", "• two", "", "1. first", "", "│ quoted"}, plain(l))
}

func TestBuild_Alignment(t *testing.T) {
	_, l := layoutOf(t, `<p style="text-align: right">end</p>`, 10)
	assert.Equal(t, 7, l.Lines[0].Indent)
	assert.Equal(t, selection.Point{X: 7, Y: 0}, l.Coords(0))
}

func TestBuild_EmptyDocument(t *testing.T) {
	buf, l := layoutOf(t, "", 20)
	require.NotEmpty(t, l.Lines)
	assert.Equal(t, selection.Point{X: 0, Y: 0}, l.Coords(0))
	assert.Equal(t, 0, l.PosAt(5, 0))
	assert.Equal(t, 0, buf.Size())
}

func TestLayout_CoordsAndPosAtAgree(t *testing.T) {
	buf, l := layoutOf(t, "<p>The Vendor shall indemnify the Client.</p><p>Second paragraph.</p>", 16)

	for pos := 0; pos <= buf.Size(); pos++ {
		p := l.Coords(pos)
		assert.Equal(t, pos, l.PosAt(p.X, p.Y), "pos %d at %+v", pos, p)
	}
}

func TestLayout_SecondBlockAfterSpacer(t *testing.T) {
	buf, l := layoutOf(t, "<p>one</p><p>two</p>", 20)

	start := buf.Blocks()[1].Start
	assert.Equal(t, selection.Point{X: 0, Y: 2}, l.Coords(start))
	assert.Equal(t, selection.Point{X: 3, Y: 0}, l.Coords(3), "end of first block")
	assert.Equal(t, 3, l.PosAt(0, 1), "spacer maps to end of previous block")
	assert.Equal(t, buf.Size(), l.PosAt(0, 99))
}

func TestLayout_Vertical(t *testing.T) {
	_, l := layoutOf(t, "<p>The Vendor shall indemnify the Client.</p>", 16)

	down := l.Vertical(2, 1)
	assert.Equal(t, 1, l.LineOf(down))
	assert.Equal(t, 2, l.Coords(down).X)
	assert.Equal(t, 0, l.Vertical(2, -1))
}

func TestLayout_LineBounds(t *testing.T) {
	_, l := layoutOf(t, "<p>The Vendor shall indemnify the Client.</p>", 16)

	start, end := l.LineBounds(13)
	assert.Equal(t, 11, start)
	assert.Equal(t, 26, end)
}

func TestRender_SelectionKeepsText(t *testing.T) {
	_, l := layoutOf(t, "<p>alpha <strong>beta</strong> gamma</p>", 40)

	lines := l.Render(styles.NewTheme(), 0, 1, RenderOptions{
		Selection:  richtext.Range{Anchor: 2, Head: 8},
		ShowCursor: true,
	})
	require.Len(t, lines, 1)
	assert.Equal(t, "alpha beta gamma", ansi.Strip(lines[0]))
}

func TestRender_CursorAtBlockEnd(t *testing.T) {
	_, l := layoutOf(t, "<p>abc</p>", 40)

	lines := l.Render(styles.NewTheme(), 0, 1, RenderOptions{
		Selection:  richtext.Cursor(3),
		ShowCursor: true,
	})
	assert.Equal(t, "abc ", ansi.Strip(lines[0]))
}
