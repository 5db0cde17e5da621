// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package richtext

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuffer(t *testing.T, markup string, opts ...Option) *Buffer {
	t.Helper()
	b := New(opts...)
	require.NoError(t, b.SetContent(markup, false))
	return b
}

// =============================================================================
// CONTENT TESTS
// =============================================================================

func TestBuffer_EmptyDocument(t *testing.T) {
	b := New()
	assert.Equal(t, "<p></p>", b.Content())
	assert.Equal(t, 0, b.Size())
	assert.Equal(t, "", b.Text())
	assert.False(t, b.CanUndo())
}

// TestBuffer_RoundTrip verifies that feeding a serialization back into the
// buffer reproduces it exactly and fires no update.
func TestBuffer_RoundTrip(t *testing.T) {
	cases := []string{
		"<p>Plain paragraph</p>",
		"<h1>Agreement</h1><p>This <em>Agreement</em> is made.</p>",
		"<ul><li><p>one</p></li><li><p>two</p></li></ul>",
		"<ol><li><p>first</p></li></ol><p>after</p>",
		"<blockquote><p>quoted</p></blockquote>",
		`<p style="text-align: center">centered</p>`,
		`<p>see <a href="https://example.com/terms" target="_blank" rel="noopener noreferrer nofollow">terms</a></p>`,
		"<p><strong>a<em>b</em></strong> plain <mark>hi</mark> <code>x()</code></p>",
		"<p>A &amp; B &lt;C&gt;</p>",
		"<p></p><p>after blank</p>",
		"<p>Hello </p>",
		"<p>  indented</p><p>trailing  </p>",
		"<p><strong>bold </strong></p>",
	}
	for _, markup := range cases {
		t.Run(markup, func(t *testing.T) {
			b := newBuffer(t, markup)
			out := b.Content()
			assert.Equal(t, markup, out)

			events := 0
			b.OnUpdate(func(Update) { events++ })
			require.NoError(t, b.SetContent(out, true))
			assert.Equal(t, out, b.Content())
			assert.Zero(t, events)
			assert.False(t, b.CanUndo())
		})
	}
}

// TestBuffer_TypedSpacesSurviveReload checks a serialization with typed
// edge spaces reloads unchanged, into a fresh buffer and into an edited one.
func TestBuffer_TypedSpacesSurviveReload(t *testing.T) {
	b := New()
	require.True(t, b.InsertText("Hello "))
	saved := b.Content()
	assert.Equal(t, "<p>Hello </p>", saved)

	fresh := New()
	require.NoError(t, fresh.SetContent(saved, false))
	assert.Equal(t, saved, fresh.Content())
	assert.Equal(t, 6, fresh.Size())

	require.True(t, b.InsertText("world"))
	require.NoError(t, b.SetContent(saved, true))
	assert.Equal(t, saved, b.Content())
}

func TestBuffer_Normalization(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"list item without paragraph", "<ul><li>one</li></ul>", "<ul><li><p>one</p></li></ul>"},
		{"bold alias", "<p><b>x</b></p>", "<p><strong>x</strong></p>"},
		{"line breaks collapse", "<p>a\n   b</p>", "<p>a b</p>"},
		{"source indentation dropped", "<ul>\n  <li>\n    one\n  </li>\n</ul>", "<ul><li><p>one</p></li></ul>"},
		{"br splits", "<p>a<br>b</p>", "<p>a</p><p>b</p>"},
		{"adjacent lists merge", "<ul><li>a</li></ul><ul><li>b</li></ul>", "<ul><li><p>a</p></li><li><p>b</p></li></ul>"},
		{"script dropped", "<p>a</p><script>alert(1)</script>", "<p>a</p>"},
		{"plain text lines", "First line\nSecond line", "<p>First line</p><p>Second line</p>"},
		{"blank", "   ", "<p></p>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBuffer(t, tc.in)
			assert.Equal(t, tc.want, b.Content())
		})
	}
}

func TestBuffer_UpdateEvents(t *testing.T) {
	b := New()
	var got []string
	b.OnUpdate(func(u Update) { got = append(got, u.HTML) })

	require.NoError(t, b.SetContent("<p>x</p>", false))
	require.Len(t, got, 1)
	assert.Equal(t, "<p>x</p>", got[0])

	b.SetSelection(0, 1)
	b.ToggleBold()
	require.Len(t, got, 2)
	assert.Equal(t, "<p><strong>x</strong></p>", got[1])
	assert.Equal(t, b.Content(), got[1])
}

func TestBuffer_SelectionEvents(t *testing.T) {
	b := newBuffer(t, "<p>hello</p>")
	var got []Range
	b.OnSelectionUpdate(func(r Range) { got = append(got, r) })

	b.SetSelection(1, 3)
	b.SetSelection(1, 3)
	b.SetSelection(3, 1)
	b.SetSelection(0, 99)

	require.Len(t, got, 3)
	assert.Equal(t, Range{Anchor: 1, Head: 3}, got[0])
	assert.Equal(t, 1, got[1].From())
	assert.Equal(t, 3, got[1].To())
	assert.Equal(t, Range{Anchor: 0, Head: 5}, got[2])
}

func TestBuffer_TextBetween(t *testing.T) {
	b := newBuffer(t, "<p>ab</p><p>cd</p>")
	assert.Equal(t, 5, b.Size())
	assert.Equal(t, "ab\ncd", b.TextBetween(0, 5))
	assert.Equal(t, "b\nc", b.TextBetween(1, 4))
	assert.Equal(t, "b\nc", b.TextBetween(4, 1))
	assert.Equal(t, "ab\ncd", b.Text())

	bi, col := b.Position(3)
	assert.Equal(t, 1, bi)
	assert.Equal(t, 0, col)
	assert.Equal(t, 4, b.Offset(1, 1))
}

func TestBuffer_ReplaceSelection(t *testing.T) {
	b := newBuffer(t, "<p>Pay <strong>ten</strong> days</p>")
	b.SetSelection(7, 4)
	ok, err := b.ReplaceSelection("five")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "<p>Pay five days</p>", b.Content())
	assert.Equal(t, Cursor(8), b.Selection())

	b.SetSelection(3, 8)
	ok, err = b.ReplaceSelection("")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "<p>Pay days</p>", b.Content())
	assert.Equal(t, Cursor(3), b.Selection())

	ok, err = b.ReplaceSelection("")
	require.NoError(t, err)
	assert.False(t, ok, "nothing selected and nothing to insert")

	require.True(t, b.Undo())
	assert.Equal(t, "<p>Pay five days</p>", b.Content())
}

// =============================================================================
// TOGGLE TESTS
// =============================================================================

// TestBuffer_ToggleTwiceRestores applies every toggle twice to the same
// selection and checks the document returns to its prior serialization.
func TestBuffer_ToggleTwiceRestores(t *testing.T) {
	const doc = "<p>The Vendor shall indemnify</p><p>Second clause</p>"
	toggles := []Format{
		FormatBold, FormatItalic, FormatUnderline, FormatStrike, FormatCode, FormatHighlight,
		FormatHeading1, FormatHeading2, FormatHeading3,
		FormatBulletList, FormatOrderedList, FormatBlockquote,
	}
	for _, f := range toggles {
		t.Run(f.String(), func(t *testing.T) {
			b := newBuffer(t, doc)
			b.SetSelection(4, 10)
			before := b.Content()

			require.True(t, b.Toggle(f))
			assert.NotEqual(t, before, b.Content())
			assert.True(t, b.IsActive(f))

			require.True(t, b.Toggle(f))
			assert.Equal(t, before, b.Content())
			assert.False(t, b.IsActive(f))
		})
	}
}

// TestBuffer_ToggleTwiceRestoresMixed covers selections whose formatting is
// not uniform before the first toggle.
func TestBuffer_ToggleTwiceRestoresMixed(t *testing.T) {
	cases := []struct {
		name   string
		markup string
		from   int
		to     int
		toggle func(*Buffer) bool
		middle string
	}{
		{"partly bold", "<p>a<strong>b</strong>c</p>", 0, 3, (*Buffer).ToggleBold, "<p><strong>abc</strong></p>"},
		{"heading level switch", "<h1>t</h1>", 0, 0, func(b *Buffer) bool { return b.ToggleHeading(2) }, "<h2>t</h2>"},
		{"list over mixed blocks", "<ul><li><p>a</p></li></ul><p>b</p>", 0, 3, (*Buffer).ToggleBulletList, "<ul><li><p>a</p></li><li><p>b</p></li></ul>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBuffer(t, tc.markup)
			b.SetSelection(tc.from, tc.to)

			require.True(t, tc.toggle(b))
			assert.Equal(t, tc.middle, b.Content())
			require.True(t, tc.toggle(b))
			assert.Equal(t, tc.markup, b.Content())
		})
	}
}

// TestBuffer_ToggleAfterEditIsFresh checks an edit between two toggles makes
// the second one an ordinary toggle.
func TestBuffer_ToggleAfterEditIsFresh(t *testing.T) {
	b := newBuffer(t, "<p>a<strong>b</strong>c</p>")
	b.SetSelection(0, 3)
	require.True(t, b.ToggleBold())
	assert.Equal(t, "<p><strong>abc</strong></p>", b.Content())

	b.SetSelection(3, 3)
	require.True(t, b.InsertText("d"))
	b.SetSelection(0, 4)
	require.True(t, b.ToggleBold())
	assert.Equal(t, "<p>abcd</p>", b.Content())
}

func TestBuffer_ToggleBoldSelection(t *testing.T) {
	b := newBuffer(t, "<p>The Vendor shall indemnify</p>")
	b.SetSelection(4, 10)
	b.ToggleBold()
	assert.Equal(t, "<p>The <strong>Vendor</strong> shall indemnify</p>", b.Content())

	// Partially bold range: first toggle makes it all bold.
	b.SetSelection(0, 10)
	assert.False(t, b.IsActive(FormatBold))
	b.ToggleBold()
	assert.Equal(t, "<p><strong>The Vendor</strong> shall indemnify</p>", b.Content())
	assert.True(t, b.IsActive(FormatBold))
}

func TestBuffer_StoredMarks(t *testing.T) {
	b := newBuffer(t, "<p>abc</p>")
	b.SetSelection(3, 3)
	assert.False(t, b.IsActive(FormatBold))

	require.True(t, b.ToggleBold())
	assert.Equal(t, "<p>abc</p>", b.Content(), "stored marks do not change content")
	assert.True(t, b.IsActive(FormatBold))

	b.InsertText("X")
	assert.Equal(t, "<p>abc<strong>X</strong></p>", b.Content())
	assert.True(t, b.IsActive(FormatBold))
}

func TestBuffer_HeadingLevels(t *testing.T) {
	b := newBuffer(t, "<p>Title</p>")
	assert.False(t, b.ToggleHeading(0))
	assert.False(t, b.ToggleHeading(4))

	b.ToggleHeading(2)
	assert.Equal(t, "<h2>Title</h2>", b.Content())
	assert.True(t, b.IsActive(FormatHeading2))
	assert.False(t, b.IsActive(FormatHeading1))

	b.ToggleHeading(1)
	assert.Equal(t, "<h1>Title</h1>", b.Content())
}

func TestBuffer_Lists(t *testing.T) {
	b := newBuffer(t, "<p>one</p><p>two</p><p>three</p>")
	b.SelectAll()
	b.ToggleOrderedList()
	assert.Equal(t, "<ol><li><p>one</p></li><li><p>two</p></li><li><p>three</p></li></ol>", b.Content())

	nums := func() []int {
		var out []int
		for _, bl := range b.Blocks() {
			out = append(out, bl.Number)
		}
		return out
	}
	assert.Equal(t, []int{1, 2, 3}, nums())

	b.SetSelection(4, 4)
	b.ToggleOrderedList()
	assert.Equal(t, "<ol><li><p>one</p></li></ol><p>two</p><ol><li><p>three</p></li></ol>", b.Content())
	assert.Equal(t, []int{1, 0, 1}, nums())

	b.ToggleBulletList()
	assert.Equal(t, "<ol><li><p>one</p></li></ol><ul><li><p>two</p></li></ul><ol><li><p>three</p></li></ol>", b.Content())
}

func TestBuffer_TextAlign(t *testing.T) {
	b := newBuffer(t, "<p>centered</p>")
	assert.True(t, b.IsActive(FormatAlignLeft))
	b.SetTextAlign(AlignCenter)
	assert.Equal(t, `<p style="text-align: center">centered</p>`, b.Content())
	assert.True(t, b.IsActive(FormatAlignCenter))
	b.SetTextAlign(AlignLeft)
	assert.Equal(t, "<p>centered</p>", b.Content())
}

func TestBuffer_Links(t *testing.T) {
	b := newBuffer(t, "<p>see terms here</p>")
	b.SetSelection(4, 9)
	require.True(t, b.SetLink("https://x.test/t"))
	assert.Equal(t, `<p>see <a href="https://x.test/t" target="_blank" rel="noopener noreferrer nofollow">terms</a> here</p>`, b.Content())

	b.SetSelection(6, 6)
	assert.True(t, b.IsActive(FormatLink))
	assert.Equal(t, "https://x.test/t", b.LinkHref())

	require.True(t, b.SetLink("https://x.test/u"))
	assert.Equal(t, "https://x.test/u", b.LinkHref())

	require.True(t, b.UnsetLink())
	assert.Equal(t, "<p>see terms here</p>", b.Content())
	assert.False(t, b.UnsetLink())
}

func TestBuffer_TypingAfterLinkDoesNotExtend(t *testing.T) {
	b := newBuffer(t, `<p><a href="https://x.test">x</a></p>`)
	b.SetSelection(1, 1)
	b.InsertText("y")
	assert.Equal(t, `<p><a href="https://x.test" target="_blank" rel="noopener noreferrer nofollow">x</a>y</p>`, b.Content())
}

// =============================================================================
// EDIT TESTS
// =============================================================================

// TestBuffer_DeleteThenInsert performs the delete-then-insert sequence as two
// separate edits.
func TestBuffer_DeleteThenInsert(t *testing.T) {
	const original = "the Vendor shall indemnify"
	const replacement = "the parties shall mutually indemnify"
	b := newBuffer(t, "<p>Under this clause "+original+" the Client.</p>")

	start := strings.Index(b.Text(), original)
	require.GreaterOrEqual(t, start, 0)
	b.SetSelection(start, start+len(original))
	assert.Equal(t, original, b.TextBetween(b.Selection().From(), b.Selection().To()))

	require.True(t, b.DeleteSelection())
	ok, err := b.InsertContent(replacement)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "<p>Under this clause the parties shall mutually indemnify the Client.</p>", b.Content())
	assert.NotContains(t, b.Content(), original)
	assert.Equal(t, Cursor(start+len(replacement)), b.Selection())

	require.True(t, b.Undo())
	require.True(t, b.Undo())
	assert.Contains(t, b.Content(), original)
}

func TestBuffer_InsertContentKeepsFormatting(t *testing.T) {
	b := newBuffer(t, "<p><strong>bold</strong></p>")
	b.SetSelection(2, 2)
	_, err := b.InsertContent("XY")
	require.NoError(t, err)
	assert.Equal(t, "<p><strong>boXYld</strong></p>", b.Content())
}

func TestBuffer_InsertContentBlocks(t *testing.T) {
	b := newBuffer(t, "<p>ab</p>")
	b.SetSelection(1, 1)
	ok, err := b.InsertContent("<p>X</p><p>Y</p>")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "<p>aX</p><p>Yb</p>", b.Content())
	assert.Equal(t, Cursor(4), b.Selection())
}

func TestBuffer_InsertTextNewlines(t *testing.T) {
	b := newBuffer(t, "<ul><li><p>ab</p></li></ul>")
	b.SetSelection(1, 1)
	b.InsertText("1\n2")
	assert.Equal(t, "<ul><li><p>a1</p></li><li><p>2b</p></li></ul>", b.Content())
}

func TestBuffer_SplitBlock(t *testing.T) {
	b := newBuffer(t, "<h2>Title</h2>")
	b.SetSelection(5, 5)
	b.SplitBlock()
	assert.Equal(t, "<h2>Title</h2><p></p>", b.Content())
	assert.Equal(t, Cursor(6), b.Selection())

	b = newBuffer(t, "<p>abcd</p>")
	b.SetSelection(2, 2)
	b.SplitBlock()
	assert.Equal(t, "<p>ab</p><p>cd</p>", b.Content())
}

func TestBuffer_SplitEmptyListItemLifts(t *testing.T) {
	b := newBuffer(t, "<ul><li><p>a</p></li></ul>")
	b.SetSelection(1, 1)
	b.SplitBlock()
	assert.Equal(t, "<ul><li><p>a</p></li><li><p></p></li></ul>", b.Content())
	b.SplitBlock()
	assert.Equal(t, "<ul><li><p>a</p></li></ul><p></p>", b.Content())
}

func TestBuffer_DeleteBackward(t *testing.T) {
	b := newBuffer(t, "<p>ab</p><p>cd</p>")
	b.SetSelection(3, 3)
	require.True(t, b.DeleteBackward())
	assert.Equal(t, "<p>abcd</p>", b.Content())
	assert.Equal(t, Cursor(2), b.Selection())

	require.True(t, b.DeleteBackward())
	assert.Equal(t, "<p>acd</p>", b.Content())

	b.SetSelection(0, 0)
	assert.False(t, b.DeleteBackward())

	b = newBuffer(t, "<ul><li><p>a</p></li></ul>")
	b.SetSelection(0, 0)
	require.True(t, b.DeleteBackward())
	assert.Equal(t, "<p>a</p>", b.Content())
}

func TestBuffer_DeleteForward(t *testing.T) {
	b := newBuffer(t, "<p>ab</p><p>cd</p>")
	b.SetSelection(2, 2)
	require.True(t, b.DeleteForward())
	assert.Equal(t, "<p>abcd</p>", b.Content())
	b.SetSelection(4, 4)
	assert.False(t, b.DeleteForward())
}

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestBuffer_UndoRedo(t *testing.T) {
	b := newBuffer(t, "<p>text</p>")
	b.SetSelection(0, 4)
	b.ToggleItalic()
	after := b.Content()

	require.True(t, b.Undo())
	assert.Equal(t, "<p>text</p>", b.Content())
	assert.True(t, b.CanRedo())

	require.True(t, b.Redo())
	assert.Equal(t, after, b.Content())
	assert.False(t, b.Redo())

	// A new edit clears the redo stack.
	b.Undo()
	b.ToggleBold()
	assert.False(t, b.CanRedo())
}

func TestBuffer_SetContentHistory(t *testing.T) {
	b := New()
	require.NoError(t, b.SetContent("<p>a</p>", false))
	assert.False(t, b.CanUndo())
	require.NoError(t, b.SetContent("<p>b</p>", true))
	require.True(t, b.Undo())
	assert.Equal(t, "<p>a</p>", b.Content())
}

func TestBuffer_TypingGroups(t *testing.T) {
	now := time.Unix(1700000000, 0)
	clock := func() time.Time { return now }
	b := New(WithClock(clock))

	b.InsertText("a")
	now = now.Add(100 * time.Millisecond)
	b.InsertText("b")
	now = now.Add(100 * time.Millisecond)
	b.InsertText("c")
	assert.Equal(t, "<p>abc</p>", b.Content())

	require.True(t, b.Undo())
	assert.Equal(t, "<p></p>", b.Content())
	assert.False(t, b.CanUndo())

	b.InsertText("a")
	now = now.Add(time.Second)
	b.InsertText("b")
	require.True(t, b.Undo())
	assert.Equal(t, "<p>a</p>", b.Content())
}

func TestBuffer_HistoryDepth(t *testing.T) {
	b := newBuffer(t, "<p>x</p>", WithHistoryDepth(2))
	b.SelectAll()
	b.ToggleBold()
	b.ToggleItalic()
	b.ToggleUnderline()

	assert.True(t, b.Undo())
	assert.True(t, b.Undo())
	assert.False(t, b.Undo())
	assert.Equal(t, "<p><strong>x</strong></p>", b.Content())
}

func TestBuffer_SnapshotsAreIndependent(t *testing.T) {
	b := newBuffer(t, "<p>one</p><p>two</p>")
	b.SelectAll()
	b.ToggleBlockquote()
	quoted := b.Content()
	nodes := b.NodeCount()

	b.Undo()
	b.Redo()
	assert.Equal(t, quoted, b.Content())
	assert.Equal(t, nodes, b.NodeCount())
}
