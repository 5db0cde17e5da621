// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package richtext

import (
	"strings"
	"time"
)

// Default history settings.
const (
	DefaultHistoryDepth = 100
	DefaultTypingGroup  = 500 * time.Millisecond
)

// Range is a selection. Anchor is where the selection started and Head is
// where it currently ends; Head may precede Anchor.
type Range struct {
	Anchor int
	Head   int
}

// Cursor returns a collapsed range at pos.
func Cursor(pos int) Range {
	return Range{Anchor: pos, Head: pos}
}

// From returns the lower bound of the range.
func (r Range) From() int {
	return min(r.Anchor, r.Head)
}

// To returns the upper bound of the range.
func (r Range) To() int {
	return max(r.Anchor, r.Head)
}

// Empty reports whether the range selects nothing.
func (r Range) Empty() bool {
	return r.Anchor == r.Head
}

// Update is delivered to OnUpdate listeners after every content mutation.
type Update struct {
	HTML string
}

type snapshot struct {
	tree *tree
	sel  Range
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithHistoryDepth bounds the number of undo steps kept.
func WithHistoryDepth(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.depth = n
		}
	}
}

// WithTypingGroup sets the window in which consecutive typed characters
// collapse into one undo step. Zero disables grouping.
func WithTypingGroup(d time.Duration) Option {
	return func(b *Buffer) {
		b.typingGroup = d
	}
}

// WithClock overrides the time source used for typing groups.
func WithClock(now func() time.Time) Option {
	return func(b *Buffer) {
		b.now = now
	}
}

// Buffer is the live, possibly unsaved document being edited.
// It is not safe for concurrent use; all calls belong on the UI goroutine.
type Buffer struct {
	tree   *tree
	blocks []block
	html   string
	sel    Range

	// stored holds marks toggled on an empty selection, applied to the next
	// typed text.
	stored *Marks

	// lastToggle lets an immediately repeated toggle restore what the first
	// one replaced.
	lastToggle *toggleMemo

	undo        []snapshot
	redo        []snapshot
	depth       int
	typingGroup time.Duration
	lastTyped   time.Time
	now         func() time.Time

	onUpdate    []func(Update)
	onSelection []func(Range)
}

// New creates a buffer holding one empty paragraph.
func New(opts ...Option) *Buffer {
	b := &Buffer{
		depth:       DefaultHistoryDepth,
		typingGroup: DefaultTypingGroup,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.install(build(nil))
	return b
}

// install replaces the tree and refreshes the derived caches.
func (b *Buffer) install(t *tree) {
	b.tree = t
	b.blocks = flatten(t)
	b.html = serialize(t)
}

// OnUpdate registers fn to be called after every content mutation.
func (b *Buffer) OnUpdate(fn func(Update)) {
	b.onUpdate = append(b.onUpdate, fn)
}

// OnSelectionUpdate registers fn to be called after every selection change.
func (b *Buffer) OnSelectionUpdate(fn func(Range)) {
	b.onSelection = append(b.onSelection, fn)
}

// =============================================================================
// CONTENT
// =============================================================================

// Content returns the HTML serialization of the buffer.
func (b *Buffer) Content() string {
	return b.html
}

// SetContent replaces the document with markup. Passing the buffer's own
// current serialization is a no-op, so mirrored state cannot loop back.
func (b *Buffer) SetContent(markup string, addToHistory bool) error {
	if markup == b.html {
		return nil
	}
	blocks, err := parseContent(markup)
	if err != nil {
		return err
	}
	b.commit(blocks, b.clampRange(blocks, b.sel), addToHistory)
	return nil
}

// Text returns the plain-text projection with blocks separated by newlines.
func (b *Buffer) Text() string {
	return b.TextBetween(0, b.Size())
}

// Size returns the largest valid position.
func (b *Buffer) Size() int {
	return docSize(b.blocks)
}

// TextBetween returns the plain text in [from, to). Block boundaries inside
// the range are rendered as newlines.
func (b *Buffer) TextBetween(from, to int) string {
	if from > to {
		from, to = to, from
	}
	var sb strings.Builder
	for i, s := range spans(b.blocks, from, to) {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, g := range b.blocks[s.block].glyphs[s.from:s.to] {
			sb.WriteRune(g.r)
		}
	}
	return sb.String()
}

// Position maps pos to a block index and column.
func (b *Buffer) Position(pos int) (blockIndex, col int) {
	return locate(b.blocks, pos)
}

// Offset maps a block index and column to a position.
func (b *Buffer) Offset(blockIndex, col int) int {
	if blockIndex < 0 {
		return 0
	}
	if blockIndex >= len(b.blocks) {
		return b.Size()
	}
	col = max(0, min(col, len(b.blocks[blockIndex].glyphs)))
	return offsetOf(b.blocks, blockIndex, col)
}

// NodeCount returns the number of nodes in the document arena.
func (b *Buffer) NodeCount() int {
	return b.tree.len()
}

// =============================================================================
// SELECTION
// =============================================================================

// Selection returns the current selection.
func (b *Buffer) Selection() Range {
	return b.sel
}

// SetSelection selects from anchor to head, clamped to the document.
func (b *Buffer) SetSelection(anchor, head int) {
	b.moveSelection(b.clampRange(b.blocks, Range{Anchor: anchor, Head: head}))
}

// ExtendSelection moves the head of the selection, keeping the anchor.
func (b *Buffer) ExtendSelection(head int) {
	b.SetSelection(b.sel.Anchor, head)
}

// SelectAll selects the whole document.
func (b *Buffer) SelectAll() {
	b.SetSelection(0, b.Size())
}

func (b *Buffer) moveSelection(r Range) {
	if r == b.sel {
		return
	}
	b.sel = r
	b.stored = nil
	b.lastTyped = time.Time{}
	b.emitSelection()
}

func (b *Buffer) clampRange(blocks []block, r Range) Range {
	size := docSize(blocks)
	clamp := func(p int) int { return max(0, min(p, size)) }
	return Range{Anchor: clamp(r.Anchor), Head: clamp(r.Head)}
}

// =============================================================================
// HISTORY
// =============================================================================

// CanUndo reports whether an undo step is available.
func (b *Buffer) CanUndo() bool {
	return len(b.undo) > 0
}

// CanRedo reports whether a redo step is available.
func (b *Buffer) CanRedo() bool {
	return len(b.redo) > 0
}

// Undo reverts the last recorded change.
func (b *Buffer) Undo() bool {
	if len(b.undo) == 0 {
		return false
	}
	prev := b.undo[len(b.undo)-1]
	b.undo = b.undo[:len(b.undo)-1]
	b.redo = append(b.redo, snapshot{tree: b.tree.clone(), sel: b.sel})
	b.restore(prev)
	return true
}

// Redo reapplies the last undone change.
func (b *Buffer) Redo() bool {
	if len(b.redo) == 0 {
		return false
	}
	next := b.redo[len(b.redo)-1]
	b.redo = b.redo[:len(b.redo)-1]
	b.undo = append(b.undo, snapshot{tree: b.tree.clone(), sel: b.sel})
	b.restore(next)
	return true
}

func (b *Buffer) restore(s snapshot) {
	oldHTML, oldSel := b.html, b.sel
	b.install(s.tree.clone())
	b.sel = b.clampRange(b.blocks, s.sel)
	b.stored = nil
	b.lastTyped = time.Time{}
	if b.html != oldHTML {
		b.emitUpdate()
	}
	if b.sel != oldSel {
		b.emitSelection()
	}
}

func (b *Buffer) pushUndo() {
	b.undo = append(b.undo, snapshot{tree: b.tree.clone(), sel: b.sel})
	if len(b.undo) > b.depth {
		b.undo = append([]snapshot(nil), b.undo[len(b.undo)-b.depth:]...)
	}
	b.redo = nil
}

// =============================================================================
// COMMIT
// =============================================================================

// commit installs new blocks and selection, records history, and notifies
// listeners. It reports whether the content changed.
func (b *Buffer) commit(blocks []block, sel Range, addToHistory bool) bool {
	t := build(blocks)
	html := serialize(t)
	changed := html != b.html
	if changed && addToHistory {
		b.pushUndo()
	}
	oldSel := b.sel
	if changed {
		b.install(t)
	}
	b.sel = b.clampRange(b.blocks, sel)
	if changed {
		b.emitUpdate()
	}
	if b.sel != oldSel {
		b.stored = nil
		b.emitSelection()
	}
	return changed
}

func (b *Buffer) emitUpdate() {
	u := Update{HTML: b.html}
	for _, fn := range b.onUpdate {
		fn(u)
	}
}

func (b *Buffer) emitSelection() {
	r := b.sel
	for _, fn := range b.onSelection {
		fn(r)
	}
}

// working returns a mutable copy of the flat blocks.
func (b *Buffer) working() []block {
	return cloneBlocks(b.blocks)
}
