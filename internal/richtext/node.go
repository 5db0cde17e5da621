// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package richtext

// =============================================================================
// NODE KINDS AND MARKS
// =============================================================================

// NodeID addresses a node inside a tree arena.
type NodeID int32

// rootID is the document node of every tree.
const rootID NodeID = 0

// Kind identifies the type of a node.
type Kind uint8

const (
	KindDoc Kind = iota
	KindParagraph
	KindHeading
	KindBlockquote
	KindBulletList
	KindOrderedList
	KindListItem
	KindText
)

// String returns the node kind name.
func (k Kind) String() string {
	switch k {
	case KindDoc:
		return "doc"
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindBlockquote:
		return "blockquote"
	case KindBulletList:
		return "bulletList"
	case KindOrderedList:
		return "orderedList"
	case KindListItem:
		return "listItem"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Mark is a bit set of inline formats.
type Mark uint16

const (
	MarkBold Mark = 1 << iota
	MarkItalic
	MarkUnderline
	MarkStrike
	MarkCode
	MarkHighlight
	MarkLink
)

// markOrder is the nesting order used by the serializer, outermost first.
var markOrder = []Mark{MarkLink, MarkBold, MarkItalic, MarkUnderline, MarkStrike, MarkHighlight, MarkCode}

// Marks is the full inline formatting of a run of text.
// Href is only meaningful when Set contains MarkLink.
type Marks struct {
	Set  Mark
	Href string
}

// Has reports whether m is present.
func (ms Marks) Has(m Mark) bool {
	return ms.Set&m != 0
}

// With returns a copy of ms with m added.
func (ms Marks) With(m Mark, href string) Marks {
	ms.Set |= m
	if m == MarkLink {
		ms.Href = href
	}
	return ms
}

// Without returns a copy of ms with m removed.
func (ms Marks) Without(m Mark) Marks {
	ms.Set &^= m
	if m == MarkLink {
		ms.Href = ""
	}
	return ms
}

// Align is the horizontal alignment of a text block.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
	AlignJustify
)

// String returns the CSS value for the alignment.
func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	default:
		return "left"
	}
}

// ParseAlign converts a CSS text-align value. Unknown values map to AlignLeft.
func ParseAlign(s string) (Align, bool) {
	switch s {
	case "left", "start", "":
		return AlignLeft, true
	case "center":
		return AlignCenter, true
	case "right", "end":
		return AlignRight, true
	case "justify":
		return AlignJustify, true
	}
	return AlignLeft, false
}

// =============================================================================
// ARENA
// =============================================================================

// node is a single arena entry. Children are referenced by id so a tree can
// be copied for history snapshots without walking pointers.
type node struct {
	kind     Kind
	parent   NodeID
	children []NodeID

	// text and marks are set for KindText
	text  string
	marks Marks

	// level and align are set for text blocks
	level int
	align Align
}

// tree is an arena of nodes; nodes[rootID] is the document.
type tree struct {
	nodes []node
}

func newTree() *tree {
	return &tree{nodes: []node{{kind: KindDoc, parent: -1}}}
}

// add appends n as the last child of parent and returns its id.
func (t *tree) add(parent NodeID, n node) NodeID {
	id := NodeID(len(t.nodes))
	n.parent = parent
	t.nodes = append(t.nodes, n)
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

func (t *tree) get(id NodeID) *node {
	return &t.nodes[id]
}

// clone deep-copies the arena, including child slices.
func (t *tree) clone() *tree {
	c := &tree{nodes: make([]node, len(t.nodes))}
	copy(c.nodes, t.nodes)
	for i := range c.nodes {
		if len(c.nodes[i].children) > 0 {
			c.nodes[i].children = append([]NodeID(nil), c.nodes[i].children...)
		}
	}
	return c
}

// len returns the number of nodes in the arena.
func (t *tree) len() int {
	return len(t.nodes)
}
