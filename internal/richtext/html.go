// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package richtext

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// =============================================================================
// PARSING
// =============================================================================

// looksLikeHTML reports whether s contains markup. Content stored by the
// backend for uploaded files is plain text, which is split into paragraphs
// on newlines instead of being collapsed into one block.
func looksLikeHTML(s string) bool {
	i := strings.IndexByte(s, '<')
	if i < 0 || i+1 >= len(s) {
		return false
	}
	c := s[i+1]
	return c == '/' || c == '!' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// parseContent converts stored content into flat blocks.
func parseContent(s string) ([]block, error) {
	if strings.TrimSpace(s) == "" {
		return []block{emptyParagraph()}, nil
	}
	if !looksLikeHTML(s) {
		return parsePlain(s, Marks{}), nil
	}
	return parseHTML(s)
}

// parsePlain turns text into one paragraph per line.
func parsePlain(s string, m Marks) []block {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	out := make([]block, 0, len(lines))
	for _, line := range lines {
		b := emptyParagraph()
		for _, r := range strings.ReplaceAll(line, "\t", " ") {
			b.glyphs = append(b.glyphs, glyph{r: r, m: m})
		}
		out = append(out, b)
	}
	return out
}

func parseHTML(s string) ([]block, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	p := &htmlParser{}
	for _, n := range nodes {
		p.walk(n, Marks{})
	}
	p.closeBlock()
	if len(p.blocks) == 0 {
		return []block{emptyParagraph()}, nil
	}
	return p.blocks, nil
}

type htmlParser struct {
	blocks []block
	cur    *block
	wrap   Wrap
	// soft is set while the last glyph of cur is a space folded from a
	// formatting run. Only such a space is dropped when the block closes.
	soft bool
}

func (p *htmlParser) openBlock(kind Kind, level int, align Align) {
	p.closeBlock()
	p.cur = &block{kind: kind, level: level, align: align, wrap: p.wrap}
}

func (p *htmlParser) closeBlock() {
	if p.cur == nil {
		return
	}
	if gs := p.cur.glyphs; p.soft && len(gs) > 0 {
		p.cur.glyphs = gs[:len(gs)-1]
	}
	p.blocks = append(p.blocks, *p.cur)
	p.cur = nil
	p.soft = false
}

func (p *htmlParser) text(s string, m Marks) {
	if p.cur == nil {
		if strings.TrimSpace(s) == "" {
			return
		}
		p.openBlock(KindParagraph, 0, AlignLeft)
	}
	for _, r := range collapseBreaks(s) {
		if r == softBreak {
			if len(p.cur.glyphs) == 0 || p.soft {
				continue
			}
			p.cur.glyphs = append(p.cur.glyphs, glyph{r: ' ', m: m})
			p.soft = true
			continue
		}
		p.cur.glyphs = append(p.cur.glyphs, glyph{r: r, m: m})
		p.soft = false
	}
}

// softBreak stands in for a folded formatting run until the parser decides
// whether it becomes a space.
const softBreak = '\n'

// collapseBreaks folds whitespace runs that contain a line break or tab into
// a single softBreak. Runs of plain spaces are kept so typed spacing
// round-trips.
func collapseBreaks(s string) string {
	if !strings.ContainsAny(s, "\n\r\t\f") {
		return s
	}
	var sb strings.Builder
	inRun, breakRun := false, false
	var run strings.Builder
	flush := func() {
		if breakRun {
			sb.WriteRune(softBreak)
		} else {
			sb.WriteString(run.String())
		}
		run.Reset()
		inRun, breakRun = false, false
	}
	for _, r := range s {
		switch r {
		case ' ', '\n', '\r', '\t', '\f':
			inRun = true
			if r != ' ' {
				breakRun = true
			}
			run.WriteRune(r)
		default:
			if inRun {
				flush()
			}
			sb.WriteRune(r)
		}
	}
	if inRun {
		flush()
	}
	return sb.String()
}

func (p *htmlParser) walk(n *html.Node, m Marks) {
	switch n.Type {
	case html.TextNode:
		p.text(n.Data, m)
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.walk(c, m)
		}
		return
	}

	children := func(m Marks) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.walk(c, m)
		}
	}

	switch n.DataAtom {
	case atom.P, atom.Div:
		p.openBlock(KindParagraph, 0, alignAttr(n))
		children(m)
		p.closeBlock()
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level, _ := strconv.Atoi(n.Data[1:])
		p.openBlock(KindHeading, level, alignAttr(n))
		children(m)
		p.closeBlock()
	case atom.Pre:
		p.openBlock(KindParagraph, 0, AlignLeft)
		children(m.With(MarkCode, ""))
		p.closeBlock()
	case atom.Blockquote:
		p.withWrap(WrapBlockquote, func() { children(m) })
	case atom.Ul:
		p.withWrap(WrapBullet, func() { children(m) })
	case atom.Ol:
		p.withWrap(WrapOrdered, func() { children(m) })
	case atom.Li:
		p.closeBlock()
		children(m)
		p.closeBlock()
	case atom.Br:
		if p.cur != nil {
			shape := *p.cur
			p.closeBlock()
			p.cur = &block{kind: shape.kind, level: shape.level, align: shape.align, wrap: shape.wrap}
		}
	case atom.Strong, atom.B:
		children(m.With(MarkBold, ""))
	case atom.Em, atom.I:
		children(m.With(MarkItalic, ""))
	case atom.U:
		children(m.With(MarkUnderline, ""))
	case atom.S, atom.Strike, atom.Del:
		children(m.With(MarkStrike, ""))
	case atom.Code:
		children(m.With(MarkCode, ""))
	case atom.Mark:
		children(m.With(MarkHighlight, ""))
	case atom.A:
		if href := attr(n, "href"); href != "" {
			children(m.With(MarkLink, href))
		} else {
			children(m)
		}
	case atom.Script, atom.Style, atom.Head, atom.Title:
		// dropped
	default:
		children(m)
	}
}

// withWrap runs fn with the wrapper set. Nested wrappers keep the innermost
// list type, since the model has a single wrapper level.
func (p *htmlParser) withWrap(w Wrap, fn func()) {
	p.closeBlock()
	saved := p.wrap
	if p.wrap == WrapNone || w != WrapBlockquote {
		p.wrap = w
	}
	fn()
	p.closeBlock()
	p.wrap = saved
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func alignAttr(n *html.Node) Align {
	style := attr(n, "style")
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok || strings.TrimSpace(strings.ToLower(k)) != "text-align" {
			continue
		}
		a, _ := ParseAlign(strings.TrimSpace(strings.ToLower(v)))
		return a
	}
	return AlignLeft
}

// =============================================================================
// SERIALIZATION
// =============================================================================

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\u00a0", "&nbsp;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "\"", "&quot;", "<", "&lt;", ">", "&gt;")
)

// serialize renders the tree as HTML.
func serialize(t *tree) string {
	var sb strings.Builder
	var walk func(id NodeID)
	walk = func(id NodeID) {
		n := t.get(id)
		switch n.kind {
		case KindDoc:
			for _, c := range n.children {
				walk(c)
			}
		case KindParagraph:
			sb.WriteString("<p" + alignStyle(n.align) + ">")
			writeInline(&sb, t, n.children)
			sb.WriteString("</p>")
		case KindHeading:
			tag := "h" + strconv.Itoa(n.level)
			sb.WriteString("<" + tag + alignStyle(n.align) + ">")
			writeInline(&sb, t, n.children)
			sb.WriteString("</" + tag + ">")
		case KindBlockquote:
			writeContainer(&sb, "blockquote", n.children, walk)
		case KindBulletList:
			writeContainer(&sb, "ul", n.children, walk)
		case KindOrderedList:
			writeContainer(&sb, "ol", n.children, walk)
		case KindListItem:
			writeContainer(&sb, "li", n.children, walk)
		}
	}
	walk(rootID)
	return sb.String()
}

func writeContainer(sb *strings.Builder, tag string, children []NodeID, walk func(NodeID)) {
	sb.WriteString("<" + tag + ">")
	for _, c := range children {
		walk(c)
	}
	sb.WriteString("</" + tag + ">")
}

func alignStyle(a Align) string {
	if a == AlignLeft {
		return ""
	}
	return ` style="text-align: ` + a.String() + `"`
}

// writeInline emits text nodes, keeping shared outer marks open across
// adjacent nodes the way the browser serializer does.
func writeInline(sb *strings.Builder, t *tree, children []NodeID) {
	var open []Mark
	var openHref string
	for _, id := range children {
		n := t.get(id)
		want := orderedMarks(n.marks)

		keep := 0
		for keep < len(open) && keep < len(want) && open[keep] == want[keep] {
			if open[keep] == MarkLink && openHref != n.marks.Href {
				break
			}
			keep++
		}
		for i := len(open) - 1; i >= keep; i-- {
			sb.WriteString(closeTag(open[i]))
		}
		open = open[:keep]
		for _, m := range want[keep:] {
			sb.WriteString(openTag(m, n.marks.Href))
			open = append(open, m)
		}
		if n.marks.Has(MarkLink) {
			openHref = n.marks.Href
		}
		sb.WriteString(textEscaper.Replace(n.text))
	}
	for i := len(open) - 1; i >= 0; i-- {
		sb.WriteString(closeTag(open[i]))
	}
}

func orderedMarks(ms Marks) []Mark {
	var out []Mark
	for _, m := range markOrder {
		if ms.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

func openTag(m Mark, href string) string {
	switch m {
	case MarkLink:
		return `<a href="` + attrEscaper.Replace(href) + `" target="_blank" rel="noopener noreferrer nofollow">`
	case MarkBold:
		return "<strong>"
	case MarkItalic:
		return "<em>"
	case MarkUnderline:
		return "<u>"
	case MarkStrike:
		return "<s>"
	case MarkHighlight:
		return "<mark>"
	case MarkCode:
		return "<code>"
	}
	return ""
}

func closeTag(m Mark) string {
	switch m {
	case MarkLink:
		return "</a>"
	case MarkBold:
		return "</strong>"
	case MarkItalic:
		return "</em>"
	case MarkUnderline:
		return "</u>"
	case MarkStrike:
		return "</s>"
	case MarkHighlight:
		return "</mark>"
	case MarkCode:
		return "</code>"
	}
	return ""
}
