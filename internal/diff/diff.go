// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"fmt"
	"strings"
)

// =============================================================================
// TYPES
// =============================================================================

// LineType is the kind of a diff line.
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

// Prefix returns the unified diff marker for t.
func (t LineType) Prefix() string {
	switch t {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	}
	return " "
}

// Line is one paragraph in a diff.
type Line struct {
	Type    LineType
	Content string
}

// Stats counts changed paragraphs.
type Stats struct {
	Added   int
	Removed int
}

// Diff is the result of comparing two texts.
type Diff struct {
	Lines []Line
	Stats Stats
}

// =============================================================================
// COMPUTATION
// =============================================================================

// Compute diffs old against new, one paragraph per line. Blank lines are
// ignored so spacing changes do not count.
func Compute(oldText, newText string) *Diff {
	a, b := paragraphs(oldText), paragraphs(newText)
	d := &Diff{}

	// lcs[i][j] is the common subsequence length of a[i:] and b[j:].
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i < len(a) && j < len(b) && a[i] == b[j]:
			d.Lines = append(d.Lines, Line{Type: LineContext, Content: a[i]})
			i++
			j++
		case j == len(b) || (i < len(a) && lcs[i+1][j] >= lcs[i][j+1]):
			d.Lines = append(d.Lines, Line{Type: LineRemoved, Content: a[i]})
			d.Stats.Removed++
			i++
		default:
			d.Lines = append(d.Lines, Line{Type: LineAdded, Content: b[j]})
			d.Stats.Added++
			j++
		}
	}
	return d
}

func paragraphs(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// =============================================================================
// FORMATTING
// =============================================================================

// Changed reports whether the texts differ.
func (d *Diff) Changed() bool {
	return d.Stats.Added > 0 || d.Stats.Removed > 0
}

// Summary returns "+added -removed", or "no changes".
func (d *Diff) Summary() string {
	if !d.Changed() {
		return "no changes"
	}
	return fmt.Sprintf("+%d -%d", d.Stats.Added, d.Stats.Removed)
}

// Format renders changed paragraphs with their markers, each cut to width
// runes. Unchanged paragraphs are left out.
func (d *Diff) Format(width int) string {
	var sb strings.Builder
	for _, l := range d.Lines {
		if l.Type == LineContext {
			continue
		}
		content := l.Content
		if r := []rune(content); width > 3 && len(r) > width {
			content = string(r[:width-3]) + "..."
		}
		sb.WriteString(l.Type.Prefix() + " " + content + "\n")
	}
	return sb.String()
}
