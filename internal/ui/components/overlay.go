// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// BlockWidth returns the widest line of a rendered block.
func BlockWidth(s string) int {
	w := 0
	for _, line := range strings.Split(s, "\n") {
		w = max(w, ansi.StringWidth(line))
	}
	return w
}

// BlockHeight returns the number of lines in a rendered block.
func BlockHeight(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// Overlay draws fg over bg with its top-left corner at cell (x, y). Styling
// on both sides is kept. Parts of fg outside width x height are clipped.
func Overlay(bg, fg string, x, y, width, height int) string {
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}
	if len(bgLines) > height {
		bgLines = bgLines[:height]
	}
	if fg == "" {
		return strings.Join(bgLines, "\n")
	}
	x, y = max(0, x), max(0, y)

	for i, line := range strings.Split(fg, "\n") {
		row := y + i
		if row >= height {
			break
		}
		bgLines[row] = compositeRow(bgLines[row], line, x, width)
	}
	return strings.Join(bgLines, "\n")
}

// compositeRow places fgLine at column x of bgLine.
func compositeRow(bgLine, fgLine string, x, width int) string {
	if x >= width {
		return bgLine
	}
	fgLine = ansi.Truncate(fgLine, width-x, "")
	fgWidth := ansi.StringWidth(fgLine)
	bgWidth := ansi.StringWidth(bgLine)

	var sb strings.Builder
	left := ansi.Truncate(bgLine, x, "")
	sb.WriteString(left)
	if lw := ansi.StringWidth(left); lw < x {
		sb.WriteString(strings.Repeat(" ", x-lw))
	}
	sb.WriteString(ansi.ResetStyle)
	sb.WriteString(fgLine)
	sb.WriteString(ansi.ResetStyle)
	if end := x + fgWidth; end < bgWidth {
		sb.WriteString(ansi.Cut(bgLine, end, bgWidth))
	}
	return sb.String()
}

// PlaceBottomRight overlays fg in the bottom-right corner of bg, margin cells
// from each edge.
func PlaceBottomRight(bg, fg string, width, height, margin int) string {
	if fg == "" {
		return bg
	}
	x := width - BlockWidth(fg) - margin
	y := height - BlockHeight(fg) - margin
	return Overlay(bg, fg, x, y, width, height)
}
