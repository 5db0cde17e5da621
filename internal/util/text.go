// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// TruncateRunes truncates s to at most maxRunes runes, ending with "..." when
// something was cut.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// StringWidth returns the number of terminal cells s occupies.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// RuneWidth returns the number of cells r occupies.
func RuneWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// TruncateWidth cuts s to fit maxWidth cells, ending with "…" when cut.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// PadRight pads s with spaces to exactly width cells, truncating if needed.
func PadRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "")
	}
	return runewidth.FillRight(s, width)
}

// WrapWidth word-wraps plain text to width cells. Words wider than width are
// broken. Existing newlines are kept.
func WrapWidth(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line, lineW := "", 0
		for _, w := range words {
			ww := runewidth.StringWidth(w)
			for ww > width {
				if lineW > 0 {
					out = append(out, line)
					line, lineW = "", 0
				}
				head := runewidth.Truncate(w, width, "")
				out = append(out, head)
				w = w[len(head):]
				ww = runewidth.StringWidth(w)
			}
			switch {
			case lineW == 0:
				line, lineW = w, ww
			case lineW+1+ww <= width:
				line += " " + w
				lineW += 1 + ww
			default:
				out = append(out, line)
				line, lineW = w, ww
			}
		}
		if lineW > 0 || line != "" {
			out = append(out, line)
		}
	}
	return out
}
