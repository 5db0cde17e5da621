// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// blockClose matches closing tags that end a line in the source view.
var blockClose = regexp.MustCompile(`(</(?:p|h[1-6]|li|ul|ol|blockquote)>)`)

// FormatMarkup puts each block of serialized markup on its own line.
func FormatMarkup(markup string) string {
	return strings.TrimRight(blockClose.ReplaceAllString(markup, "$1\n"), "\n")
}

// HighlightMarkup renders document markup with terminal syntax colors.
// style is a chroma style name; unknown names fall back to monokai.
func HighlightMarkup(markup, style string) string {
	return highlight(FormatMarkup(markup), "html", style)
}

func highlight(code, language, style string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	st := chromaStyles.Get(style)
	if st == nil || st == chromaStyles.Fallback {
		st = chromaStyles.Get("monokai")
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, st, iterator); err != nil {
		return code
	}
	return buf.String()
}
