// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/lexpad-tui/internal/assistant"
	"github.com/jeranaias/lexpad-tui/internal/logging"
)

// aiOptions are the flags shared by the one-shot analysis commands.
type aiOptions struct {
	raw bool
}

func (o *aiOptions) bind(cmd *cobra.Command, rt *runtime) {
	cmd.Flags().BoolVar(&o.raw, "raw", false, "Print markdown without rendering it")
	cmd.Flags().BoolVar(&rt.jsonOut, "json", false, "Output JSON")
}

// chatFor returns an assistant chat for docID after checking the session.
func (rt *runtime) chatFor(docID string) (*assistant.Chat, error) {
	if err := rt.load(); err != nil {
		return nil, err
	}
	if err := rt.requireSession(); err != nil {
		return nil, err
	}
	return assistant.New(rt.client, docID).WithLogger(logging.Named(rt.logger, "assistant")), nil
}

// printAnswer writes markdown to w, rendered unless raw output was asked for
// or colors are off.
func (rt *runtime) printAnswer(w io.Writer, markdown string, raw bool) {
	if raw || !ColorsEnabled() {
		fmt.Fprintln(w, markdown)
		return
	}
	fmt.Fprintln(w, assistant.NewMarkdown(rt.cfg.UI.Theme).Render(markdown, TerminalWidth()))
}

// answerJSON is the --json payload of the analysis commands.
type answerJSON struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question,omitempty"`
	Answer     string `json:"answer"`
	Sources    int    `json:"sources,omitempty"`
}

func (rt *runtime) runAnalysis(cmd *cobra.Command, name, docID string, raw bool, run func(context.Context, *assistant.Chat) (assistant.Entry, error)) error {
	chat, err := rt.chatFor(docID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	return OutputJSON(out, rt.jsonOut, name, func() (any, error) {
		entry, err := run(cmd.Context(), chat)
		if err != nil {
			return nil, err
		}
		if !rt.jsonOut {
			rt.printAnswer(out, entry.Answer, raw)
		}
		return answerJSON{
			DocumentID: docID,
			Question:   entry.Question,
			Answer:     entry.Answer,
			Sources:    len(entry.Sources),
		}, nil
	})
}

func newAskCmd(rt *runtime) *cobra.Command {
	var opts aiOptions
	cmd := &cobra.Command{
		Use:   "ask <document-id> <question...>",
		Short: "Ask a question about a document",
		Example: `  lexpad ask 6f1c2a "What is the termination notice period?"
  lexpad ask 6f1c2a who pays for insurance --raw`,
		Args:    cobra.MinimumNArgs(2),
		GroupID: "ai",
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args[1:], " "))
			if question == "" {
				return &UsageError{Field: "question", Reason: "the question is empty", Example: cmd.Example}
			}
			return rt.runAnalysis(cmd, "ask", args[0], opts.raw, func(ctx context.Context, c *assistant.Chat) (assistant.Entry, error) {
				return c.Ask(ctx, question)
			})
		},
	}
	opts.bind(cmd, rt)
	return cmd
}

func newRedFlagsCmd(rt *runtime) *cobra.Command {
	var opts aiOptions
	cmd := &cobra.Command{
		Use:     "redflags <document-id>",
		Aliases: []string{"red-flags"},
		Short:   "Detect risky clauses in a document",
		Args:    cobra.ExactArgs(1),
		GroupID: "ai",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runAnalysis(cmd, "redflags", args[0], opts.raw, func(ctx context.Context, c *assistant.Chat) (assistant.Entry, error) {
				return c.DetectRedFlags(ctx)
			})
		},
	}
	opts.bind(cmd, rt)
	return cmd
}

func newSummarizeCmd(rt *runtime) *cobra.Command {
	var opts aiOptions
	cmd := &cobra.Command{
		Use:     "summarize <document-id>",
		Aliases: []string{"summary"},
		Short:   "Summarize a document",
		Args:    cobra.ExactArgs(1),
		GroupID: "ai",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runAnalysis(cmd, "summarize", args[0], opts.raw, func(ctx context.Context, c *assistant.Chat) (assistant.Entry, error) {
				return c.Summarize(ctx)
			})
		},
	}
	opts.bind(cmd, rt)
	return cmd
}
